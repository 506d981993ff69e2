package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	core "github.com/fmribatch/fmribatch/core"
)

func TestNewScheduler(t *testing.T) {
	sched, err := newScheduler("")
	require.NoError(t, err)
	require.Equal(t, core.SchedSGE, sched.Name())

	sched, err = newScheduler(core.SchedSGE)
	require.NoError(t, err)
	require.Equal(t, core.SchedSGE, sched.Name())

	sched, err = newScheduler(core.SchedSlurm)
	require.NoError(t, err)
	require.Equal(t, core.SchedSlurm, sched.Name())

	_, err = newScheduler("pbs")
	require.Error(t, err)
}

func TestDirectiveFor(t *testing.T) {
	require.Equal(t, "$", directiveFor(core.SchedSGE))
	require.Equal(t, "$", directiveFor(""))
	require.Equal(t, "SBATCH", directiveFor(core.SchedSlurm))
}

func TestWriteJobScript(t *testing.T) {
	logDir := t.TempDir()
	params := core.Params{
		InputDir:  "/bids",
		OutputDir: "/out",
		TempDir:   "/scratch",
		License:   "/lic.txt",
		LogDir:    logDir,
		Config:    core.DefaultConfig(),
	}
	require.NoError(t, os.MkdirAll(params.JobsDir(), 0755))

	sched, err := newScheduler(core.SchedSGE)
	require.NoError(t, err)

	scriptPath, err := writeJobScript(sched, "sub-01", params)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(logDir, "jobs", "sub-01.sh"), scriptPath)

	parsed, err := core.ParseJobScript("$", scriptPath)
	require.NoError(t, err)
	require.Equal(t, "/bin/bash", parsed.Shell)

	spec, err := sched.ParseDirectives(parsed.Args)
	require.NoError(t, err)
	require.Equal(t, "fmriprep-sub-01", spec.JobName)
	require.Equal(t, core.DefaultCpusPerTask, spec.Cpus)
	require.Equal(t, core.DefaultNice, spec.Nice)
}

func TestCurrentUser(t *testing.T) {
	require.NotEmpty(t, currentUser())
}

func TestSubmitDryRunGeneratesScriptPerSubject(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(core.FmriBatchConfigEnv, "")

	input := t.TempDir()
	subjects := []string{"sub-01", "sub-02", "sub-03"}
	for _, name := range subjects {
		require.NoError(t, os.Mkdir(filepath.Join(input, name), 0755))
	}
	logDir := t.TempDir()

	cmd := &SubmitCommand{
		Input:   input,
		Output:  t.TempDir(),
		Temp:    "/scratch",
		License: "/lic.txt",
		LogDir:  logDir,
		MaxJobs: 16, Nice: 5, Delay: 72, Cpus: 15,
		DryRun: true,
	}
	require.NoError(t, cmd.Execute(nil))

	scripts, err := filepath.Glob(filepath.Join(logDir, "jobs", "*.sh"))
	require.NoError(t, err)
	require.Len(t, scripts, len(subjects))

	sched, err := newScheduler(core.SchedSGE)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, path := range scripts {
		parsed, err := core.ParseJobScript("$", path)
		require.NoError(t, err)
		spec, err := sched.ParseDirectives(parsed.Args)
		require.NoError(t, err)
		names[spec.JobName] = true
	}
	for _, subject := range subjects {
		require.True(t, names["fmriprep-"+subject])
	}
	require.Len(t, names, len(subjects))
}

func TestErrHandlerParseErrors(t *testing.T) {
	// parse both bad command lines before handling either; printHelp
	// narrows the shared parser to the active command
	_, unknownErr := parser.ParseArgs([]string{"submit", "-x"})
	require.Error(t, unknownErr)
	_, missingErr := parser.ParseArgs([]string{"submit", "-i"})
	require.Error(t, missingErr)

	for _, err := range []error{unknownErr, missingErr} {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 1, errHandler(err, &stdout, &stderr))
		require.Contains(t, stderr.String(), err.Error())
		require.Contains(t, stderr.String(), "Usage")
		require.Empty(t, stdout.String())
	}
}

func TestErrHandlerHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, errHandler(core.CreateHelpErr(), &stdout, &stderr))
	require.Contains(t, stdout.String(), "Usage")
	require.Empty(t, stderr.String())
}

func TestErrHandlerSuccess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, errHandler(nil, &stdout, &stderr))
	require.Empty(t, stdout.String())
	require.Empty(t, stderr.String())
}

func TestCancelToleratesCorruptConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))
	t.Setenv(core.FmriBatchConfigEnv, path)

	// the corrupt config is warned about, not fatal; the command still
	// reaches its own argument validation
	cmd := &CancelCommand{}
	err := cmd.Execute(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "need to specify job ID")
}
