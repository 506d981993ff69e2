package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// JobSpec holds the scheduler resource directives for one subject's job.
type JobSpec struct {
	Subject   string
	JobName   string
	OutputLog string
	ErrorLog  string
	WallClock string
	Nice      int
	Cpus      int
}

// BodyData feeds the shared job script body template.
type BodyData struct {
	Subject   string
	Label     string
	InputDir  string
	OutputDir string
	TempDir   string
	License   string
	Image     string
	Cpus      int
}

// Scheduler is one dialect of cluster scheduler driven through its CLI
// tools. WriteScript renders directives in the dialect's syntax on top
// of the shared body; ParseDirectives is its inverse over the directive
// args extracted by ParseJobScript.
type Scheduler interface {
	Name() string
	Queue(user string) (string, error)
	QueuedJobs(user string) (int, error)
	Submit(scriptPath string) (string, error)
	Cancel(jobIDs []string) error
	WriteScript(w io.Writer, spec JobSpec, body BodyData) error
	ParseDirectives(args []string) (JobSpec, error)
}

// JobSpecFor builds the per-subject resource directives from the run
// parameters. One job script per subject; the job name namespaces the
// scheduler's view of the batch.
func JobSpecFor(subject string, p Params) JobSpec {
	return JobSpec{
		Subject:   subject,
		JobName:   "fmriprep-" + subject,
		OutputLog: filepath.Join(p.LogDir, subject+".out"),
		ErrorLog:  filepath.Join(p.LogDir, subject+".err"),
		WallClock: p.WallClock,
		Nice:      p.Nice,
		Cpus:      p.CpusPerTask,
	}
}

func BodyFor(subject string, p Params) BodyData {
	return BodyData{
		Subject:   subject,
		Label:     Label(subject),
		InputDir:  p.InputDir,
		OutputDir: p.OutputDir,
		TempDir:   p.TempDir,
		License:   p.License,
		Image:     p.ImagePath(),
		Cpus:      p.CpusPerTask,
	}
}

// Body: stage the subject in, run the container, copy derivatives out,
// remove everything subject-scoped. The working tree is isolated per
// subject so concurrently running jobs never share paths.
var jobBody = template.Must(template.New("body").Parse(`
subj={{.Subject}}
work={{.TempDir}}/${subj}
mkdir -p ${work}/input ${work}/output ${work}/tmp
cp -r {{.InputDir}}/${subj} ${work}/input/
cp {{.InputDir}}/dataset_description.json ${work}/input/ 2>/dev/null || true

singularity run --cleanenv \
	-B ${work}/input:/data:ro \
	-B ${work}/output:/out \
	-B ${work}/tmp:/work \
	-B {{.License}}:/opt/freesurfer/license.txt:ro \
	{{.Image}} \
	/data /out participant \
	--participant-label {{.Label}} \
	--fs-license-file /opt/freesurfer/license.txt \
	--nthreads {{.Cpus}} --omp-nthreads {{.Cpus}} \
	-w /work

cp -r ${work}/output/. {{.OutputDir}}/
rm -rf ${work}
`))

func WriteJobBody(w io.Writer, data BodyData) error {
	return jobBody.Execute(w, data)
}

// JobScript is the parsed form of a generated job script: the shell
// from the shebang, the directive args, and the remaining body.
type JobScript struct {
	Shell  string
	Args   []string
	Script []byte
}

// ParseJobScript reads a job script and splits out the args carried by
// "#<directive>" comment lines (e.g. "$" for SGE, "SBATCH" for Slurm).
func ParseJobScript(directive, filename string) (JobScript, error) {
	file, err := os.Open(filename)
	if err != nil {
		return JobScript{}, err
	}
	defer file.Close()

	shell := "/bin/sh"
	var args []string
	var script []byte

	prefix := "#" + directive + " "
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "#!") {
				shell = line[2:]
				continue
			}
		}
		if strings.HasPrefix(line, prefix) {
			args = append(args, strings.Fields(line[len(prefix):])...)
			continue
		}
		script = append(script, line...)
		script = append(script, '\n')
	}
	if err := scanner.Err(); err != nil {
		return JobScript{}, err
	}
	return JobScript{
		Shell:  shell,
		Args:   args,
		Script: script,
	}, nil
}

// PrintTable writes rows as tab-separated columns with a rule under the
// header row.
func PrintTable(w io.Writer, table [][]string) {
	for index, row := range table {
		fmt.Fprintln(w, strings.Join(row, "\t"))
		if index == 0 {
			fmt.Fprintln(w, "------------------------------------------------------------")
		}
	}
}
