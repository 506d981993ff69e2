package slurm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	flag "github.com/juju/gnuflag"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

// CLI tools
const (
	SQueueName  = "squeue"
	SBatchName  = "sbatch"
	SCancelName = "scancel"
)

var sbatchJobID = regexp.MustCompile(`Submitted batch job (\d+)`)

// Scheduler drives a Slurm cluster through sbatch/squeue/scancel.
type Scheduler struct {
	runner core.Runner
}

func New(runner core.Runner) *Scheduler {
	return &Scheduler{runner: runner}
}

func (s *Scheduler) Name() string { return core.SchedSlurm }

// Queue returns the user's raw squeue listing. With -h squeue
// suppresses its header, so every non-empty line is one job.
func (s *Scheduler) Queue(user string) (string, error) {
	return s.runner.Run(SQueueName, "-h", "-u", user)
}

func (s *Scheduler) QueuedJobs(user string) (int, error) {
	out, err := s.Queue(user)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if len(strings.TrimSpace(line)) > 0 {
			count++
		}
	}
	return count, nil
}

func (s *Scheduler) Submit(scriptPath string) (string, error) {
	out, err := s.runner.Run(SBatchName, scriptPath)
	if err != nil {
		return "", err
	}
	match := sbatchJobID.FindStringSubmatch(out)
	if len(match) < 2 {
		logger.WarningPrintf("sbatch: unexpected output: %s", strings.TrimSpace(out))
		return "", core.ErrJobIDParse
	}
	return match[1], nil
}

func (s *Scheduler) Cancel(jobIDs []string) error {
	if len(jobIDs) == 0 {
		return errors.New("scancel: need to specify job ID")
	}
	_, err := s.runner.Run(SCancelName, jobIDs...)
	return err
}

// WriteScript renders "#SBATCH" directives followed by the shared body.
func (s *Scheduler) WriteScript(w io.Writer, spec core.JobSpec, body core.BodyData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#!/bin/bash")
	fmt.Fprintf(bw, "#SBATCH --job-name=%s\n", spec.JobName)
	fmt.Fprintf(bw, "#SBATCH --output=%s\n", spec.OutputLog)
	fmt.Fprintf(bw, "#SBATCH --error=%s\n", spec.ErrorLog)
	fmt.Fprintf(bw, "#SBATCH --time=%s\n", spec.WallClock)
	fmt.Fprintf(bw, "#SBATCH --nice=%d\n", spec.Nice)
	fmt.Fprintf(bw, "#SBATCH --cpus-per-task=%d\n", spec.Cpus)
	if err := core.WriteJobBody(bw, body); err != nil {
		return err
	}
	return bw.Flush()
}

// ParseDirectives recovers a JobSpec from "#SBATCH" directive args.
func (s *Scheduler) ParseDirectives(args []string) (core.JobSpec, error) {
	flags := flag.NewFlagSet(SBatchName, flag.ContinueOnError)
	name := setFlagString(flags, "J", "job-name", "", "job name")
	out := setFlagString(flags, "o", "output", "", "stdout log path")
	errLog := setFlagString(flags, "e", "error", "", "stderr log path")
	wall := setFlagString(flags, "t", "time", "", "wall clock limit")
	cpus := setFlagInt(flags, "c", "cpus-per-task", 0, "CPUs per task")
	nice := flags.Int("nice", 0, "scheduling priority adjustment")
	if flags.Parse(true, args) != nil {
		return core.JobSpec{}, errors.New("sbatch: cannot process directives")
	}
	return core.JobSpec{
		JobName:   *name,
		OutputLog: *out,
		ErrorLog:  *errLog,
		WallClock: *wall,
		Nice:      *nice,
		Cpus:      *cpus,
	}, nil
}

// Slurm supports short and long command line options
// Register both with the same Golang flag
func setFlagString(flags *flag.FlagSet, short, long, value, usage string) *string {
	flagVar := flags.String(short, value, usage)
	flags.StringVar(flagVar, long, value, usage)
	return flagVar
}

func setFlagInt(flags *flag.FlagSet, short, long string, value int, usage string) *int {
	flagVar := flags.Int(short, value, usage)
	flags.IntVar(flagVar, long, value, usage)
	return flagVar
}
