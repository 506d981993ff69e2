package sge

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

// CLI tools
const (
	QStatName = "qstat"
	QSubName  = "qsub"
	QDelName  = "qdel"
)

var qsubJobID = regexp.MustCompile(`Your job (\d+)`)

// Scheduler drives a Sun Grid Engine cluster through qsub/qstat/qdel.
type Scheduler struct {
	runner core.Runner
}

func New(runner core.Runner) *Scheduler {
	return &Scheduler{runner: runner}
}

func (s *Scheduler) Name() string { return core.SchedSGE }

// Queue returns the user's raw qstat listing.
func (s *Scheduler) Queue(user string) (string, error) {
	return s.runner.Run(QStatName, "-u", user)
}

// QueuedJobs counts the user's queued and running jobs from qstat
// output. qstat prints nothing when the queue is empty; otherwise two
// header lines precede one row per job.
func (s *Scheduler) QueuedJobs(user string) (int, error) {
	out, err := s.Queue(user)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 ||
			strings.HasPrefix(line, "job-ID") ||
			strings.HasPrefix(line, "---") {
			continue
		}
		count++
	}
	return count, nil
}

func (s *Scheduler) Submit(scriptPath string) (string, error) {
	out, err := s.runner.Run(QSubName, scriptPath)
	if err != nil {
		return "", err
	}
	match := qsubJobID.FindStringSubmatch(out)
	if len(match) < 2 {
		logger.WarningPrintf("qsub: unexpected output: %s", strings.TrimSpace(out))
		return "", core.ErrJobIDParse
	}
	return match[1], nil
}

func (s *Scheduler) Cancel(jobIDs []string) error {
	if len(jobIDs) == 0 {
		return errors.New("qdel: need to specify job ID")
	}
	_, err := s.runner.Run(QDelName, jobIDs...)
	return err
}

// WriteScript renders "#$" directives followed by the shared body. The
// nice value maps to a negated SGE priority; CPUs request the smp
// parallel environment.
func (s *Scheduler) WriteScript(w io.Writer, spec core.JobSpec, body core.BodyData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#!/bin/bash")
	fmt.Fprintf(bw, "#$ -N %s\n", spec.JobName)
	fmt.Fprintf(bw, "#$ -o %s\n", spec.OutputLog)
	fmt.Fprintf(bw, "#$ -e %s\n", spec.ErrorLog)
	fmt.Fprintf(bw, "#$ -l h_rt=%s\n", spec.WallClock)
	fmt.Fprintf(bw, "#$ -p %d\n", -spec.Nice)
	fmt.Fprintf(bw, "#$ -pe smp %d\n", spec.Cpus)
	if err := core.WriteJobBody(bw, body); err != nil {
		return err
	}
	return bw.Flush()
}

// ParseDirectives recovers a JobSpec from "#$" directive args. "-pe
// NAME N" takes two values; fold them into one before handing the args
// to the flag set.
func (s *Scheduler) ParseDirectives(args []string) (core.JobSpec, error) {
	folded := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "-pe" {
			if i+2 >= len(args) {
				return core.JobSpec{}, errors.New("invalid syntax: -pe NAME INT")
			}
			folded = append(folded, "-pe", args[i+1]+"="+args[i+2])
			i += 2
			continue
		}
		folded = append(folded, args[i])
	}

	flags := flag.NewFlagSet(QSubName, flag.ContinueOnError)
	name := flags.String("N", "", "job name")
	out := flags.String("o", "", "stdout log path")
	errLog := flags.String("e", "", "stderr log path")
	resources := flags.String("l", "", "resource request list")
	priority := flags.Int("p", 0, "job priority")
	pe := flags.String("pe", "", "parallel environment")
	if flags.Parse(folded) != nil {
		return core.JobSpec{}, errors.New("qsub: cannot process directives")
	}

	spec := core.JobSpec{
		JobName:   *name,
		OutputLog: *out,
		ErrorLog:  *errLog,
		Nice:      -*priority,
	}
	for _, entry := range strings.Split(*resources, ",") {
		if strings.HasPrefix(entry, "h_rt=") {
			spec.WallClock = strings.TrimPrefix(entry, "h_rt=")
		}
	}
	if parts := strings.SplitN(*pe, "=", 2); len(parts) == 2 {
		if scale, err := strconv.Atoi(parts[1]); err == nil && scale > 0 {
			spec.Cpus = scale
		} else {
			return core.JobSpec{}, errors.New("pe scale must be positive integer: -pe NAME INT")
		}
	}
	return spec, nil
}
