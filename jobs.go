package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

type JobsCommand struct {
	Help   bool   `short:"h" long:"help" description:"Show this help message"`
	LogDir string `short:"g" long:"logdir" description:"log directory"`
}

var jobsCommand JobsCommand

func (x *JobsCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.LogDir) == 0 {
		return errors.New("jobs: missing --logdir")
	}
	cfg, err := core.ReadConfig()
	if err != nil {
		logger.WarningPrintf("jobs: %v, using defaults", err)
	}
	sched, err := newScheduler(cfg.Scheduler)
	if err != nil {
		return errors.New("jobs: " + err.Error())
	}
	scripts, err := filepath.Glob(filepath.Join(x.LogDir, "jobs", "*.sh"))
	if err != nil {
		return errors.New("jobs: " + err.Error())
	}

	table := [][]string{
		{"SCRIPT", "NAME", "CPUS", "WALLCLOCK", "NICE"},
	}
	for _, path := range scripts {
		script, err := core.ParseJobScript(directiveFor(cfg.Scheduler), path)
		if err != nil {
			logger.WarningPrintf("jobs: %s: %v", path, err)
			continue
		}
		spec, err := sched.ParseDirectives(script.Args)
		if err != nil {
			logger.WarningPrintf("jobs: %s: %v", path, err)
			continue
		}
		table = append(table, []string{
			filepath.Base(path),
			spec.JobName,
			strconv.Itoa(spec.Cpus),
			spec.WallClock,
			strconv.Itoa(spec.Nice),
		})
	}
	core.PrintTable(os.Stdout, table)
	return nil
}

func init() {
	parser.AddCommand("jobs",
		"list generated job scripts",
		"List generated job scripts and the resource directives parsed back out of them",
		&jobsCommand)
}
