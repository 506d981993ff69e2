package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

type SubmitCommand struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	Input   string `short:"i" long:"input" description:"BIDS dataset directory"`
	Output  string `short:"o" long:"output" description:"derivatives output directory"`
	Temp    string `short:"t" long:"temp" description:"temporary working directory"`
	License string `short:"l" long:"license" description:"FreeSurfer license file"`
	LogDir  string `short:"g" long:"logdir" description:"log directory"`
	MaxJobs int    `short:"m" long:"max-jobs" description:"maximum queued jobs before submission blocks" default:"16"`
	Nice    int    `short:"n" long:"nice" description:"scheduler nice value" default:"5"`
	Delay   int    `short:"d" long:"delay" description:"minimum seconds between submissions" default:"72"`
	Cpus    int    `short:"c" long:"cpus" description:"CPUs per task" default:"15"`
	DryRun  bool   `long:"dry-run" description:"generate job scripts without submitting"`
}

var submitCommand SubmitCommand

func (x *SubmitCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	for _, req := range []struct{ name, val string }{
		{"input", x.Input},
		{"output", x.Output},
		{"temp", x.Temp},
		{"license", x.License},
		{"logdir", x.LogDir},
	} {
		if len(req.val) == 0 {
			return errors.New("submit: missing --" + req.name)
		}
	}

	cfg, err := core.ReadConfig()
	if err != nil {
		logger.WarningPrintf("submit: %v, using defaults", err)
	}
	cfg.Ceiling = intOption("max-jobs", x.MaxJobs, cfg.Ceiling)
	cfg.Nice = intOption("nice", x.Nice, cfg.Nice)
	cfg.CooldownSec = intOption("delay", x.Delay, cfg.CooldownSec)
	cfg.CpusPerTask = intOption("cpus", x.Cpus, cfg.CpusPerTask)

	params := core.Params{
		InputDir:  x.Input,
		OutputDir: x.Output,
		TempDir:   x.Temp,
		License:   x.License,
		LogDir:    x.LogDir,
		Config:    cfg,
	}

	subjects, err := core.Subjects(params.InputDir)
	if err != nil {
		return errors.New("submit: " + err.Error())
	}
	sched, err := newScheduler(cfg.Scheduler)
	if err != nil {
		return errors.New("submit: " + err.Error())
	}
	if err := os.MkdirAll(params.JobsDir(), 0755); err != nil {
		return errors.New("submit: " + err.Error())
	}

	throttler := core.NewThrottler(sched, currentUser(), cfg)
	logger.InfoObj("submit parameters", params)

	for _, subject := range subjects {
		scriptPath, err := writeJobScript(sched, subject, params)
		if err != nil {
			return errors.New("submit: " + err.Error())
		}
		if x.DryRun {
			fmt.Printf("%s %s\n", color.YellowString("generated"), scriptPath)
			continue
		}
		id, err := throttler.Submit(scriptPath)
		if err != nil {
			return errors.New("submit: " + err.Error())
		}
		fmt.Printf("%s %s as job %s\n", color.GreenString("submitted"), subject, id)
	}
	return nil
}

func writeJobScript(sched core.Scheduler, subject string, params core.Params) (string, error) {
	scriptPath := filepath.Join(params.JobsDir(), subject+".sh")
	f, err := os.OpenFile(scriptPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", err
	}
	defer f.Close()
	spec := core.JobSpecFor(subject, params)
	body := core.BodyFor(subject, params)
	if err := sched.WriteScript(f, spec, body); err != nil {
		return "", err
	}
	return scriptPath, nil
}

// intOption keeps the stored config value when the flag was left at
// its compiled-in default. An explicitly set flag always wins.
func intOption(name string, flagVal, cfgVal int) int {
	if parser.Command.Active == nil {
		return flagVal
	}
	if opt := parser.Command.Active.FindOptionByLongName(name); opt != nil &&
		opt.IsSetDefault() && cfgVal > 0 {
		return cfgVal
	}
	return flagVal
}

func init() {
	parser.AddCommand("submit",
		"submit fMRIPrep jobs",
		"Generate one job script per subject in the dataset and submit each through the queue-depth throttle",
		&submitCommand)
}
