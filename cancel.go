package main

import (
	"errors"
	"fmt"
	"strings"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

type CancelCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
	Args struct {
		JobIDs []string `positional-arg-name:"job-id" description:"scheduler job id"`
	} `positional-args:"true"`
}

var cancelCommand CancelCommand

func (x *CancelCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	cfg, err := core.ReadConfig()
	if err != nil {
		logger.WarningPrintf("cancel: %v, using defaults", err)
	}
	sched, err := newScheduler(cfg.Scheduler)
	if err != nil {
		return errors.New("cancel: " + err.Error())
	}
	if err := sched.Cancel(x.Args.JobIDs); err != nil {
		return errors.New("cancel: " + err.Error())
	}
	fmt.Printf("canceled: %s\n", strings.Join(x.Args.JobIDs, " "))
	return nil
}

func init() {
	parser.AddCommand("cancel",
		"cancel submitted jobs",
		"Cancel one or more submitted jobs by scheduler job id",
		&cancelCommand)
}
