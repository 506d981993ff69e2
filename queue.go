package main

import (
	"errors"
	"fmt"
	"strings"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

type QueueCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

var queueCommand QueueCommand

func (x *QueueCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	cfg, err := core.ReadConfig()
	if err != nil {
		logger.WarningPrintf("queue: %v, using defaults", err)
	}
	sched, err := newScheduler(cfg.Scheduler)
	if err != nil {
		return errors.New("queue: " + err.Error())
	}
	user := currentUser()
	out, err := sched.Queue(user)
	if err != nil {
		return errors.New("queue: " + err.Error())
	}
	count, err := sched.QueuedJobs(user)
	if err != nil {
		return errors.New("queue: " + err.Error())
	}
	if len(strings.TrimSpace(out)) > 0 {
		fmt.Print(out)
	}
	fmt.Printf("%d jobs queued for %s (ceiling %d)\n", count, user, cfg.Ceiling)
	return nil
}

func init() {
	parser.AddCommand("queue",
		"show queue depth",
		"Show the number of queued and running jobs owned by the current user",
		&queueCommand)
}
