package main

import (
	"encoding/json"
	"errors"
	"fmt"

	core "github.com/fmribatch/fmribatch/core"
)

type ConfigCommand struct {
	Help      bool   `short:"h" long:"help" description:"Show this help message"`
	Scheduler string `short:"s" long:"scheduler" description:"scheduler dialect (sge|slurm)"`
	Image     string `short:"r" long:"image" description:"container image reference"`
	MaxJobs   int    `short:"m" long:"max-jobs" description:"maximum queued jobs before submission blocks"`
	Nice      int    `short:"n" long:"nice" description:"scheduler nice value"`
	Delay     int    `short:"d" long:"delay" description:"minimum seconds between submissions"`
	Poll      int    `short:"p" long:"poll" description:"seconds between queue polls"`
	Cpus      int    `short:"c" long:"cpus" description:"CPUs per task"`
	Wall      string `short:"w" long:"wall" description:"wall clock limit (HH:MM:SS)"`
	List      bool   `long:"list" description:"print the stored configuration"`
}

var configCommand ConfigCommand

func (x *ConfigCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	config, err := core.ReadConfig()
	if err != nil {
		return errors.New("config: " + err.Error())
	}
	if x.List {
		out, err := json.MarshalIndent(config, "", "	")
		if err != nil {
			return errors.New("config: " + err.Error())
		}
		fmt.Println(string(out))
		return nil
	}
	if len(x.Scheduler) > 0 {
		if x.Scheduler != core.SchedSGE && x.Scheduler != core.SchedSlurm {
			return errors.New("config: unknown scheduler dialect " + x.Scheduler)
		}
		config.Scheduler = x.Scheduler
	}
	if len(x.Image) > 0 {
		config.ImageRef = x.Image
	}
	if x.MaxJobs > 0 {
		config.Ceiling = x.MaxJobs
	}
	if x.Nice > 0 {
		config.Nice = x.Nice
	}
	if x.Delay > 0 {
		config.CooldownSec = x.Delay
	}
	if x.Poll > 0 {
		config.PollSec = x.Poll
	}
	if x.Cpus > 0 {
		config.CpusPerTask = x.Cpus
	}
	if len(x.Wall) > 0 {
		config.WallClock = x.Wall
	}
	if err := core.WriteConfig(config); err != nil {
		return errors.New("config: unable to write config file")
	}
	return nil
}

func init() {
	parser.AddCommand("config",
		"store fmribatch defaults",
		"The config command creates the configuration file holding scheduler and throttle defaults",
		&configCommand)
}
