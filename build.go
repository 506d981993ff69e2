package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	core "github.com/fmribatch/fmribatch/core"
	logger "github.com/fmribatch/fmribatch/logger"
)

type BuildCommand struct {
	Help   bool   `short:"h" long:"help" description:"Show this help message"`
	Image  string `short:"r" long:"image" description:"container image reference"`
	Temp   string `short:"t" long:"temp" description:"temporary working directory"`
	LogDir string `short:"g" long:"logdir" description:"log directory"`
}

var buildCommand BuildCommand

func (x *BuildCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	if len(x.Temp) == 0 {
		return errors.New("build: missing --temp")
	}
	if len(x.LogDir) == 0 {
		return errors.New("build: missing --logdir")
	}

	cfg, err := core.ReadConfig()
	if err != nil {
		logger.WarningPrintf("build: %v, using defaults", err)
	}
	imageRef := cfg.ImageRef
	if len(x.Image) > 0 {
		imageRef = x.Image
	}
	params := core.Params{TempDir: x.Temp, LogDir: x.LogDir, Config: cfg}
	if err := os.MkdirAll(params.TempDir, 0755); err != nil {
		return errors.New("build: " + err.Error())
	}
	if err := os.MkdirAll(params.LogDir, 0755); err != nil {
		return errors.New("build: " + err.Error())
	}

	runner := core.NewRunner()
	sif := params.ImagePath()
	fmt.Printf("%s %s\n", color.CyanString("building"), imageRef)
	out, err := runner.Run("singularity", "build", "--force", sif, imageRef)
	if err != nil {
		return errors.New("build: " + err.Error())
	}
	logger.DebugPrintf("singularity build output:\n%s", out)

	// Keep a provenance copy of the image next to the run logs.
	dest := filepath.Join(params.LogDir, core.DefaultImageName)
	n, err := copyFile(sif, dest)
	if err != nil {
		return errors.New("build: " + err.Error())
	}
	fmt.Printf("%s %s (%s) to %s\n", color.GreenString("copied"),
		sif, humanize.Bytes(uint64(n)), dest)

	// Best effort; a stale cache only wastes disk.
	if _, err := runner.Run("singularity", "cache", "clean", "--force"); err != nil {
		logger.WarningPrintf("build: cache clean: %v", err)
	}
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()
	n, err := io.Copy(out, in)
	if err != nil {
		return n, err
	}
	return n, out.Sync()
}

func init() {
	parser.AddCommand("build",
		"build the fMRIPrep image",
		"Pull and convert the fMRIPrep container image once, copy it to the log directory and drop the local build cache",
		&buildCommand)
}
