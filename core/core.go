package core

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	FmriBatchConfigPath      = "/.config/fmribatch/"
	FmriBatchConfigFilename  = "config.json"
	FmriBatchConfigFilePerms = 0600
)

const FmriBatchConfigEnv = "FMRIBATCH_CONFIG"

// Scheduler dialects
const (
	SchedSGE   = "sge"
	SchedSlurm = "slurm"
)

// Default constants
const (
	DefaultImageRef     = "docker://nipreps/fmriprep:latest"
	DefaultImageName    = "fmriprep.sif"
	DefaultCeiling      = 16
	DefaultNice         = 5
	DefaultCooldownSec  = 72
	DefaultPollSec      = 80
	DefaultCpusPerTask  = 15
	DefaultWallClock    = "48:00:00"
	DefaultSchedDialect = SchedSGE
)

// Layout for fmribatch config file
/*
{
	"scheduler": "sge",
	"image_ref": "docker://nipreps/fmriprep:latest",
	"max_queued_jobs": 16,
	"nice": 5,
	"submit_delay_seconds": 72,
	"poll_interval_seconds": 80,
	"cpus_per_task": 15,
	"wall_clock_limit": "48:00:00"
}
*/
type Config struct {
	Scheduler   string `json:"scheduler"`
	ImageRef    string `json:"image_ref"`
	Ceiling     int    `json:"max_queued_jobs"`
	Nice        int    `json:"nice"`
	CooldownSec int    `json:"submit_delay_seconds"`
	PollSec     int    `json:"poll_interval_seconds"`
	CpusPerTask int    `json:"cpus_per_task"`
	WallClock   string `json:"wall_clock_limit"`
}

func DefaultConfig() Config {
	return Config{
		Scheduler:   DefaultSchedDialect,
		ImageRef:    DefaultImageRef,
		Ceiling:     DefaultCeiling,
		Nice:        DefaultNice,
		CooldownSec: DefaultCooldownSec,
		PollSec:     DefaultPollSec,
		CpusPerTask: DefaultCpusPerTask,
		WallClock:   DefaultWallClock,
	}
}

// Params carries everything one batch run needs: dataset paths from the
// command line merged over the stored Config defaults. Built once and
// passed explicitly; nothing reads ambient state after this.
type Params struct {
	InputDir  string
	OutputDir string
	TempDir   string
	License   string
	LogDir    string
	Config
}

func (p Params) JobsDir() string {
	return filepath.Join(p.LogDir, "jobs")
}

func (p Params) ImagePath() string {
	return filepath.Join(p.TempDir, DefaultImageName)
}

func fileExist(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Build path for config file
// Set from environment or use backup
// Use current directory as last resort
func getConfigPath() string {
	configPath := os.Getenv(FmriBatchConfigEnv)
	if fileExist(configPath) {
		return configPath
	}
	backupPath := os.Getenv("HOME") + FmriBatchConfigPath
	if fileExist(backupPath + FmriBatchConfigFilename) {
		return backupPath + FmriBatchConfigFilename
	}
	if err := os.MkdirAll(backupPath, 0744); err != nil {
		return FmriBatchConfigFilename
	}
	return backupPath + FmriBatchConfigFilename
}

func WriteConfig(config Config) error {
	configFile := getConfigPath()
	file, err := json.MarshalIndent(config, "", "	")
	if err != nil {
		return err
	}
	// Ensure config file uses proper permissions
	os.Chmod(configFile, FmriBatchConfigFilePerms)
	return os.WriteFile(configFile, file, FmriBatchConfigFilePerms)
}

// ReadConfig loads the stored defaults. Missing file is not an error;
// callers get the compiled-in defaults.
func ReadConfig() (Config, error) {
	filename := getConfigPath()
	if !fileExist(filename) {
		return DefaultConfig(), nil
	}
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return DefaultConfig(), err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(bytes, &config); err != nil {
		return DefaultConfig(), errors.New("invalid fmribatch config")
	}
	return config, nil
}
