package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "sge", cfg.Scheduler)
	require.Equal(t, "docker://nipreps/fmriprep:latest", cfg.ImageRef)
	require.Equal(t, 16, cfg.Ceiling)
	require.Equal(t, 5, cfg.Nice)
	require.Equal(t, 72, cfg.CooldownSec)
	require.Equal(t, 80, cfg.PollSec)
	require.Equal(t, 15, cfg.CpusPerTask)
	require.Equal(t, "48:00:00", cfg.WallClock)
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	t.Setenv(FmriBatchConfigEnv, path)

	cfg := DefaultConfig()
	cfg.Scheduler = SchedSlurm
	cfg.Ceiling = 4
	cfg.WallClock = "12:00:00"
	require.NoError(t, WriteConfig(cfg))

	got, err := ReadConfig()
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(FmriBatchConfigFilePerms), info.Mode().Perm())
}

func TestReadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(FmriBatchConfigEnv, "")

	cfg, err := ReadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestReadConfigPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_queued_jobs": 2}`), 0600))
	t.Setenv(FmriBatchConfigEnv, path)

	cfg, err := ReadConfig()
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Ceiling)
	require.Equal(t, DefaultNice, cfg.Nice)
	require.Equal(t, DefaultWallClock, cfg.WallClock)
}

func TestReadConfigInvalidJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))
	t.Setenv(FmriBatchConfigEnv, path)

	cfg, err := ReadConfig()
	require.Error(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestParamsPaths(t *testing.T) {
	p := Params{TempDir: "/scratch", LogDir: "/logs"}
	require.Equal(t, "/logs/jobs", p.JobsDir())
	require.Equal(t, "/scratch/fmriprep.sif", p.ImagePath())
}
