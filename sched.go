package main

import (
	"fmt"
	"os"
	"os/user"

	core "github.com/fmribatch/fmribatch/core"
	sge "github.com/fmribatch/fmribatch/sge"
	slurm "github.com/fmribatch/fmribatch/slurm"
)

func newScheduler(dialect string) (core.Scheduler, error) {
	runner := core.NewRunner()
	switch dialect {
	case "", core.SchedSGE:
		return sge.New(runner), nil
	case core.SchedSlurm:
		return slurm.New(runner), nil
	}
	return nil, fmt.Errorf("unknown scheduler dialect %q", dialect)
}

// directiveFor maps a dialect to its job script directive marker.
func directiveFor(dialect string) string {
	if dialect == core.SchedSlurm {
		return "SBATCH"
	}
	return "$"
}

func currentUser() string {
	if u, err := user.Current(); err == nil && len(u.Username) > 0 {
		return u.Username
	}
	return os.Getenv("USER")
}
