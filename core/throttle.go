package core

import (
	"time"

	logger "github.com/fmribatch/fmribatch/logger"
)

// Clock abstracts time so the throttle loop is testable without
// real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Submitter is the slice of Scheduler the throttler needs.
type Submitter interface {
	QueuedJobs(user string) (int, error)
	Submit(scriptPath string) (string, error)
}

// Throttler gates job submission on the invoking user's queue depth.
// Per script: poll the count, sleep PollInterval while at or above
// Ceiling, submit once below it, then sleep Cooldown so consecutive
// submissions stay at least Cooldown apart. Level-triggered with no
// backoff; the count is owned by the scheduler and other submitters
// may race it between polls.
type Throttler struct {
	Sched        Submitter
	User         string
	Ceiling      int
	PollInterval time.Duration
	Cooldown     time.Duration
	Clock        Clock
}

func NewThrottler(sched Submitter, user string, cfg Config) *Throttler {
	return &Throttler{
		Sched:        sched,
		User:         user,
		Ceiling:      cfg.Ceiling,
		PollInterval: time.Duration(cfg.PollSec) * time.Second,
		Cooldown:     time.Duration(cfg.CooldownSec) * time.Second,
		Clock:        wallClock{},
	}
}

// Submit blocks until the queue is below the ceiling, hands the script
// to the scheduler, and applies the cooldown. A failed queue query
// aborts rather than passing for an empty queue.
func (t *Throttler) Submit(scriptPath string) (string, error) {
	for {
		count, err := t.Sched.QueuedJobs(t.User)
		if err != nil {
			return "", err
		}
		if count < t.Ceiling {
			break
		}
		logger.DebugPrintf("throttle: %d jobs queued for %s (ceiling %d), sleeping %v",
			count, t.User, t.Ceiling, t.PollInterval)
		t.Clock.Sleep(t.PollInterval)
	}
	id, err := t.Sched.Submit(scriptPath)
	if err != nil {
		return "", err
	}
	logger.InfoPrintf("throttle: submitted %s as job %s", scriptPath, id)
	t.Clock.Sleep(t.Cooldown)
	return id, nil
}
