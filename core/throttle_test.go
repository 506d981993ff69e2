package core

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// scriptedScheduler serves queue counts in order, repeating the last
// one, and records what it saw at each submission.
type scriptedScheduler struct {
	counts    []int
	countErr  error
	submitErr error

	clock          *fakeClock
	polls          int
	lastCount      int
	submitted      []string
	submitTimes    []time.Time
	countsAtSubmit []int
	nextID         int
}

func (s *scriptedScheduler) QueuedJobs(user string) (int, error) {
	s.polls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	i := s.polls - 1
	if i >= len(s.counts) {
		i = len(s.counts) - 1
	}
	s.lastCount = s.counts[i]
	return s.lastCount, nil
}

func (s *scriptedScheduler) Submit(scriptPath string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submitted = append(s.submitted, scriptPath)
	s.countsAtSubmit = append(s.countsAtSubmit, s.lastCount)
	if s.clock != nil {
		s.submitTimes = append(s.submitTimes, s.clock.Now())
	}
	s.nextID++
	return strconv.Itoa(s.nextID), nil
}

func newTestThrottler(sched *scriptedScheduler, ceiling int) (*Throttler, *fakeClock) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched.clock = clock
	return &Throttler{
		Sched:        sched,
		User:         "alice",
		Ceiling:      ceiling,
		PollInterval: 80 * time.Second,
		Cooldown:     72 * time.Second,
		Clock:        clock,
	}, clock
}

func TestThrottlerSubmitsWhenUnderCeiling(t *testing.T) {
	sched := &scriptedScheduler{counts: []int{0}}
	throttler, clock := newTestThrottler(sched, 16)

	id, err := throttler.Submit("/jobs/sub-01.sh")
	require.NoError(t, err)
	require.Equal(t, "1", id)
	require.Equal(t, 1, sched.polls)
	require.Equal(t, []string{"/jobs/sub-01.sh"}, sched.submitted)
	// only the cooldown sleep
	require.Equal(t, []time.Duration{72 * time.Second}, clock.sleeps)
}

func TestThrottlerPollsUntilBelowCeiling(t *testing.T) {
	sched := &scriptedScheduler{counts: []int{2, 2, 1}}
	throttler, clock := newTestThrottler(sched, 2)

	id, err := throttler.Submit("/jobs/sub-01.sh")
	require.NoError(t, err)
	require.Equal(t, "1", id)
	require.Equal(t, 3, sched.polls)
	require.Equal(t, []time.Duration{
		80 * time.Second,
		80 * time.Second,
		72 * time.Second,
	}, clock.sleeps)
}

func TestThrottlerNeverSubmitsAtCeiling(t *testing.T) {
	sched := &scriptedScheduler{counts: []int{5, 4, 3, 2, 1}}
	throttler, _ := newTestThrottler(sched, 2)

	_, err := throttler.Submit("/jobs/sub-01.sh")
	require.NoError(t, err)
	require.Equal(t, 5, sched.polls)
	for _, count := range sched.countsAtSubmit {
		require.Less(t, count, throttler.Ceiling)
	}
}

func TestThrottlerCooldownSpacing(t *testing.T) {
	sched := &scriptedScheduler{counts: []int{0}}
	throttler, _ := newTestThrottler(sched, 16)

	_, err := throttler.Submit("/jobs/sub-01.sh")
	require.NoError(t, err)
	_, err = throttler.Submit("/jobs/sub-02.sh")
	require.NoError(t, err)

	require.Len(t, sched.submitTimes, 2)
	gap := sched.submitTimes[1].Sub(sched.submitTimes[0])
	require.GreaterOrEqual(t, gap, throttler.Cooldown)
}

func TestThrottlerQueueErrorAborts(t *testing.T) {
	queryErr := errors.New("qstat exited 1")
	sched := &scriptedScheduler{countErr: queryErr}
	throttler, _ := newTestThrottler(sched, 16)

	_, err := throttler.Submit("/jobs/sub-01.sh")
	require.ErrorIs(t, err, queryErr)
	require.Empty(t, sched.submitted)
}

func TestThrottlerSubmitErrorPropagates(t *testing.T) {
	submitErr := errors.New("qsub exited 1")
	sched := &scriptedScheduler{counts: []int{0}, submitErr: submitErr}
	throttler, clock := newTestThrottler(sched, 16)

	_, err := throttler.Submit("/jobs/sub-01.sh")
	require.ErrorIs(t, err, submitErr)
	// no cooldown after a failed submission
	require.Empty(t, clock.sleeps)
}

func TestNewThrottlerUsesConfigDurations(t *testing.T) {
	cfg := DefaultConfig()
	throttler := NewThrottler(&scriptedScheduler{}, "alice", cfg)
	require.Equal(t, 80*time.Second, throttler.PollInterval)
	require.Equal(t, 72*time.Second, throttler.Cooldown)
	require.Equal(t, 16, throttler.Ceiling)
	require.NotNil(t, throttler.Clock)
}
