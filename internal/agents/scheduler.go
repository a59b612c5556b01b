package agents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shubh-37/x-ghostwriter/internal/logging"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultStopTimeout  = 5 * time.Second
)

// ErrStopTimeout is returned by Stop when the loop does not exit in time.
var ErrStopTimeout = errors.New("scheduler did not stop within timeout")

// PostAction is the work bound to every schedule entry.
type PostAction func(ctx context.Context) error

// ScheduleEntry is a daily time of day and its next firing.
type ScheduleEntry struct {
	At      string
	Hour    int
	Minute  int
	NextRun time.Time
}

type SchedulerOption func(*SchedulerAgent)

func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *SchedulerAgent) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *SchedulerAgent) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func WithStopTimeout(d time.Duration) SchedulerOption {
	return func(s *SchedulerAgent) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

func WithClock(now func() time.Time) SchedulerOption {
	return func(s *SchedulerAgent) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSchedulerLogger(logger logging.Logger) SchedulerOption {
	return func(s *SchedulerAgent) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SchedulerAgent fires a post action at fixed daily times. One background
// goroutine wakes at the next due time, or after the poll interval, whichever
// comes first, and runs every due entry once.
type SchedulerAgent struct {
	action       PostAction
	logger       logging.Logger
	location     *time.Location
	pollInterval time.Duration
	stopTimeout  time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries []*ScheduleEntry
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSchedulerAgent(action PostAction, opts ...SchedulerOption) *SchedulerAgent {
	s := &SchedulerAgent{
		action:       action,
		logger:       logging.NewNopLogger(),
		location:     time.Local,
		pollInterval: DefaultPollInterval,
		stopTimeout:  DefaultStopTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseSchedule splits a comma-separated list of HH:MM times. Blank tokens are
// skipped and duplicates are kept; Configure collapses them.
func ParseSchedule(schedule string) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	for _, token := range strings.Split(schedule, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		parsedTime, err := time.Parse("15:04", token)
		if err != nil {
			return nil, fmt.Errorf("invalid time format %q, expected HH:MM: %w", token, err)
		}
		entries = append(entries, ScheduleEntry{
			At:     fmt.Sprintf("%02d:%02d", parsedTime.Hour(), parsedTime.Minute()),
			Hour:   parsedTime.Hour(),
			Minute: parsedTime.Minute(),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no posting times in schedule %q", schedule)
	}
	return entries, nil
}

// Configure replaces the schedule. It fails while the loop is running.
func (s *SchedulerAgent) Configure(schedule string) error {
	parsed, err := ParseSchedule(schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cannot reconfigure a running scheduler")
	}

	now := s.now()
	seen := make(map[string]bool, len(parsed))
	entries := make([]*ScheduleEntry, 0, len(parsed))
	for _, e := range parsed {
		if seen[e.At] {
			s.logger.WithField("time", e.At).Warn("Duplicate posting time ignored")
			continue
		}
		seen[e.At] = true

		entry := e
		entry.NextRun = s.nextOccurrence(now, e.Hour, e.Minute)
		entries = append(entries, &entry)
		s.logger.WithField("time", e.At).Info("Scheduling daily post")
	}
	s.entries = entries
	return nil
}

// Start launches the background loop. Calling it while running only logs a warning.
func (s *SchedulerAgent) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Scheduler is already running")
		return
	}
	if len(s.entries) == 0 {
		s.logger.Warn("Scheduler started with no posting times configured")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true

	go s.run(loopCtx, done)
	s.logger.Info("Scheduler started")
}

// Stop signals the loop and waits up to the stop timeout for it to exit.
func (s *SchedulerAgent) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-timer.C:
		s.logger.Warn("Scheduler did not stop in time")
		return ErrStopTimeout
	}
}

func (s *SchedulerAgent) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRunTime returns the soonest upcoming firing, if any entries are configured.
func (s *SchedulerAgent) NextRunTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Time
	for _, e := range s.entries {
		if next.IsZero() || e.NextRun.Before(next) {
			next = e.NextRun
		}
	}
	return next, !next.IsZero()
}

// Entries returns a snapshot of the schedule ordered by next run.
func (s *SchedulerAgent) Entries() []ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduleEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextRun.Before(out[j].NextRun) })
	return out
}

// RunPending fires every entry that is due and returns how many fired. Each
// entry fires at most once per call and is rescheduled to its next daily slot
// before the action runs.
func (s *SchedulerAgent) RunPending(ctx context.Context) int {
	now := s.now()

	s.mu.Lock()
	var due []ScheduleEntry
	for _, e := range s.entries {
		if !now.Before(e.NextRun) {
			due = append(due, *e)
			e.NextRun = s.nextOccurrence(now, e.Hour, e.Minute)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		if ctx.Err() != nil {
			break
		}
		s.fire(ctx, e)
	}
	return len(due)
}

func (s *SchedulerAgent) fire(ctx context.Context, entry ScheduleEntry) {
	logger := s.logger.WithField("time", entry.At)
	logger.Info("Executing scheduled post")

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Scheduled post panicked: %v", r)
		}
	}()

	if err := s.action(ctx); err != nil {
		logger.WithError(err).Error("Scheduled post failed")
		return
	}
	logger.Info("Scheduled post completed")
}

func (s *SchedulerAgent) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.running = false
		}
		s.mu.Unlock()
		close(done)
	}()

	for {
		timer := time.NewTimer(s.nextWait())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		s.RunPending(ctx)
	}
}

func (s *SchedulerAgent) nextWait() time.Duration {
	wait := s.pollInterval
	if next, ok := s.NextRunTime(); ok {
		if until := next.Sub(s.now()); until < wait {
			wait = until
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (s *SchedulerAgent) nextOccurrence(after time.Time, hour, minute int) time.Time {
	local := after.In(s.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, s.location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, s.location)
	}
	return next
}
