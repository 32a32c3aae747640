// Package autosave schedules persistence of an attempt's in-memory state.
//
// Every save writes the latest state, so the scheduler only decides when to
// save. Saves are serialized and never run concurrently with each other.
package autosave

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/rs/zerolog/log"
)

// SaveFunc persists a snapshot of the latest in-memory state.
type SaveFunc func(ctx context.Context) error

type Config struct {
	Debounce         time.Duration
	PeriodicInterval time.Duration
	// Edits at least MinIdle and at most MaxIdle old are flushed by Tick.
	MinIdle time.Duration
	MaxIdle time.Duration
	// Heartbeat makes the periodic flush save even when nothing is dirty,
	// for state that changes without edits such as a countdown.
	Heartbeat bool
}

func DefaultConfig() Config {
	return Config{
		Debounce:         time.Second,
		PeriodicInterval: 5 * time.Second,
		MinIdle:          time.Second,
		MaxIdle:          6 * time.Second,
	}
}

type field struct {
	gen      uint64
	editedAt time.Time
	timer    clock.Timer
	failed   bool
}

type Scheduler struct {
	name  string
	cfg   Config
	clock clock.Clock
	save  SaveFunc

	saveMu sync.Mutex

	mu       sync.Mutex
	fields   map[int]*field
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	inflight sync.WaitGroup
}

// New returns a scheduler for one attempt; name is used for logging only.
func New(name string, cfg Config, clk clock.Clock, save SaveFunc) *Scheduler {
	return &Scheduler{
		name:   name,
		cfg:    cfg,
		clock:  clk,
		save:   save,
		fields: make(map[int]*field),
		stopCh: make(chan struct{}),
	}
}

// Touch records an edit of key and (re)arms its debounce timer.
func (s *Scheduler) Touch(key int) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	f := s.fieldLocked(key)
	f.gen++
	f.editedAt = s.clock.Now()
	s.mu.Unlock()

	s.ScheduleDebounced(key, s.cfg.Debounce)
}

// ScheduleDebounced supersedes any pending timer for key with a new one.
func (s *Scheduler) ScheduleDebounced(key int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	f := s.fieldLocked(key)
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = s.clock.AfterFunc(delay, func() {
		if err := s.Flush(context.Background(), key); err != nil {
			log.Warn().Err(err).Str("sessionID", s.name).Int("field", key).Msg("Autosave: debounced save failed")
		}
	})
}

func (s *Scheduler) CancelPending(key int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fields[key]; ok && f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Flush saves now if key has unsaved edits.
func (s *Scheduler) Flush(ctx context.Context, key int) error {
	s.CancelPending(key)
	return s.flush(ctx, false, func(k int, _ *field, _ time.Time) bool { return k == key })
}

// FlushAll saves now if any key has unsaved edits.
func (s *Scheduler) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	for _, f := range s.fields {
		if f.timer != nil {
			f.timer.Stop()
			f.timer = nil
		}
	}
	s.mu.Unlock()
	return s.flush(ctx, false, func(int, *field, time.Time) bool { return true })
}

// Tick is the periodic safety flush: it saves keys edited within the idle
// window and keys whose previous save failed.
func (s *Scheduler) Tick(ctx context.Context) error {
	return s.flush(ctx, false, s.due)
}

func (s *Scheduler) due(_ int, f *field, now time.Time) bool {
	if f.failed {
		return true
	}
	idle := now.Sub(f.editedAt)
	return idle >= s.cfg.MinIdle && idle <= s.cfg.MaxIdle
}

// Sync saves unconditionally and waits for the result.
func (s *Scheduler) Sync(ctx context.Context) error {
	return s.flush(ctx, true, func(int, *field, time.Time) bool { return true })
}

// Fire starts an immediate save in the background. Failures are logged;
// the next trigger retries since every save writes the latest state.
func (s *Scheduler) Fire(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer s.inflight.Done()
		if err := s.runSave(ctx); err != nil {
			log.Warn().Err(err).Str("sessionID", s.name).Msg("Autosave: immediate save failed")
		}
	}()
}

// Wait blocks until every save started by Fire has returned.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Start runs the periodic flush until Stop. With Heartbeat set every period
// saves, otherwise only Tick's selection does.
func (s *Scheduler) Start() {
	ticker := s.clock.NewTicker(s.cfg.PeriodicInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := s.flush(context.Background(), s.cfg.Heartbeat, s.due); err != nil {
					log.Warn().Err(err).Str("sessionID", s.name).Msg("Autosave: periodic save failed")
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop cancels pending timers and the periodic flush. No save is started
// after Stop returns; saves already running are not interrupted.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		for _, f := range s.fields {
			if f.timer != nil {
				f.timer.Stop()
				f.timer = nil
			}
		}
		s.mu.Unlock()
		close(s.stopCh)
	})
}

// Pending returns the keys with unsaved edits.
func (s *Scheduler) Pending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]int, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (s *Scheduler) fieldLocked(key int) *field {
	f, ok := s.fields[key]
	if !ok {
		f = &field{}
		s.fields[key] = f
	}
	return f
}

func (s *Scheduler) flush(ctx context.Context, force bool, selected func(int, *field, time.Time) bool) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	now := s.clock.Now()
	gens := make(map[int]uint64)
	for k, f := range s.fields {
		if selected(k, f, now) {
			gens[k] = f.gen
		}
	}
	s.mu.Unlock()

	if len(gens) == 0 && !force {
		return nil
	}

	err := s.runSave(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, gen := range gens {
		f, ok := s.fields[k]
		if !ok {
			continue
		}
		if err != nil {
			f.failed = true
			continue
		}
		// A newer edit arrived during the save; it keeps its own timer.
		if f.gen != gen {
			continue
		}
		if f.timer != nil {
			f.timer.Stop()
		}
		delete(s.fields, k)
	}
	return err
}

func (s *Scheduler) runSave(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.save(ctx)
}
