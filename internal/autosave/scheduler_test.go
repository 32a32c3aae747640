package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	value string
	saved []string
	fail  int
}

func (r *recorder) set(v string) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

func (r *recorder) save(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("store unavailable")
	}
	r.saved = append(r.saved, r.value)
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

func newTestScheduler(cfg Config) (*Scheduler, *recorder, *clock.Fake) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec := &recorder{}
	return New("test", cfg, clk, rec.save), rec, clk
}

func TestDebounceKeepsOnlyLatestEdit(t *testing.T) {
	s, rec, clk := newTestScheduler(DefaultConfig())

	for _, v := range []string{"a", "ab", "abc"} {
		rec.set(v)
		s.Touch(0)
		clk.Advance(300 * time.Millisecond)
	}
	assert.Empty(t, rec.snapshot())

	clk.Advance(time.Second)
	assert.Equal(t, []string{"abc"}, rec.snapshot())
	assert.Empty(t, s.Pending())

	clk.Advance(10 * time.Second)
	assert.Equal(t, []string{"abc"}, rec.snapshot(), "superseded timers never fire")
}

func TestTickFlushesEditsInsideIdleWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	s, rec, clk := newTestScheduler(cfg)

	rec.set("draft")
	s.Touch(1)
	clk.Advance(500 * time.Millisecond)
	require.NoError(t, s.Tick(context.Background()))
	assert.Empty(t, rec.snapshot(), "too recent")

	clk.Advance(2 * time.Second)
	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, []string{"draft"}, rec.snapshot())

	s.Touch(2)
	clk.Advance(7 * time.Second)
	require.NoError(t, s.Tick(context.Background()))
	assert.Len(t, rec.snapshot(), 1, "outside the idle window")
	assert.Equal(t, []int{2}, s.Pending())
}

func TestFailedSaveIsRetriedByTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	s, rec, clk := newTestScheduler(cfg)
	rec.fail = 1

	rec.set("essay")
	s.Touch(0)
	assert.Error(t, s.Flush(context.Background(), 0))
	assert.Equal(t, []int{0}, s.Pending())

	clk.Advance(time.Minute)
	require.NoError(t, s.Tick(context.Background()))
	assert.Equal(t, []string{"essay"}, rec.snapshot())
	assert.Empty(t, s.Pending())
}

func TestFlushWithoutEditsDoesNotSave(t *testing.T) {
	s, rec, _ := newTestScheduler(DefaultConfig())
	require.NoError(t, s.Flush(context.Background(), 3))
	require.NoError(t, s.FlushAll(context.Background()))
	assert.Empty(t, rec.snapshot())

	require.NoError(t, s.Sync(context.Background()))
	assert.Len(t, rec.snapshot(), 1)
}

func TestFlushCancelsPendingTimer(t *testing.T) {
	s, rec, clk := newTestScheduler(DefaultConfig())
	rec.set("x")
	s.Touch(4)
	require.NoError(t, s.Flush(context.Background(), 4))
	clk.Advance(5 * time.Second)
	assert.Equal(t, []string{"x"}, rec.snapshot())
	assert.Equal(t, 0, clk.PendingTimers())
}

func TestEditDuringSaveStaysDirty(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	var s *Scheduler
	saves := 0
	s = New("test", DefaultConfig(), clk, func(context.Context) error {
		saves++
		if saves == 1 {
			s.Touch(0)
		}
		return nil
	})
	s.Touch(0)
	require.NoError(t, s.FlushAll(context.Background()))
	assert.Equal(t, []int{0}, s.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, 2, saves)
	assert.Empty(t, s.Pending())
}

func TestFireSerializesSaves(t *testing.T) {
	var running, maxRunning, total int32
	s := New("test", DefaultConfig(), clock.NewReal(), func(context.Context) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&total, 1)
		return nil
	})
	for i := 0; i < 10; i++ {
		s.Fire(context.Background())
	}
	s.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&total))
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestStopPreventsFurtherSaves(t *testing.T) {
	s, rec, clk := newTestScheduler(DefaultConfig())
	rec.set("late")
	s.Touch(0)
	s.Stop()
	s.Stop()

	clk.Advance(time.Minute)
	s.Fire(context.Background())
	s.Wait()
	s.Touch(1)
	require.NoError(t, s.FlushAll(context.Background()))
	assert.Empty(t, rec.snapshot())
}

func TestStartRunsPeriodicTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	s, rec, clk := newTestScheduler(cfg)
	s.Start()
	defer s.Stop()

	rec.set("periodic")
	s.Touch(0)
	clk.Advance(5 * time.Second)

	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHeartbeatSavesWithoutEdits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Heartbeat = true
	s, rec, clk := newTestScheduler(cfg)
	s.Start()
	defer s.Stop()

	rec.set("clock")
	clk.Advance(5 * time.Second)
	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Tick(context.Background()))
	assert.Len(t, rec.snapshot(), 1, "host-triggered ticks still need an edit")
}

func TestPeriodicTickWithoutEditsIsIdle(t *testing.T) {
	s, rec, clk := newTestScheduler(DefaultConfig())
	s.Start()
	defer s.Stop()

	clk.Advance(5 * time.Second)
	clk.Advance(5 * time.Second)
	assert.Never(t, func() bool {
		return len(rec.snapshot()) > 0
	}, 50*time.Millisecond, 5*time.Millisecond)
}
