package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestCountdownExpiresOnce(t *testing.T) {
	var fired int32
	c := NewCountdown(3, clock.NewFake(time.Unix(0, 0)), func() { atomic.AddInt32(&fired, 1) })

	prev := c.Remaining()
	for i := 0; i < 5; i++ {
		c.Tick()
		assert.LessOrEqual(t, c.Remaining(), prev, "never increases")
		prev = c.Remaining()
	}
	assert.Equal(t, 0, c.Remaining())
	assert.True(t, c.Expired())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestCountdownStopFreezes(t *testing.T) {
	c := NewCountdown(10, clock.NewFake(time.Unix(0, 0)), func() { t.Fatal("must not expire") })
	c.Tick()
	c.Stop()
	c.Stop()
	c.Tick()
	assert.Equal(t, 9, c.Remaining())
}

func TestCountdownStopFromExpiry(t *testing.T) {
	var c *Countdown
	c = NewCountdown(1, clock.NewFake(time.Unix(0, 0)), func() { c.Stop() })
	c.Tick()
	assert.True(t, c.Expired())
}

func TestCountdownStartUsesClock(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	done := make(chan struct{})
	c := NewCountdown(2, clk, func() { close(done) })
	c.Start()
	defer c.Stop()

	for i := 0; i < 2; i++ {
		clk.Advance(time.Second)
		assert.Eventually(t, func() bool { return c.Remaining() == 1-i }, time.Second, time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not expire")
	}
}
