// Package timer implements the whole-second attempt countdown.
package timer

import (
	"sync"
	"time"

	"github.com/julz808/educoach-prep-portal-sub001/internal/clock"
)

// Countdown decrements once per second and calls onExpire exactly once when
// it reaches zero. A stopped countdown never ticks again.
type Countdown struct {
	clock    clock.Clock
	onExpire func()

	mu        sync.Mutex
	remaining int
	expired   bool
	stopped   bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCountdown(seconds int, clk clock.Clock, onExpire func()) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{
		clock:     clk,
		onExpire:  onExpire,
		remaining: seconds,
		stopCh:    make(chan struct{}),
	}
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Tick advances the countdown by one second. onExpire runs on the calling
// goroutine without any countdown lock held.
func (c *Countdown) Tick() {
	c.mu.Lock()
	if c.stopped || c.expired {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	fire := c.remaining == 0
	if fire {
		c.expired = true
	}
	c.mu.Unlock()

	if fire && c.onExpire != nil {
		c.onExpire()
	}
}

// Start drives Tick from a one-second ticker until Stop or expiry.
func (c *Countdown) Start() {
	ticker := c.clock.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				c.Tick()
				if c.Expired() {
					return
				}
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop halts the countdown. It is safe to call from onExpire.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		close(c.stopCh)
	})
}
