package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresTimersInDeadlineOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "late") })
	c.AfterFunc(time.Second, func() { order = append(order, "early") })
	stopped := c.AfterFunc(1500*time.Millisecond, func() { order = append(order, "stopped") })
	assert.True(t, stopped.Stop())

	c.Advance(time.Second)
	assert.Equal(t, []string{"early"}, order)
	assert.Equal(t, 1, c.PendingTimers())

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"early", "late"}, order)
	assert.Equal(t, time.Unix(6, 0), c.Now())
	assert.False(t, stopped.Stop())
}

func TestFakeTickerDeliversWithoutBlocking(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	tk := c.NewTicker(time.Second)

	c.Advance(3 * time.Second)
	select {
	case <-tk.C():
	default:
		t.Fatal("expected a tick")
	}

	tk.Stop()
	c.Advance(time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker delivered")
	default:
	}
}
