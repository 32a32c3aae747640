// Package host carries lifecycle signals from the client environment
// (page unload, visibility, focus) to the attempts that subscribe to them.
package host

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type Event string

const (
	EventUnload  Event = "unload"
	EventHidden  Event = "hidden"
	EventVisible Event = "visible"
	EventFocus   Event = "focus"
	EventBlur    Event = "blur"
)

func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToLower(strings.TrimSpace(s))); e {
	case EventUnload, EventHidden, EventVisible, EventFocus, EventBlur:
		return e, nil
	}
	return "", fmt.Errorf("unknown host event %q", s)
}

type Listener func(ctx context.Context, ev Event)

// Lifecycle is the subscription side of a Bus.
type Lifecycle interface {
	Subscribe(l Listener) (unsubscribe func())
}

type Bus struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every listener on the caller's goroutine.
func (b *Bus) Publish(ctx context.Context, ev Event) int {
	b.mu.Lock()
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.Unlock()

	for _, l := range ls {
		l(ctx, ev)
	}
	return len(ls)
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
