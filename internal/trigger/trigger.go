// Package trigger carries playback commands from the simulation
// goroutine to the playback goroutine without ever blocking either side.
package trigger

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the queue depth of the reference build.
const DefaultCapacity = 40

var ErrInvalidCapacity = errors.New("channel capacity must be positive")

// Command is a request for the playback side.
type Command int

const (
	Start Command = iota
	Stop
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Stats is a point-in-time view of channel traffic.
type Stats struct {
	Sent     uint64
	Dropped  uint64
	Received uint64
}

// Channel is a bounded FIFO of commands. Sends that cannot be queued in
// time are dropped and counted, never retried.
type Channel struct {
	queue chan Command

	sent     atomic.Uint64
	dropped  atomic.Uint64
	received atomic.Uint64
}

// NewChannel creates a channel holding up to capacity commands.
func NewChannel(capacity int) (*Channel, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Channel{queue: make(chan Command, capacity)}, nil
}

// TrySend enqueues cmd, waiting at most timeout for space. A zero or
// negative timeout never waits. It returns false if cmd was dropped.
func (c *Channel) TrySend(cmd Command, timeout time.Duration) bool {
	select {
	case c.queue <- cmd:
		c.sent.Add(1)
		return true
	default:
	}
	if timeout <= 0 {
		c.dropped.Add(1)
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case c.queue <- cmd:
		c.sent.Add(1)
		return true
	case <-timer.C:
		c.dropped.Add(1)
		return false
	}
}

// TryReceive returns the oldest queued command, or false if none is queued.
func (c *Channel) TryReceive() (Command, bool) {
	select {
	case cmd := <-c.queue:
		c.received.Add(1)
		return cmd, true
	default:
		return 0, false
	}
}

// Len returns the number of queued commands.
func (c *Channel) Len() int {
	return len(c.queue)
}

// Cap returns the queue capacity.
func (c *Channel) Cap() int {
	return cap(c.queue)
}

func (c *Channel) Stats() Stats {
	return Stats{
		Sent:     c.sent.Load(),
		Dropped:  c.dropped.Load(),
		Received: c.received.Load(),
	}
}
