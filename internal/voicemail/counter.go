package voicemail

import (
	"errors"
	"sync/atomic"
)

var ErrInvariant = errors.New("voicemail: unplayed counter invariant violated")

// Counter is the derived unplayed-message count.
//
// It must always equal count(messages where played == false). The store
// maintains it incrementally: create increments, the first decrementing
// transition of each message (mark-played or delete of an unplayed message)
// decrements. A would-be negative value is a programming error, never user
// input, so Dec refuses it instead of guessing a repair.
type Counter struct {
	n atomic.Int64
}

func NewCounter() *Counter { return &Counter{} }

// Set seeds the counter, typically from a storage recount at startup.
func (c *Counter) Set(v int64) { c.n.Store(v) }

// Current returns the counter value. Readers may observe a value that is
// slightly stale but always corresponds to some serialization of the
// mutations so far.
func (c *Counter) Current() int64 { return c.n.Load() }

func (c *Counter) Inc() int64 { return c.n.Add(1) }

// Dec decrements, refusing to go negative.
func (c *Counter) Dec() (int64, error) {
	for {
		v := c.n.Load()
		if v <= 0 {
			return v, ErrInvariant
		}
		if c.n.CompareAndSwap(v, v-1) {
			return v - 1, nil
		}
	}
}
