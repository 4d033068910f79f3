/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package mailbox implements the correlation-id keyed single-shot rendezvous
// RPC calls use to receive their reply: reserve a key, wait on it, and have
// the reader thread post the matching reply when it arrives.
package mailbox

import (
	"sync"
	"time"
)

// Mailbox hands out monotonically increasing correlation ids and lets a
// caller block on one until it is posted or canceled. Key 0 is reserved by
// convention to mean "fire-and-forget"; Mailbox itself never issues 0.
type Mailbox struct {
	mu      sync.Mutex
	notify  chan struct{}
	counter uint64
	slots   map[uint64]slot
}

type slot struct {
	value any
	ready bool
}

// New builds an empty Mailbox.
func New() *Mailbox {
	return &Mailbox{
		slots:  make(map[uint64]slot),
		notify: make(chan struct{}),
	}
}

// Reserve allocates a fresh key and an empty slot for it.
func (m *Mailbox) Reserve() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	key := m.counter
	m.slots[key] = slot{}
	return key
}

// wake must be called with mu held; it releases anyone blocked in Wait.
func (m *Mailbox) wake() {
	close(m.notify)
	m.notify = make(chan struct{})
}

// Post delivers value to the slot for key, waking any waiter. If the slot is
// absent, Post is a no-op unless strict is true, in which case it reports
// whether the slot existed.
func (m *Mailbox) Post(key uint64, value any, strict bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[key]; !ok {
		return !strict
	}

	m.slots[key] = slot{value: value, ready: true}
	m.wake()
	return true
}

// Cancel removes the slot for key without delivering a value.
func (m *Mailbox) Cancel(key uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	m.wake()
}

// Wait blocks until key's slot is posted, canceled, or timeout elapses.
// On success it pops the slot and returns (value, true); otherwise it
// returns (nil, false). timeout <= 0 waits indefinitely.
func (m *Mailbox) Wait(key uint64, timeout time.Duration) (any, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		m.mu.Lock()
		s, ok := m.slots[key]
		if !ok {
			m.mu.Unlock()
			return nil, false
		}

		if s.ready {
			delete(m.slots, key)
			m.mu.Unlock()
			return s.value, true
		}

		wait := m.notify
		m.mu.Unlock()

		if deadline.IsZero() {
			<-wait
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}

		select {
		case <-wait:
		case <-time.After(remaining):
			return nil, false
		}
	}
}
