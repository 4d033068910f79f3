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

// Package queue implements a cancelable, unbounded FIFO with sentinel-based
// stop semantics, the send queue a Port's writer drains.
package queue

import (
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
)

const (
	MinPkgQueue = liberr.MinPkgIPC + 200

	ErrorAlreadyStopped liberr.CodeError = iota + MinPkgQueue
)

func init() {
	liberr.RegisterIdFctMessage(ErrorAlreadyStopped, message)
}

//nolint #goerr113
func message(code liberr.CodeError) string {
	switch code {
	case ErrorAlreadyStopped:
		return "queue already stopped"
	default:
		return liberr.NullMessage
	}
}

// Queue is a FIFO with blocking Get(timeout) and non-blocking Put. Two
// sentinel values, fixed at construction, signal a Get timeout and a
// stopped queue respectively so callers can use either as a loop
// terminator without a type assertion on an error.
type Queue[T any] struct {
	mu sync.Mutex

	items   []T
	notify  chan struct{}
	stopped bool

	timeoutVal T
	stoppedVal T
}

// New builds a Queue. timeoutVal is returned by Get when it times out;
// stoppedVal is returned once the queue has been stopped and drained.
func New[T any](timeoutVal, stoppedVal T) *Queue[T] {
	return &Queue[T]{
		timeoutVal: timeoutVal,
		stoppedVal: stoppedVal,
		notify:     make(chan struct{}),
	}
}

// Put enqueues v. Safe to call from any goroutine. Returns
// ErrorAlreadyStopped if the queue has been stopped.
func (q *Queue[T]) Put(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return ErrorAlreadyStopped.Error()
	}

	q.items = append(q.items, v)
	q.wake()
	return nil
}

// wake must be called with mu held; it releases anyone blocked in Get.
func (q *Queue[T]) wake() {
	close(q.notify)
	q.notify = make(chan struct{})
}

// Get blocks until an item is available or the timeout elapses, returning
// (timeoutVal, false) in the latter case. Once stopped, the stop sentinel
// is dequeued like any other item, so a caller sees (stoppedVal, true) and
// every subsequent call also returns it. timeout <= 0 blocks indefinitely.
func (q *Queue[T]) Get(timeout time.Duration) (T, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]

			// Once a stopped sentinel has been read, re-prepend it so
			// subsequent readers also observe the stop.
			if q.stopped && len(q.items) == 0 {
				q.items = append(q.items, q.stoppedVal)
			}

			q.mu.Unlock()
			return v, true
		}

		wait := q.notify
		q.mu.Unlock()

		if timeout > 0 {
			select {
			case <-wait:
			case <-time.After(timeout):
				return q.timeoutVal, false
			}
		} else {
			<-wait
		}
	}
}

// Stop appends the stopped sentinel. If soon, the queue is cleared first so
// no pending items are delivered after the stop.
func (q *Queue[T]) Stop(soon bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	if soon {
		q.items = q.items[:0]
	}

	q.stopped = true
	q.items = append(q.items, q.stoppedVal)
	q.wake()
}

// Len returns the number of items currently queued, including any
// already-appended stop sentinel.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
