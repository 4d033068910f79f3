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

// Package pool implements a bounded worker pool with a low-water mark and
// idle-timeout reaping, used to dispatch non-quick RPC handler invocations.
package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/golib/ipc/queue"
)

// Task is a unit of work submitted to the pool.
type Task func()

// Pool is a bounded worker pool. Workers are spawned lazily as tasks queue
// up and reaped after sitting idle past the idle timeout, down to the
// low-water mark.
type Pool struct {
	maxThreads int
	lowWater   int
	idle       time.Duration

	tasks *queue.Queue[Task]

	mu      sync.Mutex
	current int
	active  int

	available atomic.Bool
	wg        sync.WaitGroup
}

// New builds a Pool. maxThreads bounds concurrent workers; lowWater is the
// minimum kept alive after idle reaping; idle is how long a worker waits
// for work before considering itself reapable.
func New(maxThreads, lowWater int, idle time.Duration) *Pool {
	p := &Pool{
		maxThreads: maxThreads,
		lowWater:   lowWater,
		idle:       idle,
		tasks:      queue.New[Task](nil, nil),
	}
	p.available.Store(true)
	return p
}

// Queue enqueues fn for execution, spawning a new worker if the queue is
// non-empty, current threads are below max, and the idle workers can't
// already absorb it.
func (p *Pool) Queue(fn Task) {
	if !p.available.Load() {
		return
	}

	_ = p.tasks.Put(fn)

	p.mu.Lock()
	spawn := p.tasks.Len() > 0 && p.current < p.maxThreads && (p.current-p.active) <= p.tasks.Len()
	if spawn {
		p.current++
	}
	p.mu.Unlock()

	if spawn {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		fn, ok := p.tasks.Get(p.idle)
		if !ok {
			p.mu.Lock()
			if p.current-p.lowWater > 0 {
				p.current--
				p.mu.Unlock()
				return
			}
			p.mu.Unlock()
			continue
		}

		if fn == nil {
			p.mu.Lock()
			p.current--
			p.mu.Unlock()
			return
		}

		p.mu.Lock()
		p.active++
		p.mu.Unlock()

		fn()

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}
}

// Current returns the current number of live workers.
func (p *Pool) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Active returns the number of workers currently executing a task.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// End flips the availability flag and stops the task queue. If soon, queued
// but not-yet-started tasks are dropped.
func (p *Pool) End(soon bool) {
	p.available.Store(false)
	p.tasks.Stop(soon)
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}
