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

// Package runtime holds the process-wide state the original design kept as
// module-level globals: a shared worker pool sized once at startup. It is
// initialized lazily on first use and torn down explicitly at shutdown,
// rather than scattering package-level mutable state across the ipc tree.
package runtime

import (
	"sync"
	"time"

	"github.com/nabbar/golib/ipc/pool"
)

const (
	defaultMaxThreads = 64
	defaultLowWater   = 4
	defaultIdle       = 30 * time.Second
)

var (
	once    sync.Once
	shared  *pool.Pool
	muSetup sync.Mutex
	maxT    = defaultMaxThreads
	lowW    = defaultLowWater
	idleT   = defaultIdle
)

// Configure sets the worker pool's sizing before first use. Calling it
// after the pool has been created (via Pool) has no effect.
func Configure(maxThreads, lowWater int, idle time.Duration) {
	muSetup.Lock()
	defer muSetup.Unlock()

	if shared != nil {
		return
	}

	maxT, lowW, idleT = maxThreads, lowWater, idle
}

// Pool returns the process-wide worker pool, creating it on first call with
// whatever sizing Configure last set (or the defaults).
func Pool() *pool.Pool {
	once.Do(func() {
		muSetup.Lock()
		defer muSetup.Unlock()
		shared = pool.New(maxT, lowW, idleT)
	})
	return shared
}

// Shutdown stops the shared pool, if it was ever created, and waits for its
// workers to drain. Safe to call even if Pool was never called.
func Shutdown(soon bool) {
	muSetup.Lock()
	p := shared
	muSetup.Unlock()

	if p == nil {
		return
	}

	p.End(soon)
	p.Wait()
}
