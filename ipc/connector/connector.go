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

// Package connector implements the client side of a connection: dial with
// retry and a fixed backoff, hand the resulting socket to a fresh Port, and
// optionally reconnect once that Port dies.
package connector

import (
	"context"
	"sync"
	"time"

	"github.com/nabbar/golib/ipc/framed"
	"github.com/nabbar/golib/ipc/packer"
	"github.com/nabbar/golib/ipc/port"
	"github.com/nabbar/golib/socket"
	"github.com/nabbar/golib/socket/config"
)

// RetryInterval is the fixed delay between failed dial attempts.
const RetryInterval = 5 * time.Second

// TracebackThrottle bounds how often a failed-dial log line is emitted.
const TracebackThrottle = time.Minute

// ServiceFactory builds a fresh Service for a new connection. Recover mode
// calls this again on every reconnect.
type ServiceFactory func() port.Service

// LogFunc receives a throttled diagnostic on repeated dial failure.
type LogFunc func(err error)

// Connector dials cfg, retrying forever on failure, and exposes the
// resulting Port once connected. With Recover, a dropped connection is
// transparently redialed and a fresh Port takes its place.
type Connector struct {
	cfg     config.Client
	pack    packer.Packer
	newSvc  ServiceFactory
	timeout time.Duration
	recover bool
	onLog   LogFunc

	recvInit, recvNext, sendTO time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	current *port.Port
	closed  bool

	lastLog time.Time
}

// New builds a Connector. It does not dial until Start is called.
func New(cfg config.Client, pack packer.Packer, newSvc ServiceFactory, recover bool, onLog LogFunc) *Connector {
	c := &Connector{
		cfg:      cfg,
		pack:     pack,
		newSvc:   newSvc,
		recover:  recover,
		onLog:    onLog,
		timeout:  30 * time.Second,
		recvInit: 0,
		recvNext: 0,
		sendTO:   0,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Start dials in the background and keeps reconnecting (if recover is set)
// until Close is called. It returns immediately.
func (c *Connector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Connector) run(ctx context.Context) {
	for {
		p, err := c.dialOnce(ctx)
		if err != nil {
			return
		}

		c.mu.Lock()
		c.current = p
		c.cond.Broadcast()
		c.mu.Unlock()

		p.Start()
		p.Wait()

		c.mu.Lock()
		if c.current == p {
			c.current = nil
		}
		closed := c.closed
		c.mu.Unlock()

		if closed || !c.recover {
			return
		}
	}
}

func (c *Connector) dialOnce(ctx context.Context) (*port.Port, error) {
	for {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return nil, context.Canceled
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		conn, err := socket.Dial(ctx, c.cfg, c.timeout, nil)
		if err == nil {
			sock := framed.New(conn, c.recvInit, c.recvNext, c.sendTO)
			svc := c.newSvc()
			return port.New(sock, c.pack, svc, false, nil), nil
		}

		c.logThrottled(err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}

func (c *Connector) logThrottled(err error) {
	if c.onLog == nil {
		return
	}

	c.mu.Lock()
	fire := time.Since(c.lastLog) >= TracebackThrottle
	if fire {
		c.lastLog = time.Now()
	}
	c.mu.Unlock()

	if fire {
		c.onLog(err)
	}
}

// Port blocks until the first successful connection produces a Port, then
// returns it. In recover mode, a later call observes whatever Port is
// current, which may differ from the first.
func (c *Connector) Port() *port.Port {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.current == nil && !c.closed {
		c.cond.Wait()
	}
	return c.current
}

// Close stops further reconnect attempts and closes the current Port, if
// any, by shutting down its socket.
func (c *Connector) Close() {
	c.mu.Lock()
	c.closed = true
	p := c.current
	c.cond.Broadcast()
	c.mu.Unlock()

	if p != nil {
		p.Close()
		p.Wait()
	}
}
