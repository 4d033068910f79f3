/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package socket

import (
	"context"
	"net"
	"sync/atomic"
)

type connCtx struct {
	x context.Context
	n context.CancelFunc
	c net.Conn
	s atomic.Bool
}

// NewContext wraps an established net.Conn as a Context bound to the given
// parent context; canceling the parent marks the connection disconnected.
func NewContext(parent context.Context, c net.Conn) Context {
	x, n := context.WithCancel(parent)

	o := &connCtx{
		x: x,
		n: n,
		c: c,
	}
	o.s.Store(true)

	go func() {
		<-x.Done()
		o.s.Store(false)
	}()

	return o
}

func (o *connCtx) IsConnected() bool {
	return o.s.Load()
}

func (o *connCtx) RemoteHost() string {
	if o.c == nil || o.c.RemoteAddr() == nil {
		return ""
	}
	return o.c.RemoteAddr().String()
}

func (o *connCtx) LocalHost() string {
	if o.c == nil || o.c.LocalAddr() == nil {
		return ""
	}
	return o.c.LocalAddr().String()
}

func (o *connCtx) Read(p []byte) (int, error) {
	return o.c.Read(p)
}

func (o *connCtx) Write(p []byte) (int, error) {
	return o.c.Write(p)
}

func (o *connCtx) Conn() net.Conn {
	return o.c
}

func (o *connCtx) Done() <-chan struct{} {
	return o.x.Done()
}

func (o *connCtx) Err() error {
	return o.x.Err()
}

func (o *connCtx) cancel() {
	o.n()
}
