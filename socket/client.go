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
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/golib/socket/config"
)

type client struct {
	cfg     config.Client
	upd     UpdateConn
	timeout time.Duration

	fctErr atomic.Value

	mu sync.Mutex
	cn net.Conn
}

// NewClient builds a Client that dials cfg on Connect.
func NewClient(cfg config.Client, timeout time.Duration, upd UpdateConn) Client {
	return &client{cfg: cfg, upd: upd, timeout: timeout}
}

func (c *client) RegisterFuncError(fct FuncError) {
	c.fctErr.Store(fct)
}

func (c *client) raiseError(errs ...error) {
	if f, ok := c.fctErr.Load().(FuncError); ok && f != nil {
		f(errs...)
	}
}

func (c *client) Connect(ctx context.Context) error {
	cn, err := Dial(ctx, c.cfg, c.timeout, c.upd)
	if err != nil {
		c.raiseError(err)
		return err
	}

	c.mu.Lock()
	c.cn = cn
	c.mu.Unlock()

	return nil
}

func (c *client) Close() error {
	c.mu.Lock()
	cn := c.cn
	c.cn = nil
	c.mu.Unlock()

	if cn == nil {
		return nil
	}

	return cn.Close()
}

func (c *client) conn() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cn
}

func (c *client) Read(p []byte) (int, error) {
	cn := c.conn()
	if cn == nil {
		return 0, ErrorSocketClosed.Error()
	}
	return cn.Read(p)
}

func (c *client) Write(p []byte) (int, error) {
	cn := c.conn()
	if cn == nil {
		return 0, ErrorSocketClosed.Error()
	}
	return cn.Write(p)
}
