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

	"github.com/nabbar/golib/socket/config"
)

type server struct {
	cfg config.Server
	upd UpdateConn
	hdl HandlerFunc

	fctErr atomic.Value
	fctInf atomic.Value

	mu  sync.Mutex
	lst net.Listener

	running atomic.Bool
	gone    atomic.Bool
	conns   atomic.Int64
}

// NewServer builds a Server that, once Listen is called, accepts connections
// per cfg and runs hdl on each.
func NewServer(cfg config.Server, upd UpdateConn, hdl HandlerFunc) Server {
	return &server{cfg: cfg, upd: upd, hdl: hdl}
}

func (s *server) RegisterFuncError(fct FuncError) {
	s.fctErr.Store(fct)
}

func (s *server) RegisterFuncInfo(fct FuncInfo) {
	s.fctInf.Store(fct)
}

func (s *server) raiseError(errs ...error) {
	if f, ok := s.fctErr.Load().(FuncError); ok && f != nil {
		f(errs...)
	}
}

func (s *server) raiseInfo(local, remote net.Addr, state ConnState) {
	if f, ok := s.fctInf.Load().(FuncInfo); ok && f != nil {
		f(local, remote, state)
	}
}

func (s *server) Listen(ctx context.Context) error {
	l, err := Listen(s.cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lst = l
	s.mu.Unlock()

	s.running.Store(true)
	s.gone.Store(false)

	defer func() {
		s.running.Store(false)
		s.gone.Store(true)
		_ = l.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		c, acceptErr := l.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if ErrorFilter(acceptErr) == nil {
				return nil
			}
			s.raiseError(acceptErr)
			return acceptErr
		}

		tuneTCP(c)
		if s.upd != nil {
			s.upd(c)
		}

		s.conns.Add(1)
		s.raiseInfo(c.LocalAddr(), c.RemoteAddr(), ConnectionNew)

		go s.serve(ctx, c)
	}
}

func (s *server) serve(ctx context.Context, c net.Conn) {
	defer func() {
		s.conns.Add(-1)
		s.raiseInfo(c.LocalAddr(), c.RemoteAddr(), ConnectionClose)
		_ = c.Close()
	}()

	cx := NewContext(ctx, c)
	defer func() {
		if cc, ok := cx.(*connCtx); ok {
			cc.cancel()
		}
	}()

	s.raiseInfo(c.LocalAddr(), c.RemoteAddr(), ConnectionHandler)

	if s.hdl != nil {
		s.hdl(cx)
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	l := s.lst
	s.mu.Unlock()

	if l == nil {
		return nil
	}

	err := l.Close()
	s.running.Store(false)
	s.gone.Store(true)
	return err
}

func (s *server) Close() error {
	return s.Shutdown(context.Background())
}

func (s *server) IsRunning() bool {
	return s.running.Load()
}

func (s *server) IsGone() bool {
	return s.gone.Load()
}

func (s *server) OpenConnections() int64 {
	return s.conns.Load()
}
