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

// Package acceptor implements the server side of a connection: bind, listen,
// and spawn a fresh Service and Port for every accepted connection. A setup
// failure on one connection is logged and that connection is dropped; the
// accept loop itself never stops on a per-connection error.
package acceptor

import (
	"context"
	"net"
	"sync"
	"time"

	errpool "github.com/nabbar/golib/errors/pool"
	"github.com/nabbar/golib/ioutils/mapCloser"
	"github.com/nabbar/golib/ipc/framed"
	"github.com/nabbar/golib/ipc/packer"
	"github.com/nabbar/golib/ipc/port"
	"github.com/nabbar/golib/socket"
	"github.com/nabbar/golib/socket/config"
)

// ServiceFactory builds a fresh Service for one accepted connection.
type ServiceFactory func(conn net.Conn) port.Service

// LogFunc receives a non-fatal per-connection setup or accept failure.
type LogFunc func(err error)

// Acceptor listens per cfg and drives one Port per accepted connection.
type Acceptor struct {
	cfg    config.Server
	pack   packer.Packer
	newSvc ServiceFactory
	onLog  LogFunc

	recvInit, recvNext, sendTO time.Duration

	mu  sync.Mutex
	lst net.Listener
	clo mapCloser.Closer

	errs errpool.Pool

	wg sync.WaitGroup
}

// New builds an Acceptor. It does not bind until Listen is called.
func New(cfg config.Server, pack packer.Packer, newSvc ServiceFactory, onLog LogFunc) *Acceptor {
	return &Acceptor{cfg: cfg, pack: pack, newSvc: newSvc, onLog: onLog, errs: errpool.New()}
}

// Errors returns every per-connection setup or accept failure observed so
// far, combined into a single error (nil if none occurred).
func (a *Acceptor) Errors() error {
	return a.errs.Error()
}

// Listen binds and blocks, accepting connections until ctx is canceled or
// Close is called.
func (a *Acceptor) Listen(ctx context.Context) error {
	l, err := socket.Listen(a.cfg)
	if err != nil {
		return err
	}

	clo := mapCloser.New(ctx)

	a.mu.Lock()
	a.lst = l
	a.clo = clo
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		conn, acceptErr := l.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil {
				a.wg.Wait()
				return ctx.Err()
			}
			if socket.ErrorFilter(acceptErr) == nil {
				a.wg.Wait()
				return nil
			}
			a.errs.Add(acceptErr)
			a.log(acceptErr)
			continue
		}

		a.wg.Add(1)
		go a.accept(conn)
	}
}

func (a *Acceptor) accept(conn net.Conn) {
	defer a.wg.Done()

	svc := a.newSvc(conn)
	if svc == nil {
		err := ErrorSetupFailed.Error()
		a.errs.Add(err)
		a.log(err)
		_ = conn.Close()
		return
	}

	a.mu.Lock()
	clo := a.clo
	a.mu.Unlock()
	if clo != nil {
		clo.Add(conn)
	}

	sock := framed.New(conn, a.recvInit, a.recvNext, a.sendTO)
	p := port.New(sock, a.pack, svc, true, nil)
	p.Start()
	p.Wait()
}

func (a *Acceptor) log(err error) {
	if a.onLog != nil {
		a.onLog(err)
	}
}

// Close stops accepting new connections. Connections already accepted keep
// running until their own Port exits.
func (a *Acceptor) Close() error {
	a.mu.Lock()
	l := a.lst
	a.mu.Unlock()

	if l == nil {
		return nil
	}
	return l.Close()
}

// Wait blocks until every in-flight accepted connection's Port has exited.
func (a *Acceptor) Wait() {
	a.wg.Wait()
}
