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

// Package port implements the per-connection reader/writer pair that drives
// a framed socket: one goroutine packs and sends queued messages, the other
// unpacks incoming frames and dispatches them to a Service.
package port

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	liberr "github.com/nabbar/golib/errors"
	"github.com/nabbar/golib/ipc/framed"
	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/packer"
	"github.com/nabbar/golib/ipc/queue"
)

const (
	MinPkgPort = liberr.MinPkgIPC + 260

	ErrorClosed liberr.CodeError = iota + MinPkgPort
)

func init() {
	liberr.RegisterIdFctMessage(ErrorClosed, errMessage)
}

//nolint #goerr113
func errMessage(code liberr.CodeError) string {
	switch code {
	case ErrorClosed:
		return "port closed"
	default:
		return liberr.NullMessage
	}
}

var orderCounter atomic.Uint64

// Service is what a Port dispatches decoded messages and lifecycle events
// to. The concrete implementation lives in package service; this narrow
// interface avoids an import cycle between port and service.
type Service interface {
	Dispatch(p *Port, msg message.Message)
	OnConnected(p *Port)
	OnAccepted(p *Port)
	OnDisconnected(p *Port)
	OnSockError(p *Port, err error)
}

// sendError is the captured (exception, failing-message) pair the writer
// leaves behind when it dies, so the reader's own failure can be annotated.
type sendError struct {
	err error
	msg message.Message
}

// Port owns one framed socket, one packer, one send queue, and drives a
// service's handlers from a dedicated reader goroutine while a dedicated
// writer goroutine drains the send queue.
type Port struct {
	order    uint64
	server   bool
	sock     *framed.Socket
	pack     packer.Packer
	sendQ    *queue.Queue[message.Message]
	finalize func()

	mu      sync.Mutex
	svc     Service
	sendErr *sendError

	wg sync.WaitGroup
}

var stopSentinel = message.Message{Tag: "\x00stop"}

// New builds a Port. server marks a server-accepted connection (delivers
// ACCEPTED instead of CONNECTED, and links into the service). finalize, if
// non-nil, runs after the port fully closes (a Connector uses this to
// implement recover mode).
func New(sock *framed.Socket, pack packer.Packer, svc Service, server bool, finalize func()) *Port {
	return &Port{
		order:    orderCounter.Add(1),
		server:   server,
		sock:     sock,
		pack:     pack,
		svc:      svc,
		sendQ:    queue.New[message.Message](message.Message{}, stopSentinel),
		finalize: finalize,
	}
}

// Order is the monotonic id assigned at construction; it identifies this
// connection in broadcast and connection-event delegates.
func (p *Port) Order() uint64 {
	return p.order
}

// IsServerSide reports whether this port was created by an Acceptor.
func (p *Port) IsServerSide() bool {
	return p.server
}

// Close forces the underlying socket closed, unblocking the reader so the
// usual SOCKERROR/DISCONNECTED cleanup runs. Safe to call more than once.
func (p *Port) Close() {
	_ = p.sock.Close()
}

// Send enqueues a tagged message for delivery by the writer goroutine.
func (p *Port) Send(tag string, args ...any) error {
	return p.SendMessage(message.New(tag, args...))
}

// SendMessage enqueues a pre-built message. Returns ErrorClosed once the
// port's writer has shut down.
func (p *Port) SendMessage(msg message.Message) error {
	if err := p.sendQ.Put(msg); err != nil {
		return ErrorClosed.Error(err)
	}
	return nil
}

// Start spawns the reader and writer goroutines and returns immediately.
func (p *Port) Start() {
	p.wg.Add(2)
	go p.writerLoop()
	go p.readerLoop()
}

// Wait blocks until both the reader and writer goroutines have exited.
func (p *Port) Wait() {
	p.wg.Wait()
}

func (p *Port) writerLoop() {
	defer p.wg.Done()

	for {
		msg, _ := p.sendQ.Get(0)
		if msg.Tag == stopSentinel.Tag {
			break
		}

		frame, _, err := p.pack.Pack(msg)
		if err != nil {
			p.captureSendErr(err, msg)
			p.sock.ShutRead()
			break
		}

		if err = p.sock.SendAll(frame); err != nil {
			p.captureSendErr(err, msg)
			p.sock.ShutRead()
			break
		}
	}

	p.sock.ShutWrite()
	p.sendQ.Stop(false)
}

func (p *Port) captureSendErr(err error, msg message.Message) {
	p.mu.Lock()
	p.sendErr = &sendError{err: err, msg: msg}
	p.mu.Unlock()
}

func (p *Port) takeSendErr() *sendError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sendErr
}

func (p *Port) readerLoop() {
	svc := p.service()

	if p.server {
		if svc != nil {
			svc.OnAccepted(p)
		}
	} else {
		if svc != nil {
			svc.OnConnected(p)
		}
	}

	var exitErr error

	for {
		msg, err := p.pack.Unpack(p.sock)
		if err != nil {
			exitErr = err
			break
		}

		if svc != nil {
			svc.Dispatch(p, msg)
		}
	}

	p.finish(svc, exitErr)
}

func (p *Port) finish(svc Service, exitErr error) {
	if exitErr == io.EOF {
		if svc != nil {
			svc.OnDisconnected(p)
		}
	} else {
		if se := p.takeSendErr(); se != nil {
			exitErr = fmt.Errorf("send of %q failed: %w; then: %v", se.msg.Tag, se.err, exitErr)
		}
		if svc != nil {
			svc.OnSockError(p, exitErr)
		}
	}

	p.sendQ.Stop(true)
	p.wg.Done()
	p.wg.Wait()

	p.clearService()
	_ = p.sock.Close()

	if p.finalize != nil {
		p.finalize()
	}
}

func (p *Port) service() Service {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.svc
}

// clearService nulls the service reference before close, breaking the
// service<->port reference cycle.
func (p *Port) clearService() {
	p.mu.Lock()
	p.svc = nil
	p.mu.Unlock()
}
