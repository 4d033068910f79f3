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

// Package rpc wires ipc/service's tagged dispatch into a bidirectional
// call/reply/register/unref protocol: a server exports a fixed set of named
// procedures and advertises them on accept; a client decodes that
// advertisement into callable proxies and correlates replies through a
// mailbox.
package rpc

import (
	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/pool"
	"github.com/nabbar/golib/ipc/port"
	"github.com/nabbar/golib/ipc/proxy"
	"github.com/nabbar/golib/ipc/service"
)

// Func is an exported procedure. When CIDArg is set on the Export, the
// port's order id is prepended to args as its first element.
type Func func(p *port.Port, args []any) (any, error)

// Export describes one procedure offered to every accepted connection. It
// carries the dispatch attributes spec.md attaches to an export
// declaration, advertised to the client as (proxy_id, name, doc) on
// register.
type Export struct {
	Name string
	Doc  string
	Fn   Func

	// Quick runs Fn inline on the reader goroutine instead of handing it to
	// the worker pool; use only for handlers that cannot block.
	Quick bool

	// NoReply marks Fn as fire-and-forget: a caller's Notify never expects
	// a reply envelope, and a Call against it resolves immediately.
	NoReply bool

	// CIDArg requests the calling port's order id as Fn's first argument,
	// the Go equivalent of the original's "first parameter is cid__"
	// auto-detection (Go has no parameter-name reflection, so this is an
	// explicit opt-in instead).
	CIDArg bool
}

// Server is the RPC-enabled Service installed on every accepted connection.
// Each Export is registered into sharedBackend once, at construction; the
// resulting ids (stable for the Server's lifetime) are what gets advertised
// on ACCEPTED and what handleCall dispatches against.
type Server struct {
	*service.Service

	regs []registration
	pool *pool.Pool
}

// registration is the (id, name, doc, no-reply) tuple a Server advertises
// for one Export once it has been registered into sharedBackend.
type registration struct {
	id      uint64
	name    string
	doc     string
	noReply bool
}

// NewServer builds an RPC Server from an export table and a worker pool,
// registering every Export into sharedBackend. It is not itself an
// acceptor.ServiceFactory; a factory that calls it builds one Server, with
// its own registrations, per accepted connection.
func NewServer(exports []Export, workers *pool.Pool) *Server {
	s := &Server{pool: workers}

	for _, e := range exports {
		id := sharedBackend.Register(wrapExport(e))
		s.regs = append(s.regs, registration{id: id, name: e.Name, doc: e.Doc, noReply: e.NoReply})
	}

	s.Service = service.New(s, nil)
	s.On(message.TagCall, s.handleCall)
	s.On(message.TagUnref, s.handleUnref)
	s.On(message.TagReply, s.handleReply)

	return s
}

func (s *Server) Connected(*port.Port) {}

// Accepted sends ['register', [[package, name, doc], ...]] advertising
// every Export as a proxy package with a positive id (the server's own
// backend registration) the client resolves into frontend handles.
func (s *Server) Accepted(p *port.Port) {
	triples := make([]any, 0, len(s.regs))
	for _, r := range s.regs {
		pkg := proxy.Package{ID: proxy.WireID(r.id, false), NoReply: r.noReply}
		triples = append(triples, []any{pkg, r.name, r.doc})
	}
	_ = p.Send(message.TagRegister, triples)
}

func (s *Server) Disconnected(*port.Port)     {}
func (s *Server) SockError(*port.Port, error) {}

func (s *Server) handleCall(p *port.Port, msg message.Message) {
	dispatchCall(p, s.pool, msg)
}

func (s *Server) handleUnref(_ *port.Port, msg message.Message) {
	dispatchUnref(msg)
}

// handleReply lets a server-side export that invoked a client-supplied
// Handle (rpc.Invoke) receive that call's reply; an ordinary export never
// triggers this path.
func (s *Server) handleReply(_ *port.Port, msg message.Message) {
	dispatchReply(msg)
}
