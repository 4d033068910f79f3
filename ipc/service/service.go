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

// Package service implements the per-application message dispatcher a Port
// drives: a tag-keyed handler table plus the four connection lifecycle
// hooks, and the registry of linked ports a Service can broadcast to.
package service

import (
	"sync"

	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/port"
)

// Handler processes one decoded message for the connection that received it.
type Handler func(p *port.Port, msg message.Message)

// Lifecycle is notified of the four connection events a port observes.
// Each method receives the port that changed state; SockError additionally
// carries the failure.
type Lifecycle interface {
	Connected(p *port.Port)
	Accepted(p *port.Port)
	Disconnected(p *port.Port)
	SockError(p *port.Port, err error)
}

// NopLifecycle is a Lifecycle with no-op methods, embeddable by services
// that only care about a subset of the connection events.
type NopLifecycle struct{}

func (NopLifecycle) Connected(*port.Port)         {}
func (NopLifecycle) Accepted(*port.Port)          {}
func (NopLifecycle) Disconnected(*port.Port)      {}
func (NopLifecycle) SockError(*port.Port, error)  {}

// Service dispatches incoming messages by tag and tracks every port linked
// to it so it can broadcast. It implements port.Service.
type Service struct {
	life Lifecycle

	mu       sync.RWMutex
	handlers map[string]Handler
	dflt     Handler
	ports    map[uint64]*port.Port
}

// New builds a Service around a Lifecycle. dflt, if non-nil, handles any
// tag with no registered handler; otherwise unmatched tags are dropped.
func New(life Lifecycle, dflt Handler) *Service {
	return &Service{
		life:     life,
		handlers: make(map[string]Handler),
		dflt:     dflt,
		ports:    make(map[uint64]*port.Port),
	}
}

// On registers a handler for tag, replacing any previous one.
func (s *Service) On(tag string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[tag] = h
}

// LinkPort registers p so SendToAll reaches it.
func (s *Service) LinkPort(p *port.Port) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ports[p.Order()] = p
}

// UnlinkPort removes p from the broadcast set.
func (s *Service) UnlinkPort(p *port.Port) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ports, p.Order())
}

// Ports returns a snapshot of the currently linked ports.
func (s *Service) Ports() []*port.Port {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*port.Port, 0, len(s.ports))
	for _, p := range s.ports {
		out = append(out, p)
	}
	return out
}

// SendToAll broadcasts tag/args to every port linked at the moment of the
// call; a port that links or unlinks mid-broadcast is unaffected, since the
// send targets a snapshot.
func (s *Service) SendToAll(tag string, args ...any) {
	for _, p := range s.Ports() {
		_ = p.Send(tag, args...)
	}
}

// Dispatch implements port.Service: it looks up msg.Tag in the handler
// table, falling back to the default handler, and is a no-op for unknown
// tags with no default.
func (s *Service) Dispatch(p *port.Port, msg message.Message) {
	s.mu.RLock()
	h, ok := s.handlers[msg.Tag]
	dflt := s.dflt
	s.mu.RUnlock()

	if ok {
		h(p, msg)
		return
	}

	if dflt != nil {
		dflt(p, msg)
	}
}

// OnConnected implements port.Service. Client-side ports are never linked:
// SendToAll is a server-side broadcast primitive, and a dialed port has no
// siblings to broadcast to or be reached through.
func (s *Service) OnConnected(p *port.Port) {
	if p.IsServerSide() {
		s.LinkPort(p)
	}
	s.life.Connected(p)
}

// OnAccepted implements port.Service.
func (s *Service) OnAccepted(p *port.Port) {
	s.LinkPort(p)
	s.life.Accepted(p)
}

// OnDisconnected implements port.Service.
func (s *Service) OnDisconnected(p *port.Port) {
	s.UnlinkPort(p)
	s.life.Disconnected(p)
}

// OnSockError implements port.Service.
func (s *Service) OnSockError(p *port.Port, err error) {
	s.UnlinkPort(p)
	s.life.SockError(p, err)
}
