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

package rpc

import (
	"fmt"
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/port"
	"github.com/nabbar/golib/ipc/proxy"
	"github.com/nabbar/golib/ipc/runtime"
	"github.com/nabbar/golib/ipc/service"
)

const (
	MinPkgRPC = liberr.MinPkgIPC + 360

	ErrorNotConnected liberr.CodeError = iota + MinPkgRPC
	ErrorRemoteFault
	ErrorProxyTimeout
)

func init() {
	liberr.RegisterIdFctMessage(ErrorNotConnected, errMessage)
}

//nolint #goerr113
func errMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNotConnected:
		return "proxy not yet connected"
	case ErrorRemoteFault:
		return "remote call failed"
	case ErrorProxyTimeout:
		return "timed out waiting for the remote reply"
	default:
		return liberr.NullMessage
	}
}

// Proxy is the client-side callable namespace built from the server's
// register envelope: one entry per exported name, bound to its backend id
// on the server, correlated to its reply through sharedMailbox.
type Proxy struct {
	p       *port.Port
	entries map[string]proxyEntry
}

// proxyEntry is one exported name's resolved handle: the server-side
// backend id to call, whether it expects a reply, and its doc string.
type proxyEntry struct {
	id      uint64
	noReply bool
	doc     string
}

// Call invokes the remote export name with args and blocks for its reply
// up to timeout (<=0 waits indefinitely). Returns ErrorRemoteFault wrapping
// the peer's error string on remote failure.
func (px *Proxy) Call(name string, timeout time.Duration, args ...any) (any, error) {
	ent, ok := px.entries[name]
	if !ok {
		return nil, fmt.Errorf("no such export: %s", name)
	}

	var cid uint64
	if !ent.noReply {
		cid = sharedMailbox.Reserve()
	}

	callArgs := append([]any{cid, ent.id}, encodeArgs(px.p, args)...)
	if err := px.p.Send(message.TagCall, callArgs...); err != nil {
		if !ent.noReply {
			sharedMailbox.Cancel(cid)
		}
		return nil, err
	}

	if ent.noReply {
		return nil, nil
	}

	v, ok := sharedMailbox.Wait(cid, timeout)
	if !ok {
		return nil, ErrorProxyTimeout.Error()
	}

	r := v.(replyResult)
	if !r.ok {
		return nil, ErrorRemoteFault.Error(fmt.Errorf("%v", r.value))
	}
	return decodeArg(px.p, r.value), nil
}

// Notify invokes the remote export name without waiting for a reply.
func (px *Proxy) Notify(name string, args ...any) error {
	ent, ok := px.entries[name]
	if !ok {
		return fmt.Errorf("no such export: %s", name)
	}
	callArgs := append([]any{uint64(0), ent.id}, encodeArgs(px.p, args)...)
	return px.p.Send(message.TagCall, callArgs...)
}

type replyResult struct {
	ok    bool
	value any
}

// Client is the client-side RPC Service: it waits for the server's register
// envelope, builds a Proxy from it, routes reply envelopes to sharedMailbox,
// and dispatches incoming call envelopes against sharedBackend so a
// callback the client passed to the server can be called back.
type Client struct {
	*service.Service

	mu     sync.Mutex
	notify chan struct{}
	proxy  *Proxy
}

// NewClient builds a Client. Use this as the Service a connector.Connector
// hands to each (re)connection.
func NewClient() *Client {
	c := &Client{notify: make(chan struct{})}
	c.Service = service.New(c, nil)
	c.On(message.TagRegister, c.handleRegister)
	c.On(message.TagReply, c.handleReply)
	c.On(message.TagCall, c.handleCall)
	c.On(message.TagUnref, c.handleUnref)
	return c
}

// wake must be called with mu held; it releases anyone blocked in Proxy.
func (c *Client) wake() {
	close(c.notify)
	c.notify = make(chan struct{})
}

func (c *Client) Connected(*port.Port)        {}
func (c *Client) Accepted(*port.Port)         {}
func (c *Client) SockError(*port.Port, error) {}

func (c *Client) Disconnected(*port.Port) {
	c.mu.Lock()
	c.proxy = nil
	c.wake()
	c.mu.Unlock()
}

// handleRegister decodes ['register', [[package, name, doc], ...]] into a
// Proxy: each triple's package id, stripped of its positive-id wire
// convention, becomes the backend id Call/Notify address on this port.
func (c *Client) handleRegister(p *port.Port, msg message.Message) {
	if len(msg.Args) < 1 {
		return
	}

	raw, ok := msg.Args[0].([]any)
	if !ok {
		return
	}

	entries := make(map[string]proxyEntry, len(raw))
	for _, item := range raw {
		triple, ok := item.([]any)
		if !ok || len(triple) < 3 {
			continue
		}

		pkg, ok := proxy.AsPackage(triple[0])
		if !ok {
			continue
		}

		name, _ := triple[1].(string)
		doc, _ := triple[2].(string)
		if name == "" {
			continue
		}

		id, sameSide := proxy.SplitWireID(pkg.ID)
		if sameSide {
			continue
		}

		entries[name] = proxyEntry{id: id, noReply: pkg.NoReply, doc: doc}
	}

	px := &Proxy{p: p, entries: entries}

	c.mu.Lock()
	c.proxy = px
	c.wake()
	c.mu.Unlock()
}

func (c *Client) handleReply(_ *port.Port, msg message.Message) {
	dispatchReply(msg)
}

func (c *Client) handleCall(p *port.Port, msg message.Message) {
	dispatchCall(p, runtime.Pool(), msg)
}

func (c *Client) handleUnref(_ *port.Port, msg message.Message) {
	dispatchUnref(msg)
}

// Proxy blocks until the register envelope has arrived (or timeout
// elapses, <=0 meaning indefinitely) and returns the resulting callable
// namespace.
func (c *Client) Proxy(timeout time.Duration) (*Proxy, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		c.mu.Lock()
		if c.proxy != nil {
			px := c.proxy
			c.mu.Unlock()
			return px, nil
		}
		wait := c.notify
		c.mu.Unlock()

		if deadline.IsZero() {
			<-wait
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrorNotConnected.Error()
		}

		select {
		case <-wait:
		case <-time.After(remaining):
			return nil, ErrorNotConnected.Error()
		}
	}
}
