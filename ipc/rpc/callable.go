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
	"time"

	"github.com/nabbar/golib/ipc/mailbox"
	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/pool"
	"github.com/nabbar/golib/ipc/port"
	"github.com/nabbar/golib/ipc/proxy"
)

// CallbackTimeout bounds how long a locally-invoked frontend Handle (one
// our peer passed us as a callback argument) waits for its reply.
const CallbackTimeout = 30 * time.Second

// sharedBackend and sharedMailbox back every Server and Client this process
// builds: reply ids must be unique across every port, not just the one
// that issued the call, since a reply is correlated by id alone, so both
// the proxy-db and the mailbox are process-wide singletons rather than
// per-connection state.
var (
	sharedBackend = proxy.NewBackend()
	sharedMailbox = mailbox.New()
)

// Callback is a function value a caller may hand to a remote export as an
// argument; the peer invokes it through a frontend proxy.Handle rather than
// calling it in-process. Go has no runtime predicate for "this value is
// callable" the way the arg-tree re-encoding spec assumes, so Callback is
// the explicit type that opts a value into that treatment.
type Callback func(args []any) (any, error)

// backendEntry is what gets registered into sharedBackend under a positive
// id: either a declared Export (name/doc advertised at register time,
// quick/cid-argument dispatch attributes honored) or a bare Callback
// received as a call argument, which carries none of those.
type backendEntry struct {
	name    string
	doc     string
	quick   bool
	cidArg  bool
	noReply bool
	fn      func(p *port.Port, args []any) (any, error)
}

func wrapExport(e Export) backendEntry {
	return backendEntry{
		name:    e.Name,
		doc:     e.Doc,
		quick:   e.Quick,
		cidArg:  e.CIDArg,
		noReply: e.NoReply,
		fn:      e.Fn,
	}
}

func wrapCallback(cb Callback, noReply bool) backendEntry {
	return backendEntry{
		noReply: noReply,
		fn: func(_ *port.Port, args []any) (any, error) {
			return cb(args)
		},
	}
}

func wrapHandle(h proxy.Handle) backendEntry {
	return backendEntry{
		noReply: h.NoReply,
		fn: func(_ *port.Port, args []any) (any, error) {
			return invokeHandle(h, args)
		},
	}
}

// encodeArg walks v depth-first per the proxy package's wire-encoding
// rules: a Handle bound to self becomes a backward (-remote-id) reference,
// a Handle bound elsewhere or a bare Callback is freshly registered on
// sharedBackend and encoded with its new positive id, and maps/slices
// recurse. Everything else passes through for the packer to serialize.
func encodeArg(self *port.Port, v any) any {
	switch t := v.(type) {
	case *proxy.Handle:
		return encodeHandle(self, *t)
	case proxy.Handle:
		return encodeHandle(self, t)
	case Callback:
		id := sharedBackend.Register(wrapCallback(t, false))
		return proxy.Package{ID: proxy.WireID(id, false), NoReply: false}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeArg(self, e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = encodeArg(self, e)
		}
		return out
	default:
		return v
	}
}

func encodeHandle(self *port.Port, h proxy.Handle) any {
	if hp, ok := h.Port.(*port.Port); ok && hp == self {
		return proxy.Package{ID: proxy.WireID(h.RemoteID, true), NoReply: h.NoReply}
	}

	id := sharedBackend.Register(wrapHandle(h))
	return proxy.Package{ID: proxy.WireID(id, false), NoReply: h.NoReply}
}

// decodeArg is encodeArg's inverse: a wire Package with a positive id
// becomes a fresh frontend Handle bound to arrivingPort; a negative id
// resolves back to the local callable it referenced, surfaced as a
// Callback. Everything else passes through; maps/slices recurse.
func decodeArg(arrivingPort *port.Port, v any) any {
	if pkg, ok := proxy.AsPackage(v); ok {
		id, sameSide := proxy.SplitWireID(pkg.ID)

		if sameSide {
			obj, found := sharedBackend.Lookup(id)
			entry, ok := obj.(backendEntry)
			if !found || !ok {
				return nil
			}
			return Callback(func(args []any) (any, error) { return entry.fn(arrivingPort, args) })
		}

		return &proxy.Handle{Port: arrivingPort, RemoteID: id, NoReply: pkg.NoReply}
	}

	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeArg(arrivingPort, e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = decodeArg(arrivingPort, e)
		}
		return out
	default:
		return v
	}
}

func encodeArgs(self *port.Port, args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = encodeArg(self, a)
	}
	return out
}

func decodeArgs(arrivingPort *port.Port, args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = decodeArg(arrivingPort, a)
	}
	return out
}

// invokeHandle performs a frontend Handle's call/reply round trip: reserve
// a reply id (skipped for no-reply handles), send the call envelope, and
// block on the mailbox for the matching reply.
func invokeHandle(h proxy.Handle, args []any) (any, error) {
	sender, ok := h.Port.(*port.Port)
	if !ok {
		return nil, fmt.Errorf("rpc: handle is not bound to a live port")
	}

	var cid uint64
	if !h.NoReply {
		cid = sharedMailbox.Reserve()
	}

	callArgs := append([]any{cid, h.RemoteID}, encodeArgs(sender, args)...)
	if err := sender.Send(message.TagCall, callArgs...); err != nil {
		if !h.NoReply {
			sharedMailbox.Cancel(cid)
		}
		return nil, err
	}

	if h.NoReply {
		return nil, nil
	}

	v, ok := sharedMailbox.Wait(cid, CallbackTimeout)
	if !ok {
		return nil, ErrorProxyTimeout.Error()
	}

	r := v.(replyResult)
	if !r.ok {
		return nil, ErrorRemoteFault.Error(fmt.Errorf("%v", r.value))
	}
	return decodeArg(sender, r.value), nil
}

// dispatchCall handles an incoming ['call', reply_id, proxy_id, args...]
// envelope against sharedBackend: look up the target by id, decode its
// argument tree against p, run it inline (quick) or via workers, and post
// a reply unless reply_id is 0. Shared by Server and Client so a callback
// handed to either side can be invoked from the other.
func dispatchCall(p *port.Port, workers *pool.Pool, msg message.Message) {
	if len(msg.Args) < 2 {
		return
	}

	cid, _ := proxy.AsUint64(msg.Args[0])
	id, ok := proxy.AsUint64(msg.Args[1])
	if !ok {
		return
	}

	args := decodeArgs(p, msg.Args[2:])

	obj, found := sharedBackend.Lookup(id)
	entry, eok := obj.(backendEntry)
	if !found || !eok {
		if cid != 0 {
			_ = p.Send(message.TagReply, cid, false, fmt.Sprintf("no such export: %d", id))
		}
		return
	}

	run := func() {
		callArgs := args
		if entry.cidArg {
			callArgs = append([]any{p.Order()}, args...)
		}

		result, err := entry.fn(p, callArgs)
		if cid == 0 {
			return
		}
		if err != nil {
			_ = p.Send(message.TagReply, cid, false, err.Error())
			return
		}
		_ = p.Send(message.TagReply, cid, true, encodeArg(p, result))
	}

	if entry.quick || workers == nil {
		run()
		return
	}
	workers.Queue(run)
}

// dispatchUnref handles an incoming ['unref', proxy_id] envelope: drop the
// backend registration, if present.
func dispatchUnref(msg message.Message) {
	if len(msg.Args) < 1 {
		return
	}
	if id, ok := proxy.AsUint64(msg.Args[0]); ok {
		sharedBackend.Unref(id)
	}
}

// dispatchReply handles an incoming ['reply', reply_id, ok, payload]
// envelope by posting it to sharedMailbox. Shared by Server and Client:
// either side may have invoked a handle it received as a call argument, so
// either side may be the one blocked waiting for this reply.
func dispatchReply(msg message.Message) {
	if len(msg.Args) < 3 {
		return
	}

	cid, _ := proxy.AsUint64(msg.Args[0])
	ok, _ := msg.Args[1].(bool)
	value := msg.Args[2]

	sharedMailbox.Post(cid, replyResult{ok: ok, value: value}, false)
}

// Invoke calls a frontend Handle received as a call argument (typically
// decoded out of another export's args by decodeArg), performing the
// call/reply round trip against the port it is bound to and returning its
// decoded result.
func Invoke(h *proxy.Handle, args ...any) (any, error) {
	return invokeHandle(*h, args)
}
