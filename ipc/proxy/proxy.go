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

// Package proxy implements the backend object registry and frontend handle
// bookkeeping the RPC layer builds call/reply/unref on top of: a local
// object is registered once and referenced across the wire by a small
// monotonic integer id, never by a pointer or a name.
package proxy

import (
	"sync/atomic"

	golibatm "github.com/nabbar/golib/atomic"
)

// Backend is the registry of local objects this side of a connection has
// exported and is keeping alive on behalf of remote frontend handles.
type Backend struct {
	counter atomic.Uint64
	objects golibatm.MapTyped[uint64, any]
}

// NewBackend builds an empty Backend.
func NewBackend() *Backend {
	return &Backend{objects: golibatm.NewMapTyped[uint64, any]()}
}

// Register assigns obj a fresh positive id and keeps it alive until Unref.
func (b *Backend) Register(obj any) uint64 {
	id := b.counter.Add(1)
	b.objects.Store(id, obj)
	return id
}

// Lookup returns the object registered under id, if any.
func (b *Backend) Lookup(id uint64) (any, bool) {
	return b.objects.Load(id)
}

// Unref drops the registration for id. The remote frontend handle that
// referenced it is now dangling; any further call for that id fails.
func (b *Backend) Unref(id uint64) {
	b.objects.Delete(id)
}

// WireID encodes a proxy reference for the wire: a positive id refers to an
// object registered on the sender's own Backend (the receiver will call
// back), a negative id refers to an object the receiver itself registered
// and is handing back (same-port round trip), matching the sign convention
// the RPC layer's call/reply envelopes rely on.
func WireID(id uint64, sameSide bool) int64 {
	if sameSide {
		return -int64(id)
	}
	return int64(id)
}

// SplitWireID decodes a WireID back into its id and sameSide flag.
func SplitWireID(wire int64) (id uint64, sameSide bool) {
	if wire < 0 {
		return uint64(-wire), true
	}
	return uint64(wire), false
}

// Package is the wire-level tagged record a proxy reference marshals to
// (spec'd as a {proxy_id, no_reply} pair): ID's sign is WireID's convention,
// and zero is never a valid ID. Encoders should emit a literal Package;
// decoders arriving through a codec that only supports generic interface{}
// values (binary's CBOR codec among them) must go through AsPackage instead,
// since a decoded struct comes back as a map, not its original Go type.
type Package struct {
	ID      int64 `cbor:"proxy_id" json:"proxy_id"`
	NoReply bool  `cbor:"no_reply" json:"no_reply"`
}

// AsPackage recovers a Package from a value a codec decoded generically: a
// literal Package (the value never left process, or the codec preserves
// struct types), or the map shape CBOR/JSON produce when decoding a struct
// into interface{}.
func AsPackage(v any) (Package, bool) {
	switch t := v.(type) {
	case Package:
		return t, true
	case map[string]any:
		return packageFromMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				m[ks] = val
			}
		}
		return packageFromMap(m)
	default:
		return Package{}, false
	}
}

func packageFromMap(m map[string]any) (Package, bool) {
	rawID, hasID := m["proxy_id"]
	rawNR, hasNR := m["no_reply"]
	if !hasID || !hasNR || len(m) != 2 {
		return Package{}, false
	}

	id, ok := AsInt64(rawID)
	if !ok {
		return Package{}, false
	}

	nr, ok := rawNR.(bool)
	if !ok {
		return Package{}, false
	}

	return Package{ID: id, NoReply: nr}, true
}

// AsInt64 coerces a generically-decoded numeric value (CBOR yields
// int64/uint64, JSON yields float64) to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsUint64 coerces a generically-decoded numeric value to uint64.
func AsUint64(v any) (uint64, bool) {
	n, ok := AsInt64(v)
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

// Handle is a frontend reference to an object registered on the peer's
// Backend: the port the object lives behind, the remote id, and whether
// calls against it expect no reply.
type Handle struct {
	Port     PortSender
	RemoteID uint64
	NoReply  bool
}

// PortSender is the minimal send capability a Handle needs; ipc/port.Port
// satisfies it.
type PortSender interface {
	Send(tag string, args ...any) error
}

// Unref best-effort notifies the peer this handle is no longer referenced,
// so its Backend entry can be dropped. Errors (the connection already being
// gone) are not reported; there is no one left to tell.
func (h Handle) Unref() {
	_ = h.Port.Send("unref", h.RemoteID)
}
