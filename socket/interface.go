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
)

// Context is handed to a HandlerFunc for one accepted or dialed connection.
// It exposes raw I/O plus connection metadata; framing and message dispatch
// are layered on top by the ipc package.
type Context interface {
	IsConnected() bool
	RemoteHost() string
	LocalHost() string

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Conn returns the underlying net.Conn, for deadline control and
	// protocol-specific half-close.
	Conn() net.Conn

	Done() <-chan struct{}
	Err() error
}

// HandlerFunc processes one connection end to end.
type HandlerFunc func(ctx Context)

// Handler lets a stateful receiver act as a HandlerFunc source.
type Handler[T any] func(state T, ctx Context)

// Response is a callback type for a server's reply stream in a one-shot
// client request/response exchange. No Client method in this package takes one.
type Response func(r interface {
	Read(p []byte) (int, error)
})

// Server accepts connections on a listener and dispatches each to a handler.
type Server interface {
	RegisterFuncError(fct FuncError)
	RegisterFuncInfo(fct FuncInfo)

	Listen(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Close() error

	IsRunning() bool
	IsGone() bool
	OpenConnections() int64
}

// Client dials a single connection and exposes it for request/response use.
type Client interface {
	RegisterFuncError(fct FuncError)

	Connect(ctx context.Context) error
	Close() error

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}
