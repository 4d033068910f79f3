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

// Package framed implements the timed blocking read/write contract that the
// rest of the IPC stack frames messages on top of.
package framed

import (
	"io"
	"net"
	"sync"
	"time"

	liberr "github.com/nabbar/golib/errors"
)

const (
	MinPkgFramed = liberr.MinPkgIPC + 120

	ErrorTimeout liberr.CodeError = iota + MinPkgFramed
	ErrorUnexpectedDisconnect
	ErrorClosed
)

func init() {
	liberr.RegisterIdFctMessage(ErrorTimeout, message)
}

//nolint #goerr113
func message(code liberr.CodeError) string {
	switch code {
	case ErrorTimeout:
		return "timed out"
	case ErrorUnexpectedDisconnect:
		return "unexpected disconnection"
	case ErrorClosed:
		return "socket closed"
	default:
		return liberr.NullMessage
	}
}

type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// Socket is a blocking, timed duplex byte stream. RecvExact and SendAll
// are the two primitives the Packer and Port build framing and dispatch on.
type Socket struct {
	conn net.Conn

	mu          sync.Mutex
	timeoutInit time.Duration
	timeoutNext time.Duration
	timeoutSend time.Duration
}

// New wraps conn. A zero timeout means "infinite" for that phase.
func New(conn net.Conn, initialRecv, nextRecv, send time.Duration) *Socket {
	return &Socket{
		conn:        conn,
		timeoutInit: initialRecv,
		timeoutNext: nextRecv,
		timeoutSend: send,
	}
}

// Conn exposes the wrapped net.Conn, e.g. for address inspection.
func (s *Socket) Conn() net.Conn {
	return s.conn
}

// RecvExact blocks until n bytes are read, the peer closes the connection,
// or a read times out. The initial-receive timeout applies until the first
// of the n bytes arrives; the next-receive timeout applies to each later read.
func (s *Socket) RecvExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0

	for got < n {
		timeout := s.timeoutNext
		if got == 0 {
			timeout = s.timeoutInit
		}

		if timeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
		} else {
			_ = s.conn.SetReadDeadline(time.Time{})
		}

		m, err := s.conn.Read(buf[got:])
		got += m

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return buf[:got], ErrorTimeout.Error(err)
			}

			if err == io.EOF {
				if got == 0 {
					return nil, io.EOF
				}
				return buf[:got], ErrorUnexpectedDisconnect.Error(err)
			}

			return buf[:got], err
		}
	}

	return buf, nil
}

// SendAll blocks with the send timeout until every byte of buf is written.
func (s *Socket) SendAll(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := 0
	for sent < len(buf) {
		if s.timeoutSend > 0 {
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.timeoutSend))
		} else {
			_ = s.conn.SetWriteDeadline(time.Time{})
		}

		n, err := s.conn.Write(buf[sent:])
		sent += n

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return ErrorTimeout.Error(err)
			}
			return err
		}
	}

	return nil
}

// ShutRead half-closes the read side. Any error is ignored, and a
// connection without half-close support is left as it is.
func (s *Socket) ShutRead() {
	if hc, ok := s.conn.(halfCloser); ok {
		_ = hc.CloseRead()
	}
}

// ShutWrite half-closes the write side. Any error is ignored, and a
// connection without half-close support is left as it is.
func (s *Socket) ShutWrite() {
	if hc, ok := s.conn.(halfCloser); ok {
		_ = hc.CloseWrite()
	}
}

// Close closes the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}
