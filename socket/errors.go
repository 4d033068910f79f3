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
	"errors"
	"io"
	"net"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

const (
	MinPkgSocket = liberr.MinPkgIPC + 100

	ErrorSocketClosed liberr.CodeError = iota + MinPkgSocket
	ErrorSocketTimeout
	ErrorSocketDial
	ErrorSocketListen
)

//nolint #goerr113
func init() {
	liberr.RegisterIdFctMessage(ErrorSocketClosed, message)
}

func message(code liberr.CodeError) string {
	switch code {
	case ErrorSocketClosed:
		return "socket is closed"
	case ErrorSocketTimeout:
		return "socket operation timed out"
	case ErrorSocketDial:
		return "socket dial failed"
	case ErrorSocketListen:
		return "socket listen failed"
	default:
		return liberr.NullMessage
	}
}

// ErrorFilter returns nil for errors that are an expected consequence of a
// connection being closed (by us or by the peer), and the error unchanged
// otherwise. Use it to avoid logging noise during teardown.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "use of closed network connection") {
		return nil
	}

	return err
}

// FuncError is registered by a Server or Client to receive asynchronous
// error notifications that are not otherwise returned from a blocking call.
type FuncError func(errs ...error)

// FuncInfo is registered on a Server to observe connection state
// transitions, for logging and monitoring.
type FuncInfo func(local, remote net.Addr, state ConnState)

// UpdateConn customizes a freshly dialed or accepted net.Conn before use.
type UpdateConn func(conn net.Conn)
