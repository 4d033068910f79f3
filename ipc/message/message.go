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

// Package message defines the wire-level envelope: a tag naming the handler
// plus a flat argument list, and the tags the RPC layer and port lifecycle
// reserve for themselves.
package message

// Reserved tags consumed by the RPC layer. They travel over the wire as the
// first element of a Message.
const (
	TagRegister = "register"
	TagCall     = "call"
	TagReply    = "reply"
	TagUnref    = "unref"
)

// Lifecycle tags are delivered by a Port to its Service locally; they never
// cross the wire.
const (
	TagConnected    = "CONNECTED"
	TagAccepted     = "ACCEPTED"
	TagDisconnected = "DISCONNECTED"
	TagSockError    = "SOCKERROR"
)

// Message is a handler name (the tag) plus its positional arguments.
// Packers encode it as a record holding the tag and the argument list (a
// CBOR map or a JSON object), not as a flat array led by the tag.
type Message struct {
	Tag  string
	Args []any
}

// New builds a Message from a tag and its arguments.
func New(tag string, args ...any) Message {
	return Message{Tag: tag, Args: args}
}

// Arg returns the i-th argument, or nil if out of range.
func (m Message) Arg(i int) any {
	if i < 0 || i >= len(m.Args) {
		return nil
	}
	return m.Args[i]
}
