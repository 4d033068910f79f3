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

// Package packer encodes and decodes a message.Message to and from a
// length-prefixed wire frame: a 4-byte little-endian signed length N
// followed by N bytes of payload, 0 < N <= MaxFrameSize.
package packer

import (
	"encoding/binary"
	"io"

	liberr "github.com/nabbar/golib/errors"
	"github.com/nabbar/golib/ipc/framed"
	"github.com/nabbar/golib/ipc/message"
)

// MaxFrameSize is the 16 MiB cap on a single frame's payload.
const MaxFrameSize = 16 * 1024 * 1024

const (
	MinPkgPacker = liberr.MinPkgIPC + 150

	ErrorOversizeFrame liberr.CodeError = iota + MinPkgPacker
	ErrorMalformedFrame
	ErrorEncode
	ErrorDecode
)

func init() {
	liberr.RegisterIdFctMessage(ErrorOversizeFrame, errMessage)
}

//nolint #goerr113
func errMessage(code liberr.CodeError) string {
	switch code {
	case ErrorOversizeFrame:
		return "frame exceeds maximum size"
	case ErrorMalformedFrame:
		return "malformed frame length"
	case ErrorEncode:
		return "failed to encode message"
	case ErrorDecode:
		return "failed to decode message"
	default:
		return liberr.NullMessage
	}
}

// Packer converts a message.Message to and from a length-prefixed frame.
// Implementations are stateless and safe to share across ports, or a
// factory may hand out a fresh instance per port.
type Packer interface {
	// Pack encodes msg and returns the full frame (length prefix included)
	// plus the total byte count written.
	Pack(msg message.Message) (frame []byte, total int, err error)

	// Unpack reads one frame from sock and decodes it. Returns io.EOF at a
	// clean frame boundary, ErrorUnexpectedDisconnect on a partial frame,
	// and ErrorOversizeFrame if the declared length exceeds MaxFrameSize.
	Unpack(sock *framed.Socket) (message.Message, error)
}

// codec is the payload (de)serialization strategy a Packer delegates to.
type codec interface {
	encode(msg message.Message) ([]byte, error)
	decode(payload []byte) (message.Message, error)
}

type basePacker struct {
	c codec
}

func (p *basePacker) Pack(msg message.Message) ([]byte, int, error) {
	payload, err := p.c.encode(msg)
	if err != nil {
		return nil, 0, ErrorEncode.Error(err)
	}

	if len(payload) == 0 || len(payload) > MaxFrameSize {
		return nil, 0, ErrorOversizeFrame.Error()
	}

	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)

	return frame, len(frame), nil
}

func (p *basePacker) Unpack(sock *framed.Socket) (message.Message, error) {
	hdr, err := sock.RecvExact(4)
	if err != nil {
		return message.Message{}, err
	}

	n := binary.LittleEndian.Uint32(hdr)
	if n == 0 {
		return message.Message{}, ErrorMalformedFrame.Error()
	} else if n > MaxFrameSize {
		return message.Message{}, ErrorOversizeFrame.Error()
	}

	payload, err := sock.RecvExact(int(n))
	if err == io.EOF {
		return message.Message{}, framed.ErrorUnexpectedDisconnect.Error(err)
	} else if err != nil {
		return message.Message{}, err
	}

	msg, err := p.c.decode(payload)
	if err != nil {
		return message.Message{}, ErrorDecode.Error(err)
	}

	return msg, nil
}
