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

package packer

import (
	libcbr "github.com/fxamacker/cbor/v2"

	"github.com/nabbar/golib/ipc/message"
)

// wireMessage is the encoded shape of a message.Message: a record holding
// the tag and the positional-argument list. The binary codec writes it as a
// CBOR map with keys "tag" and "args", the JSON codec as an object with keys
// "Tag" and "Args"; neither writes a flat array. Lists and maps nested in
// Args round-trip through the generic interface{} decode.
type wireMessage struct {
	Tag  string        `cbor:"tag"`
	Args []interface{} `cbor:"args"`
}

type binaryCodec struct{}

// NewBinary returns the cross-process safe structured-object Packer: tuples,
// lists, maps, numbers, strings, bytes, and proxy packages (a proxy.Package
// travels as a map with keys "proxy_id" and "no_reply").
func NewBinary() Packer {
	return &basePacker{c: binaryCodec{}}
}

func (binaryCodec) encode(msg message.Message) ([]byte, error) {
	return libcbr.Marshal(wireMessage{Tag: msg.Tag, Args: msg.Args})
}

func (binaryCodec) decode(payload []byte) (message.Message, error) {
	var w wireMessage

	if err := libcbr.Unmarshal(payload, &w); err != nil {
		return message.Message{}, err
	}

	return message.Message{Tag: w.Tag, Args: w.Args}, nil
}
