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
	"encoding/json"

	"github.com/nabbar/golib/ipc/message"
)

type jsonCodec struct{}

// NewJSON returns the text Packer: strings, numbers, lists, maps, booleans,
// null. It is the interoperable, human-inspectable alternative to the
// binary packer. A proxy.Package travels as an object with keys "proxy_id"
// and "no_reply", which proxy.AsPackage recognises on decode.
func NewJSON() Packer {
	return &basePacker{c: jsonCodec{}}
}

func (jsonCodec) encode(msg message.Message) ([]byte, error) {
	return json.Marshal(wireMessage{Tag: msg.Tag, Args: msg.Args})
}

func (jsonCodec) decode(payload []byte) (message.Message, error) {
	var w wireMessage

	if err := json.Unmarshal(payload, &w); err != nil {
		return message.Message{}, err
	}

	return message.Message{Tag: w.Tag, Args: w.Args}, nil
}
