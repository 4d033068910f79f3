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

package packer_test

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/golib/ipc/framed"
	"github.com/nabbar/golib/ipc/message"
	"github.com/nabbar/golib/ipc/packer"
)

func TestPacker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Packer Suite")
}

func pipeSockets() (*framed.Socket, *framed.Socket) {
	a, b := net.Pipe()
	return framed.New(a, 0, 0, time.Second), framed.New(b, 0, 0, time.Second)
}

var _ = DescribeTable("round-trips a message through Pack/Unpack",
	func(p packer.Packer) {
		client, server := pipeSockets()
		defer client.Close()
		defer server.Close()

		msg := message.New("call", "echo", int64(7), []interface{}{"a", "b"})

		go func() {
			frame, total, err := p.Pack(msg)
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(len(frame)))
			Expect(client.SendAll(frame)).To(Succeed())
		}()

		got, err := p.Unpack(server)
		Expect(err).ToNot(HaveOccurred())
		Expect(got.Tag).To(Equal(msg.Tag))
		Expect(got.Args).To(HaveLen(len(msg.Args)))
	},
	Entry("binary", packer.NewBinary()),
	Entry("json", packer.NewJSON()),
)

var _ = Describe("Pack", func() {
	It("rejects a message whose encoding exceeds the cap", func() {
		p := packer.NewBinary()
		big := make([]byte, packer.MaxFrameSize+1)
		_, _, err := p.Pack(message.New("blob", big))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Unpack", func() {
	It("reports a malformed frame for a non-positive length prefix", func() {
		client, server := pipeSockets()
		defer client.Close()
		defer server.Close()

		hdr := make([]byte, 4)
		binary.LittleEndian.PutUint32(hdr, 0)

		go func() { _ = client.SendAll(hdr) }()

		_, err := packer.NewBinary().Unpack(server)
		Expect(err).To(HaveOccurred())
	})

	It("reports an oversize frame for an oversize length prefix", func() {
		client, server := pipeSockets()
		defer client.Close()
		defer server.Close()

		hdr := make([]byte, 4)
		binary.LittleEndian.PutUint32(hdr, uint32(packer.MaxFrameSize+1))

		go func() { _ = client.SendAll(hdr) }()

		_, err := packer.NewBinary().Unpack(server)
		Expect(err).To(HaveOccurred())
	})

	It("propagates a clean EOF when nothing was ever sent", func() {
		client, server := pipeSockets()
		_ = client.Close()
		defer server.Close()

		_, err := packer.NewBinary().Unpack(server)
		Expect(err).To(HaveOccurred())
	})
})
