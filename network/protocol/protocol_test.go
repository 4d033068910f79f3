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

package protocol_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/golib/network/protocol"
)

func TestProtocol(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Protocol Suite")
}

var _ = Describe("ParseNetworkProtocol", func() {
	It("parses every known token case-insensitively", func() {
		p, err := protocol.ParseNetworkProtocol("TCP")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(Equal(protocol.NetworkTCP))

		p, err = protocol.ParseNetworkProtocol(" unix ")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(Equal(protocol.NetworkUnix))
	})

	It("rejects an unknown token", func() {
		_, err := protocol.ParseNetworkProtocol("sctp")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("NetworkProtocol classification", func() {
	It("reports the right family predicate", func() {
		Expect(protocol.NetworkTCP6.IsTCP()).To(BeTrue())
		Expect(protocol.NetworkUDP4.IsUDP()).To(BeTrue())
		Expect(protocol.NetworkUnixGram.IsUnix()).To(BeTrue())
		Expect(protocol.NetworkTCP.IsUDP()).To(BeFalse())
	})

	It("round-trips Code back through ParseNetworkProtocol", func() {
		for _, p := range []protocol.NetworkProtocol{
			protocol.NetworkTCP, protocol.NetworkTCP4, protocol.NetworkTCP6,
			protocol.NetworkUDP, protocol.NetworkUDP4, protocol.NetworkUDP6,
			protocol.NetworkUnix, protocol.NetworkUnixGram,
		} {
			got, err := protocol.ParseNetworkProtocol(p.Code())
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(p))
		}
	})

	It("rejects an out-of-range value", func() {
		Expect(protocol.NetworkEmpty.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("DetectAddress", func() {
	It("detects a bare port as UDP", func() {
		Expect(protocol.DetectAddress("9000")).To(Equal(protocol.NetworkUDP))
	})

	It("detects host:port as TCP", func() {
		Expect(protocol.DetectAddress("127.0.0.1:9000")).To(Equal(protocol.NetworkTCP))
		Expect(protocol.DetectAddress("localhost:9000")).To(Equal(protocol.NetworkTCP))
	})

	It("falls back to a unix socket path", func() {
		Expect(protocol.DetectAddress("/var/run/app.sock")).To(Equal(protocol.NetworkUnix))
	})

	It("returns NetworkEmpty for an empty address", func() {
		Expect(protocol.DetectAddress("")).To(Equal(protocol.NetworkEmpty))
	})
})
