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

package socket_test

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libptc "github.com/nabbar/golib/network/protocol"
	"github.com/nabbar/golib/socket"
	"github.com/nabbar/golib/socket/config"
)

func TestSocket(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Socket Suite")
}

var _ = Describe("Listen/Dial", func() {
	It("round-trips a byte over a TCP listener via a Server/Client pair", func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		addr := l.Addr().String()
		Expect(l.Close()).To(Succeed())

		received := make(chan byte, 1)
		srv := socket.NewServer(
			config.Server{Network: libptc.NetworkTCP, Address: addr},
			nil,
			func(ctx socket.Context) {
				buf := make([]byte, 1)
				if _, err := ctx.Read(buf); err == nil {
					received <- buf[0]
				}
			},
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = srv.Listen(ctx) }()
		Eventually(srv.IsRunning, time.Second, 10*time.Millisecond).Should(BeTrue())

		cli := socket.NewClient(config.Client{Network: libptc.NetworkTCP, Address: addr}, time.Second, nil)
		Expect(cli.Connect(context.Background())).To(Succeed())
		defer cli.Close()

		_, err = cli.Write([]byte{0x42})
		Expect(err).ToNot(HaveOccurred())

		Eventually(received, time.Second).Should(Receive(Equal(byte(0x42))))
	})

	It("binds a Unix socket and unlinks a stale socket file first", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "test.sock")

		l1, err := net.Listen("unix", path)
		Expect(err).ToNot(HaveOccurred())
		l1.(*net.UnixListener).SetUnlinkOnClose(false)
		Expect(l1.Close()).To(Succeed())

		l2, err := socket.Listen(config.Server{Network: libptc.NetworkUnix, Address: path})
		Expect(err).ToNot(HaveOccurred())
		defer l2.Close()

		Expect(l2.Addr().String()).To(Equal(path))
	})

	It("rejects an invalid client config before dialing", func() {
		_, err := socket.Dial(context.Background(), config.Client{Network: libptc.NetworkTCP, Address: "no-port-here"}, time.Second, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an invalid server config before listening", func() {
		_, err := socket.Listen(config.Server{Network: libptc.NetworkEmpty, Address: "x"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ErrorFilter", func() {
	It("swallows io.EOF and net.ErrClosed", func() {
		Expect(socket.ErrorFilter(io.EOF)).To(BeNil())
		Expect(socket.ErrorFilter(net.ErrClosed)).To(BeNil())
	})

	It("swallows a closed-network-connection message", func() {
		Expect(socket.ErrorFilter(errors.New("use of closed network connection"))).To(BeNil())
	})

	It("passes through an unrelated error unchanged", func() {
		err := errors.New("boom")
		Expect(socket.ErrorFilter(err)).To(Equal(err))
	})

	It("passes nil through as nil", func() {
		Expect(socket.ErrorFilter(nil)).To(BeNil())
	})
})
