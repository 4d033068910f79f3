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

package proxy_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/golib/ipc/proxy"
)

func TestProxy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Proxy Suite")
}

var _ = Describe("Backend", func() {
	It("registers distinct positive ids and looks the object back up", func() {
		b := proxy.NewBackend()
		id1 := b.Register("one")
		id2 := b.Register("two")
		Expect(id1).ToNot(Equal(id2))

		v, ok := b.Lookup(id1)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("one"))
	})

	It("drops the registration on Unref", func() {
		b := proxy.NewBackend()
		id := b.Register("gone")
		b.Unref(id)

		_, ok := b.Lookup(id)
		Expect(ok).To(BeFalse())
	})

	It("reports false for an id never registered", func() {
		b := proxy.NewBackend()
		_, ok := b.Lookup(999)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("WireID/SplitWireID", func() {
	It("round-trips a same-side id as negative", func() {
		wire := proxy.WireID(7, true)
		Expect(wire).To(Equal(int64(-7)))

		id, same := proxy.SplitWireID(wire)
		Expect(id).To(Equal(uint64(7)))
		Expect(same).To(BeTrue())
	})

	It("round-trips a cross-side id as positive", func() {
		wire := proxy.WireID(7, false)
		Expect(wire).To(Equal(int64(7)))

		id, same := proxy.SplitWireID(wire)
		Expect(id).To(Equal(uint64(7)))
		Expect(same).To(BeFalse())
	})
})

type fakeSender struct {
	tag  string
	args []any
}

func (f *fakeSender) Send(tag string, args ...any) error {
	f.tag = tag
	f.args = args
	return nil
}

var _ = Describe("Package/AsPackage", func() {
	It("recovers a literal Package unchanged", func() {
		pkg, ok := proxy.AsPackage(proxy.Package{ID: -5, NoReply: true})
		Expect(ok).To(BeTrue())
		Expect(pkg).To(Equal(proxy.Package{ID: -5, NoReply: true}))
	})

	It("recovers a Package from the map shape a generic codec decode produces", func() {
		decoded := map[string]any{"proxy_id": int64(12), "no_reply": false}
		pkg, ok := proxy.AsPackage(decoded)
		Expect(ok).To(BeTrue())
		Expect(pkg).To(Equal(proxy.Package{ID: 12, NoReply: false}))
	})

	It("coerces a JSON-decoded float64 id", func() {
		decoded := map[string]any{"proxy_id": float64(9), "no_reply": true}
		pkg, ok := proxy.AsPackage(decoded)
		Expect(ok).To(BeTrue())
		Expect(pkg.ID).To(Equal(int64(9)))
	})

	It("rejects a map missing the expected keys", func() {
		_, ok := proxy.AsPackage(map[string]any{"foo": "bar"})
		Expect(ok).To(BeFalse())
	})

	It("rejects an unrelated value", func() {
		_, ok := proxy.AsPackage("not a package")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("AsInt64/AsUint64", func() {
	It("coerces every numeric shape a codec might decode to", func() {
		for _, v := range []any{int64(5), uint64(5), int(5), float64(5)} {
			n, ok := proxy.AsInt64(v)
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(int64(5)))
		}
	})

	It("rejects a negative value for AsUint64", func() {
		_, ok := proxy.AsUint64(int64(-1))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Handle.Unref", func() {
	It("sends an unref envelope carrying the remote id", func() {
		fs := &fakeSender{}
		h := proxy.Handle{Port: fs, RemoteID: 42}
		h.Unref()

		Expect(fs.tag).To(Equal("unref"))
		Expect(fs.args).To(ConsistOf(uint64(42)))
	})
})
