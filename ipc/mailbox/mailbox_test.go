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

package mailbox_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/golib/ipc/mailbox"
)

func TestMailbox(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mailbox Suite")
}

var _ = Describe("Mailbox", func() {
	It("issues distinct, non-zero keys", func() {
		m := mailbox.New()
		a := m.Reserve()
		b := m.Reserve()
		Expect(a).ToNot(Equal(uint64(0)))
		Expect(b).ToNot(Equal(uint64(0)))
		Expect(a).ToNot(Equal(b))
	})

	It("delivers a posted value to a blocked Wait", func() {
		m := mailbox.New()
		key := m.Reserve()

		done := make(chan any, 1)
		go func() {
			v, ok := m.Wait(key, time.Second)
			Expect(ok).To(BeTrue())
			done <- v
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(m.Post(key, "reply-value", true)).To(BeTrue())

		select {
		case v := <-done:
			Expect(v).To(Equal("reply-value"))
		case <-time.After(time.Second):
			Fail("Wait never woke up")
		}
	})

	It("times out if nothing is posted", func() {
		m := mailbox.New()
		key := m.Reserve()

		v, ok := m.Wait(key, 10*time.Millisecond)
		Expect(ok).To(BeFalse())
		Expect(v).To(BeNil())
	})

	It("reports false for a strict Post against an unknown key", func() {
		m := mailbox.New()
		Expect(m.Post(12345, "x", true)).To(BeFalse())
	})

	It("is a no-op Post against an unknown key when not strict", func() {
		m := mailbox.New()
		Expect(m.Post(12345, "x", false)).To(BeTrue())
	})

	It("makes a canceled key return immediately from Wait", func() {
		m := mailbox.New()
		key := m.Reserve()
		m.Cancel(key)

		v, ok := m.Wait(key, time.Second)
		Expect(ok).To(BeFalse())
		Expect(v).To(BeNil())
	})

	It("pops the slot so a second Wait on the same key fails", func() {
		m := mailbox.New()
		key := m.Reserve()
		Expect(m.Post(key, 1, true)).To(BeTrue())

		_, ok := m.Wait(key, time.Second)
		Expect(ok).To(BeTrue())

		_, ok = m.Wait(key, 10*time.Millisecond)
		Expect(ok).To(BeFalse())
	})
})
