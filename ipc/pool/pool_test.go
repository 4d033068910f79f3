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

package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/golib/ipc/pool"
)

func TestPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pool Suite")
}

var _ = Describe("Pool", func() {
	It("runs every queued task exactly once", func() {
		p := pool.New(4, 1, 50*time.Millisecond)
		defer func() { p.End(true); p.Wait() }()

		var n atomic.Int32
		var wg sync.WaitGroup
		wg.Add(20)

		for i := 0; i < 20; i++ {
			p.Queue(func() {
				n.Add(1)
				wg.Done()
			})
		}

		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			Fail("not every task ran")
		}
		Expect(n.Load()).To(Equal(int32(20)))
	})

	It("never exceeds maxThreads concurrent workers", func() {
		p := pool.New(3, 0, 50*time.Millisecond)
		defer func() { p.End(true); p.Wait() }()

		for i := 0; i < 30; i++ {
			p.Queue(func() { time.Sleep(5 * time.Millisecond) })
			Expect(p.Current()).To(BeNumerically("<=", 3))
		}
	})

	It("drops queued tasks it has not yet started when End(true) is called", func() {
		p := pool.New(1, 0, time.Second)

		var ran atomic.Int32
		block := make(chan struct{})

		p.Queue(func() {
			<-block
			ran.Add(1)
		})
		time.Sleep(10 * time.Millisecond)

		for i := 0; i < 5; i++ {
			p.Queue(func() { ran.Add(1) })
		}

		p.End(true)
		close(block)
		p.Wait()

		Expect(ran.Load()).To(BeNumerically("<", 6))
	})
})
