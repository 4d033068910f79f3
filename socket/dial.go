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

package socket

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/golib/socket/config"
)

// KeepAliveIdle, KeepAliveInterval and KeepAliveCount name a TCP keepalive
// triple: probe after ~180s idle, every 5s, up to 12 unanswered probes.
// tuneTCP applies only KeepAliveIdle; KeepAliveInterval and KeepAliveCount
// are not applied to any connection.
const (
	KeepAliveIdle     = 180 * time.Second
	KeepAliveInterval = 5 * time.Second
	KeepAliveCount    = 12
)

// Dial opens a connection per cfg, tunes TCP options when applicable, and
// applies upd (if non-nil) before returning.
func Dial(ctx context.Context, cfg config.Client, timeout time.Duration, upd UpdateConn) (net.Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrorSocketDial.Error(err)
	}

	d := net.Dialer{Timeout: timeout}

	c, err := d.DialContext(ctx, cfg.Network.Code(), cfg.Address)
	if err != nil {
		return nil, ErrorSocketDial.Error(err)
	}

	tuneTCP(c)

	if upd != nil {
		upd(c)
	}

	return c, nil
}

func tuneTCP(c net.Conn) {
	tc, ok := c.(*net.TCPConn)
	if !ok {
		return
	}

	_ = tc.SetNoDelay(true)
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(KeepAliveIdle)
	// Only the idle period is set here: KeepAliveInterval and KeepAliveCount
	// (SO_KEEPINTVL/SO_KEEPCNT on linux) are not applied, so the probe
	// interval and count are whatever SetKeepAlivePeriod and the platform use.
}
