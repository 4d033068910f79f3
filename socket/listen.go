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
	"os"
	"syscall"

	"github.com/nabbar/golib/socket/config"
)

// Listen binds and listens per cfg. For TCP it enables SO_REUSEADDR; for a
// Unix socket it unlinks a stale socket file first and then applies the
// configured file mode and group ownership.
func Listen(cfg config.Server) (net.Listener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrorSocketListen.Error(err)
	}

	if cfg.Network.IsUnix() {
		if err := cfg.UnlinkStale(); err != nil {
			return nil, ErrorSocketListen.Error(err)
		}
	}

	lc := net.ListenConfig{}
	if cfg.Network.IsTCP() {
		lc.Control = controlReuseAddr
	}

	l, err := lc.Listen(context.Background(), cfg.Network.Code(), cfg.Address)
	if err != nil {
		return nil, ErrorSocketListen.Error(err)
	}

	if cfg.Network.IsUnix() {
		if cfg.PermFile != 0 {
			_ = os.Chmod(cfg.Address, cfg.PermFile.FileMode())
		}
		if cfg.GroupPerm >= 0 {
			_ = os.Chown(cfg.Address, -1, cfg.GroupPerm)
		}
	}

	return l, nil
}

func controlReuseAddr(_ string, _ string, c syscall.RawConn) error {
	var sockErr error

	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return sockErr
}
