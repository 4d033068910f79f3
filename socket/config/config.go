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

// Package config describes the endpoint configuration accepted by the
// socket client and server implementations.
package config

import (
	"fmt"
	"os"
	"strings"

	libdur "github.com/nabbar/golib/duration"
	libperm "github.com/nabbar/golib/file/perm"
	libptc "github.com/nabbar/golib/network/protocol"
)

// MaxGID is the largest group id accepted for a Unix socket's GroupPerm.
const MaxGID = 1 << 16

// Client describes a dial target.
type Client struct {
	Network libptc.NetworkProtocol
	Address string
}

// Validate checks the protocol is known and the address is non-empty.
func (c Client) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("empty address")
	}

	if c.Network.IsTCP() || c.Network.IsUDP() {
		if !strings.Contains(c.Address, ":") {
			return fmt.Errorf("invalid address '%s': missing port", c.Address)
		}
	}

	return nil
}

// Server describes a listen target, with Unix-socket-only permission knobs.
type Server struct {
	Network libptc.NetworkProtocol
	Address string

	// PermFile is the file mode applied to a freshly created Unix socket file.
	PermFile libperm.Perm

	// GroupPerm is the group id applied to a freshly created Unix socket file.
	// -1 means "leave the process' current group".
	GroupPerm int

	// ConIdleTimeout is an idle-connection duration carried with the rest of
	// the configuration. Listen and the socket Server do not read it, so no
	// connection is closed for being idle.
	ConIdleTimeout libdur.Duration
}

// Validate checks the protocol, address, and Unix-specific knobs.
func (s Server) Validate() error {
	if err := s.Network.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("empty address")
	}

	if s.Network.IsTCP() || s.Network.IsUDP() {
		if !strings.Contains(s.Address, ":") {
			return fmt.Errorf("invalid address '%s': missing port", s.Address)
		}
	}

	if s.Network.IsUnix() && s.GroupPerm > MaxGID {
		return fmt.Errorf("invalid group id %d: exceeds max gid %d", s.GroupPerm, MaxGID)
	}

	return nil
}

// UnlinkStale removes a pre-existing Unix socket file so bind can succeed.
// It is a no-op for non-Unix protocols or a non-existent path.
func (s Server) UnlinkStale() error {
	if !s.Network.IsUnix() {
		return nil
	}

	if _, err := os.Stat(s.Address); err != nil {
		return nil
	}

	return os.Remove(s.Address)
}
