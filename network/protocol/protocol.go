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

// Package protocol enumerates the transport kinds the socket layer can open
// and parses the address grammar used to pick one of them.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// NetworkProtocol identifies a transport family for a socket endpoint.
type NetworkProtocol uint8

const (
	// NetworkEmpty is the zero value: an unset, invalid protocol.
	NetworkEmpty NetworkProtocol = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkUnix
	NetworkUnixGram
)

// Code returns the net package dial/listen network string for this protocol.
func (n NetworkProtocol) Code() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkUnix:
		return "unix"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// String implements fmt.Stringer, returning the same token as Code.
func (n NetworkProtocol) String() string {
	return n.Code()
}

// IsTCP reports whether the protocol is any flavor of TCP.
func (n NetworkProtocol) IsTCP() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6:
		return true
	default:
		return false
	}
}

// IsUDP reports whether the protocol is any flavor of UDP.
func (n NetworkProtocol) IsUDP() bool {
	switch n {
	case NetworkUDP, NetworkUDP4, NetworkUDP6:
		return true
	default:
		return false
	}
}

// IsUnix reports whether the protocol is a local stream or datagram socket.
func (n NetworkProtocol) IsUnix() bool {
	switch n {
	case NetworkUnix, NetworkUnixGram:
		return true
	default:
		return false
	}
}

// Validate reports an error if the protocol is not one of the known values.
func (n NetworkProtocol) Validate() error {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUDP, NetworkUDP4, NetworkUDP6, NetworkUnix, NetworkUnixGram:
		return nil
	default:
		return fmt.Errorf("invalid network protocol %d", n)
	}
}

// ParseNetworkProtocol maps a net package style token ("tcp", "unix", ...) to a NetworkProtocol.
func ParseNetworkProtocol(s string) (NetworkProtocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp":
		return NetworkTCP, nil
	case "tcp4":
		return NetworkTCP4, nil
	case "tcp6":
		return NetworkTCP6, nil
	case "udp":
		return NetworkUDP, nil
	case "udp4":
		return NetworkUDP4, nil
	case "udp6":
		return NetworkUDP6, nil
	case "unix":
		return NetworkUnix, nil
	case "unixgram":
		return NetworkUnixGram, nil
	default:
		return NetworkEmpty, fmt.Errorf("unknown network protocol '%s'", s)
	}
}

// DetectAddress guesses the protocol family from an address using the grammar:
// a bare integer is a UDP bind-all port, a string containing ':' with an
// all-digits suffix is TCP, anything else is a local stream socket path.
func DetectAddress(address string) NetworkProtocol {
	if address == "" {
		return NetworkEmpty
	}

	if _, err := strconv.Atoi(address); err == nil {
		return NetworkUDP
	}

	if i := strings.LastIndex(address, ":"); i >= 0 {
		port := address[i+1:]
		if port != "" {
			if _, err := strconv.Atoi(port); err == nil {
				return NetworkTCP
			}
		}
	}

	return NetworkUnix
}
