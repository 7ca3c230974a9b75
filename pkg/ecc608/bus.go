// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gateway-security.
//
// go-gateway-security is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package ecc608

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultAddress is the factory 7-bit i2c address of the chip.
	DefaultAddress = 0x60

	// wakeDelay is tWHI, the time between the wake pulse and the first
	// transaction.
	wakeDelay = 1500 * time.Microsecond
)

// wakeResponse is the status packet returned after a successful wake.
var wakeResponse = []byte{0x04, 0x11, 0x33, 0x43}

// Bus moves packets between the host and the chip. Implementations handle
// the physical framing (i2c word address, single wire flags); packets passed
// to Send and returned from Receive start with the count byte.
type Bus interface {
	// Wake wakes the chip and checks the wake status packet.
	Wake() error

	// Idle puts the chip in idle mode, which keeps TempKey.
	Idle() error

	// Sleep puts the chip in sleep mode, which clears volatile state.
	Sleep() error

	// Send transmits a command packet.
	Send(packet []byte) error

	// Receive reads one response packet into buf and returns its length.
	Receive(buf []byte) (int, error)

	io.Closer
}

// OpenBus opens the bus for a device node. i2c-* nodes are opened as i2c
// buses at address; tty* nodes are opened as single wire buses over a UART
// and ignore the address.
func OpenBus(path string, address uint16) (Bus, error) {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "i2c"):
		return OpenI2C(path, address)
	case strings.HasPrefix(name, "tty"):
		return OpenSWI(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBus, path)
	}
}

func checkWake(resp []byte) error {
	if !bytes.Equal(resp, wakeResponse) {
		return fmt.Errorf("%w: unexpected response % x", ErrWake, resp)
	}
	return nil
}
