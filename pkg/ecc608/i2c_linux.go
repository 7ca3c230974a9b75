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

//go:build linux

package ecc608

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl selecting the target address.
const i2cSlave = 0x0703

// i2c word addresses
const (
	wordSleep   = 0x01
	wordIdle    = 0x02
	wordCommand = 0x03
)

type i2cBus struct {
	f       *os.File
	address uint16
}

// OpenI2C opens an i2c-dev node and targets the chip at address.
func OpenI2C(path string, address uint16) (Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ecc608: failed to open %s: %w", path, err)
	}
	b := &i2cBus{f: f, address: address}
	if err := b.target(address); err != nil {
		_ = f.Close()
		return nil, err
	}
	return b, nil
}

func (b *i2cBus) target(address uint16) error {
	if err := unix.IoctlSetInt(int(b.f.Fd()), i2cSlave, int(address)); err != nil {
		return fmt.Errorf("ecc608: failed to select i2c address 0x%02x: %w", address, err)
	}
	return nil
}

// Wake holds SDA low by addressing the general call address, which never
// acknowledges.
func (b *i2cBus) Wake() error {
	if err := b.target(0x00); err != nil {
		return err
	}
	_, _ = b.f.Write([]byte{0x00})
	if err := b.target(b.address); err != nil {
		return err
	}
	time.Sleep(wakeDelay)

	resp := make([]byte, len(wakeResponse))
	if _, err := io.ReadFull(b.f, resp); err != nil {
		return fmt.Errorf("%w: %v", ErrWake, err)
	}
	return checkWake(resp)
}

func (b *i2cBus) Idle() error {
	return b.write([]byte{wordIdle})
}

func (b *i2cBus) Sleep() error {
	return b.write([]byte{wordSleep})
}

func (b *i2cBus) Send(packet []byte) error {
	return b.write(append([]byte{wordCommand}, packet...))
}

// Receive reads the count byte first and then the rest of the packet.
func (b *i2cBus) Receive(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("%w: receive buffer too small", ErrResponse)
	}
	if _, err := io.ReadFull(b.f, buf[:1]); err != nil {
		return 0, fmt.Errorf("ecc608: i2c read failed: %w", err)
	}
	count := int(buf[0])
	if count < 4 || count > len(buf) {
		return 1, fmt.Errorf("%w: count %d", ErrResponse, count)
	}
	if _, err := io.ReadFull(b.f, buf[1:count]); err != nil {
		return 1, fmt.Errorf("ecc608: i2c read failed: %w", err)
	}
	return count, nil
}

func (b *i2cBus) Close() error {
	return b.f.Close()
}

func (b *i2cBus) write(data []byte) error {
	if _, err := b.f.Write(data); err != nil {
		return fmt.Errorf("ecc608: i2c write failed: %w", err)
	}
	return nil
}
