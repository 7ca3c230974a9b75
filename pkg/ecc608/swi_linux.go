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

// Single wire framing over a UART: every bit on the wire is one 7N1
// character at 230400 baud. The wire is shared, so every character sent is
// echoed back and must be drained.
const (
	swiFlagCommand  = 0x77
	swiFlagTransmit = 0x88
	swiFlagIdle     = 0xbb
	swiFlagSleep    = 0xcc
)

type swiBus struct {
	f  *os.File
	fd int
}

// OpenSWI opens a tty node and configures it for single wire signalling.
func OpenSWI(path string) (Bus, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("ecc608: failed to open %s: %w", path, err)
	}
	b := &swiBus{f: f, fd: int(f.Fd())}
	if err := b.setBaud(unix.B230400); err != nil {
		_ = f.Close()
		return nil, err
	}
	return b, nil
}

func (b *swiBus) setBaud(speed uint32) error {
	t, err := unix.IoctlGetTermios(b.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("ecc608: failed to read termios: %w", err)
	}
	t.Iflag = 0
	t.Oflag = 0
	t.Lflag = 0
	t.Cflag = speed | unix.CS7 | unix.CREAD | unix.CLOCAL
	t.Ispeed = speed
	t.Ospeed = speed
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 2
	if err := unix.IoctlSetTermios(b.fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("ecc608: failed to configure uart: %w", err)
	}
	return unix.IoctlSetInt(b.fd, unix.TCFLSH, unix.TCIOFLUSH)
}

// Wake sends a zero character at half speed, which holds the line low long
// enough to wake the chip.
func (b *swiBus) Wake() error {
	if err := b.setBaud(unix.B115200); err != nil {
		return err
	}
	if err := b.writeRaw([]byte{0x00}); err != nil {
		return err
	}
	if err := b.setBaud(unix.B230400); err != nil {
		return err
	}
	time.Sleep(wakeDelay)

	resp := make([]byte, len(wakeResponse))
	if err := b.writeBytes([]byte{swiFlagTransmit}); err != nil {
		return err
	}
	if err := b.readBytes(resp); err != nil {
		return fmt.Errorf("%w: %v", ErrWake, err)
	}
	return checkWake(resp)
}

func (b *swiBus) Idle() error {
	return b.writeBytes([]byte{swiFlagIdle})
}

func (b *swiBus) Sleep() error {
	return b.writeBytes([]byte{swiFlagSleep})
}

func (b *swiBus) Send(packet []byte) error {
	return b.writeBytes(append([]byte{swiFlagCommand}, packet...))
}

func (b *swiBus) Receive(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("%w: receive buffer too small", ErrResponse)
	}
	if err := b.writeBytes([]byte{swiFlagTransmit}); err != nil {
		return 0, err
	}
	if err := b.readBytes(buf[:1]); err != nil {
		return 0, err
	}
	count := int(buf[0])
	if count < 4 || count > len(buf) {
		return 1, fmt.Errorf("%w: count %d", ErrResponse, count)
	}
	if err := b.readBytes(buf[1:count]); err != nil {
		return 1, err
	}
	return count, nil
}

func (b *swiBus) Close() error {
	return b.f.Close()
}

// writeBytes encodes data least significant bit first and drains the echo.
func (b *swiBus) writeBytes(data []byte) error {
	return b.writeRaw(encodeSWI(data))
}

func (b *swiBus) writeRaw(chars []byte) error {
	if _, err := b.f.Write(chars); err != nil {
		return fmt.Errorf("ecc608: uart write failed: %w", err)
	}
	echo := make([]byte, len(chars))
	if _, err := io.ReadFull(b.f, echo); err != nil {
		return fmt.Errorf("ecc608: uart echo failed: %w", err)
	}
	return nil
}

func (b *swiBus) readBytes(out []byte) error {
	chars := make([]byte, 8*len(out))
	if _, err := io.ReadFull(b.f, chars); err != nil {
		return fmt.Errorf("ecc608: uart read failed: %w", err)
	}
	copy(out, decodeSWI(chars))
	return nil
}
