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
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBus is returned when the device path names neither an
	// i2c nor a tty device.
	ErrUnsupportedBus = errors.New("ecc608: unsupported bus")

	// ErrUnsupportedPlatform is returned on platforms without i2c-dev or
	// termios support.
	ErrUnsupportedPlatform = errors.New("ecc608: bus not supported on this platform")

	// ErrWake is returned when the chip does not answer a wake sequence.
	ErrWake = errors.New("ecc608: wake failed")

	// ErrCRC is returned when a response fails its checksum.
	ErrCRC = errors.New("ecc608: response crc mismatch")

	// ErrResponse is returned for truncated or malformed responses.
	ErrResponse = errors.New("ecc608: invalid response")

	// ErrInvalidDigest is returned when signing input is not a SHA-256 digest.
	ErrInvalidDigest = errors.New("ecc608: digest must be 32 bytes")
)

// StatusError is a non-zero status byte returned by the chip.
type StatusError byte

const (
	StatusMiscompare  StatusError = 0x01
	StatusParse       StatusError = 0x03
	StatusECCFault    StatusError = 0x05
	StatusSelfTest    StatusError = 0x07
	StatusHealthTest  StatusError = 0x08
	StatusExecution   StatusError = 0x0f
	StatusAfterWake   StatusError = 0x11
	StatusWatchdog    StatusError = 0xee
	StatusCommunicate StatusError = 0xff
)

func (s StatusError) Error() string {
	var msg string
	switch s {
	case StatusMiscompare:
		msg = "checkmac or verify miscompare"
	case StatusParse:
		msg = "parse error"
	case StatusECCFault:
		msg = "ecc fault"
	case StatusSelfTest:
		msg = "self test error"
	case StatusHealthTest:
		msg = "health test error"
	case StatusExecution:
		msg = "execution error"
	case StatusAfterWake:
		msg = "unexpected wake status"
	case StatusWatchdog:
		msg = "watchdog about to expire"
	case StatusCommunicate:
		msg = "communication error"
	default:
		msg = "unknown status"
	}
	return fmt.Sprintf("ecc608: %s (0x%02x)", msg, byte(s))
}
