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

// Package ecc608 drives a Microchip ATECC608 secure element over i2c or a
// single wire UART. It implements the handful of commands needed to hold a
// gateway key: private key generation in a slot, public key retrieval and
// signing of an externally supplied digest.
package ecc608

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

// Opcodes
const (
	opNonce  = 0x16
	opGenKey = 0x40
	opSign   = 0x41
)

// Command modes
const (
	genKeyPrivate     = 0x04
	genKeyPublic      = 0x00
	noncePassthrough  = 0x03
	signExternal      = 0x80
	publicKeySize     = 64
	signatureSize     = 64
	digestSize        = 32
	statusPacketSize  = 4
	packetOverhead    = 3
	commandHeaderSize = 7
)

// Maximum execution times at the default clock divider.
const (
	genKeyTime = 215 * time.Millisecond
	signTime   = 220 * time.Millisecond
	nonceTime  = 20 * time.Millisecond
)

type command struct {
	opcode   byte
	param1   byte
	param2   uint16
	data     []byte
	execTime time.Duration
	respSize int
}

// packet encodes the command: count, opcode, param1, param2 (LE), data, crc.
func (c command) packet() []byte {
	out := make([]byte, 0, commandHeaderSize+len(c.data))
	out = append(out, byte(commandHeaderSize+len(c.data)), c.opcode, c.param1)
	out = binary.LittleEndian.AppendUint16(out, c.param2)
	out = append(out, c.data...)
	crc := crc16(out)
	return append(out, crc[0], crc[1])
}

// Chip issues commands to a secure element over a Bus. A Chip is not safe
// for concurrent use.
type Chip struct {
	bus    Bus
	logger *logging.Logger
	sleep  func(time.Duration)
}

// Open opens the bus for path and returns a chip on it.
func Open(path string, address uint16, logger *logging.Logger) (*Chip, error) {
	bus, err := OpenBus(path, address)
	if err != nil {
		return nil, err
	}
	return New(bus, logger), nil
}

// New returns a chip talking over bus.
func New(bus Bus, logger *logging.Logger) *Chip {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Chip{bus: bus, logger: logger, sleep: time.Sleep}
}

// GenKey generates a new private key in slot and returns the 64 byte X||Y
// public key.
func (c *Chip) GenKey(slot uint8) ([]byte, error) {
	return c.execute(command{
		opcode:   opGenKey,
		param1:   genKeyPrivate,
		param2:   uint16(slot),
		execTime: genKeyTime,
		respSize: publicKeySize,
	})
}

// PublicKey computes the 64 byte X||Y public key of the private key in slot.
func (c *Chip) PublicKey(slot uint8) ([]byte, error) {
	return c.execute(command{
		opcode:   opGenKey,
		param1:   genKeyPublic,
		param2:   uint16(slot),
		execTime: genKeyTime,
		respSize: publicKeySize,
	})
}

// Sign signs a 32 byte digest with the key in slot and returns the raw
// 64 byte R||S signature. The digest is loaded into TempKey with a
// passthrough nonce first; the chip is kept in idle between the two commands
// so TempKey survives.
func (c *Chip) Sign(slot uint8, digest []byte) ([]byte, error) {
	if len(digest) != digestSize {
		return nil, ErrInvalidDigest
	}
	if _, err := c.execute(command{
		opcode:   opNonce,
		param1:   noncePassthrough,
		data:     digest,
		execTime: nonceTime,
		respSize: 1,
	}); err != nil {
		return nil, err
	}
	return c.execute(command{
		opcode:   opSign,
		param1:   signExternal,
		param2:   uint16(slot),
		execTime: signTime,
		respSize: signatureSize,
	})
}

// Close puts the chip to sleep and releases the bus.
func (c *Chip) Close() error {
	c.logger.MaybeError(c.bus.Sleep())
	return c.bus.Close()
}

func (c *Chip) execute(cmd command) ([]byte, error) {
	if err := c.bus.Wake(); err != nil {
		return nil, err
	}
	defer func() {
		c.logger.MaybeError(c.bus.Idle())
	}()

	c.logger.Debugf("ecc608: opcode 0x%02x param1 0x%02x param2 0x%04x", cmd.opcode, cmd.param1, cmd.param2)
	if err := c.bus.Send(cmd.packet()); err != nil {
		return nil, err
	}
	c.sleep(cmd.execTime)

	size := cmd.respSize + packetOverhead
	if size < statusPacketSize {
		size = statusPacketSize
	}
	resp := make([]byte, size)
	n, err := c.bus.Receive(resp)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp[:n], cmd.respSize)
}

// parseResponse checks count and crc and unwraps the payload. A four byte
// packet carries a status byte; zero means success for commands without
// output.
func parseResponse(resp []byte, want int) ([]byte, error) {
	if len(resp) < statusPacketSize || int(resp[0]) != len(resp) {
		return nil, fmt.Errorf("%w: % x", ErrResponse, resp)
	}
	body, sum := resp[:len(resp)-2], resp[len(resp)-2:]
	if crc := crc16(body); crc[0] != sum[0] || crc[1] != sum[1] {
		return nil, ErrCRC
	}
	payload := body[1:]
	if len(resp) == statusPacketSize && want != 1 {
		if status := payload[0]; status != 0 {
			return nil, StatusError(status)
		}
		return nil, fmt.Errorf("%w: expected %d bytes, got status", ErrResponse, want)
	}
	if want == 1 && payload[0] != 0 {
		return nil, StatusError(payload[0])
	}
	if len(payload) != want {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrResponse, want, len(payload))
	}
	return payload, nil
}
