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

// Package ecc608 implements the secure element backend. The private key
// lives in a slot of an ATECC608 chip and never leaves it; the keypair signs
// by sending digests to the chip.
package ecc608

import (
	"crypto"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	pkgecc608 "github.com/jeremyhahn/go-gateway-security/pkg/ecc608"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

const (
	// DefaultAddress is the bus address used when the locator has no port.
	DefaultAddress = 96

	// maxCreateAttempts bounds key generation. A generated key is rejected
	// when its read back fails, which includes keys that are not compact.
	maxCreateAttempts = 5

	coordinateSize = 32
)

// Chip is the subset of the secure element driver the backend needs.
type Chip interface {
	GenKey(slot uint8) ([]byte, error)
	PublicKey(slot uint8) ([]byte, error)
	Sign(slot uint8, digest []byte) ([]byte, error)
	Close() error
}

// Opener opens the chip at path. The default opener uses the i2c or single
// wire bus selected by the device name.
type Opener func(path string, address uint16, logger *logging.Logger) (Chip, error)

// OpenChip is the default Opener.
func OpenChip(path string, address uint16, logger *logging.Logger) (Chip, error) {
	return pkgecc608.Open(path, address, logger)
}

// Config holds the configuration for the secure element backend
type Config struct {
	// Path is the i2c or tty device node (e.g. /dev/i2c-1)
	Path string

	// Address is the 7-bit bus address, ignored by single wire buses
	// (default: 96)
	Address uint16

	// Slot is the key slot holding the gateway key (default: 0)
	Slot uint8

	// Opener opens the chip (default: OpenChip)
	Opener Opener

	// Logger is the logger instance to use
	Logger *logging.Logger
}

// ConfigFromLocator builds a configuration from an ecc://<dev>[:address][?slot=n]
// locator. The host names a node under /dev.
func ConfigFromLocator(l *locator.Locator) (*Config, error) {
	if l.Host() == "" {
		return nil, fmt.Errorf("%w: %q", locator.ErrInvalidURL, l.String())
	}
	address, ok := l.Port()
	if !ok {
		address = DefaultAddress
	}
	slot, err := locator.Arg[uint8](l, "slot", 0)
	if err != nil {
		return nil, err
	}
	return &Config{
		Path:    "/dev/" + l.Host(),
		Address: address,
		Slot:    slot,
	}, nil
}

// Validate validates the secure element backend configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: device path is required", backend.ErrInvalidConfig)
	}
	if c.Slot > 15 {
		return fmt.Errorf("%w: slot %d out of range", backend.ErrInvalidConfig, c.Slot)
	}
	return nil
}

// Info describes the chip location of the key.
type Info struct {
	Path    string `json:"path"`
	Address uint16 `json:"address"`
	Slot    uint8  `json:"slot"`
}

// Kind implements backend.Info.
func (Info) Kind() backend.Kind { return backend.KindECC608 }

// Backend reads and creates keys in a secure element slot.
type Backend struct {
	path    string
	address uint16
	slot    uint8
	opener  Opener
	logger  *logging.Logger
	chip    Chip
}

// New creates a secure element backend. The chip is opened on first use.
func New(config *Config) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", backend.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		path:    config.Path,
		address: config.Address,
		slot:    config.Slot,
		opener:  config.Opener,
		logger:  config.Logger,
	}
	if b.opener == nil {
		b.opener = OpenChip
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	return b, nil
}

// GetKeypair returns the keypair in the configured slot. With create set a
// new private key is generated into the slot first; generation is retried
// when the new key cannot be read back as a compact key.
func (b *Backend) GetKeypair(create bool) (*keys.Keypair, error) {
	chip, err := b.open()
	if err != nil {
		return nil, err
	}
	if !create {
		return b.keypairInSlot(chip)
	}

	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		generated, err := chip.GenKey(b.slot)
		if err != nil {
			return nil, fmt.Errorf("ecc608: failed to generate key in slot %d: %w", b.slot, err)
		}
		keypair, err := b.keypairInSlot(chip)
		if err == nil {
			err = b.matchGenerated(generated, keypair)
		}
		if err == nil {
			return keypair, nil
		}
		lastErr = err
		b.logger.Warnf("ecc608: slot %d key rejected (attempt %d/%d): %v",
			b.slot, attempt, maxCreateAttempts, err)
	}
	return nil, lastErr
}

// GetInfo reports the chip location without touching the hardware.
func (b *Backend) GetInfo() (backend.Info, error) {
	return Info{
		Path:    b.path,
		Address: b.address,
		Slot:    b.slot,
	}, nil
}

// Close releases the chip if it was opened.
func (b *Backend) Close() error {
	if b.chip == nil {
		return nil
	}
	err := b.chip.Close()
	b.chip = nil
	return err
}

func (b *Backend) open() (Chip, error) {
	if b.chip != nil {
		return b.chip, nil
	}
	b.logger.Debug("opening secure element", "path", b.path, "address", b.address)
	chip, err := b.opener(b.path, b.address, b.logger)
	if err != nil {
		return nil, err
	}
	b.chip = chip
	return chip, nil
}

// matchGenerated checks that the slot reads back the key GenKey reported.
func (b *Backend) matchGenerated(raw []byte, keypair *keys.Keypair) error {
	if len(raw) != 2*coordinateSize {
		return fmt.Errorf("%w: genkey returned %d bytes", keys.ErrInvalidPublicKey, len(raw))
	}
	generated, err := keys.ECCPublicKeyFromXY(raw[:coordinateSize], raw[coordinateSize:])
	if err != nil {
		return err
	}
	if !generated.Equal(keypair.PublicKey().Crypto()) {
		return fmt.Errorf("ecc608: slot %d reads back a different key than generated", b.slot)
	}
	return nil
}

func (b *Backend) keypairInSlot(chip Chip) (*keys.Keypair, error) {
	raw, err := chip.PublicKey(b.slot)
	if err != nil {
		var status pkgecc608.StatusError
		if errors.As(err, &status) {
			return nil, fmt.Errorf("ecc608: slot %d: %w: %w", b.slot, backend.ErrKeyNotFound, err)
		}
		return nil, fmt.Errorf("ecc608: failed to read slot %d: %w", b.slot, err)
	}
	if len(raw) != 2*coordinateSize {
		return nil, fmt.Errorf("%w: slot %d returned %d bytes", keys.ErrInvalidPublicKey, b.slot, len(raw))
	}
	pub, err := keys.ECCPublicKeyFromXY(raw[:coordinateSize], raw[coordinateSize:])
	if err != nil {
		return nil, err
	}
	if !keys.IsCompact(pub) {
		return nil, fmt.Errorf("ecc608: slot %d: %w", b.slot, keys.ErrNotCompact)
	}
	return keys.NewKeypair(keys.MainNet, &slotSigner{chip: chip, slot: b.slot, public: pub})
}

// slotSigner signs SHA-256 digests with the key held in a chip slot.
type slotSigner struct {
	chip   Chip
	slot   uint8
	public *ecdsa.PublicKey
}

func (s *slotSigner) Public() crypto.PublicKey {
	return s.public
}

// Sign returns an ASN.1 DER signature of digest.
func (s *slotSigner) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 {
		return nil, fmt.Errorf("ecc608: unsupported hash %v", opts.HashFunc())
	}
	raw, err := s.chip.Sign(s.slot, digest)
	if err != nil {
		return nil, err
	}
	if len(raw) != 2*coordinateSize {
		return nil, fmt.Errorf("ecc608: signature must be %d bytes, got %d", 2*coordinateSize, len(raw))
	}
	return keys.EncodeECDSASignature(raw[:coordinateSize], raw[coordinateSize:])
}
