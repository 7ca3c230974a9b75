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

// Package device selects a key backend from a device locator and exposes it
// through a single type. The set of backends is closed: a locator resolves
// to exactly one of the secure element, TPM, trusted execution keyblob or
// file backends.
package device

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/ecc608"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/file"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/novatz"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/tpm2"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

// Device is a security device resolved from a locator.
type Device struct {
	kind    backend.Kind
	locator *locator.Locator
	backend backend.Backend
}

type options struct {
	logger          *logging.Logger
	fs              afero.Fs
	keyblobPassword []byte
	eccOpener       ecc608.Opener
	tpmOpener       tpm2.Opener
}

// Option configures how a device is opened.
type Option func(*options)

// WithLogger sets the logger handed to the backend.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFs sets the filesystem holding file keypairs and keyblobs.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithKeyblobPassword sets the password of encrypted nova-tz keyblobs.
func WithKeyblobPassword(password []byte) Option {
	return func(o *options) { o.keyblobPassword = password }
}

// WithECCOpener replaces the secure element driver.
func WithECCOpener(opener ecc608.Opener) Option {
	return func(o *options) { o.eccOpener = opener }
}

// WithTPMOpener replaces the TPM transport.
func WithTPMOpener(opener tpm2.Opener) Option {
	return func(o *options) { o.tpmOpener = opener }
}

// Open parses s and opens the device it names.
func Open(s string, opts ...Option) (*Device, error) {
	l, err := locator.Parse(s)
	if err != nil {
		return nil, err
	}
	return FromLocator(l, opts...)
}

// FromLocator opens the device named by l. No hardware is touched until a
// keypair is requested.
func FromLocator(l *locator.Locator, opts ...Option) (*Device, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	var (
		kind       backend.Kind
		newBackend func(*locator.Locator, *options) (backend.Backend, error)
	)
	switch l.Scheme() {
	case locator.SchemeECC:
		kind, newBackend = backend.KindECC608, newECC608
	case locator.SchemeTPM:
		kind, newBackend = backend.KindTPM2, newTPM2
	case locator.SchemeNovaTZ:
		kind, newBackend = backend.KindNovaTZ, newNovaTZ
	case locator.SchemeFile:
		kind, newBackend = backend.KindFile, newFile
	default:
		return nil, fmt.Errorf("%w: %q", locator.ErrUnsupportedScheme, l.String())
	}

	o.logger = o.logger.With("device", string(kind))
	b, err := newBackend(l, o)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("opened device", "locator", l.String())
	return &Device{kind: kind, locator: l, backend: b}, nil
}

func newECC608(l *locator.Locator, o *options) (backend.Backend, error) {
	config, err := ecc608.ConfigFromLocator(l)
	if err != nil {
		return nil, err
	}
	config.Opener = o.eccOpener
	config.Logger = o.logger
	return ecc608.New(config)
}

func newTPM2(l *locator.Locator, o *options) (backend.Backend, error) {
	config, err := tpm2.ConfigFromLocator(l)
	if err != nil {
		return nil, err
	}
	config.Opener = o.tpmOpener
	config.Logger = o.logger
	return tpm2.New(config)
}

func newNovaTZ(l *locator.Locator, o *options) (backend.Backend, error) {
	config, err := novatz.ConfigFromLocator(l)
	if err != nil {
		return nil, err
	}
	config.Password = o.keyblobPassword
	config.Fs = o.fs
	config.Logger = o.logger
	return novatz.New(config)
}

func newFile(l *locator.Locator, o *options) (backend.Backend, error) {
	config, err := file.ConfigFromLocator(l)
	if err != nil {
		return nil, err
	}
	config.Fs = o.fs
	config.Logger = o.logger
	return file.New(config)
}

// Kind reports which backend the device uses.
func (d *Device) Kind() backend.Kind {
	return d.kind
}

// Locator returns the locator the device was opened from.
func (d *Device) Locator() *locator.Locator {
	return d.locator
}

// GetKeypair returns the device keypair, creating it first when create is
// set and the backend supports creation.
func (d *Device) GetKeypair(create bool) (*keys.Keypair, error) {
	return d.backend.GetKeypair(create)
}

// GetInfo returns the non-secret description of the device.
func (d *Device) GetInfo() (backend.Info, error) {
	return d.backend.GetInfo()
}

// Close releases hardware handles held by the device and its keypairs.
func (d *Device) Close() error {
	return d.backend.Close()
}
