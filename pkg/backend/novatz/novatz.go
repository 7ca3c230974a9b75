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

// Package novatz implements the trusted execution keyblob backend. The
// gateway key is a PKCS#8 keyblob exported by the trusted execution
// environment at provisioning time; the backend loads it but never writes
// one.
package novatz

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/spf13/afero"
	"github.com/youmark/pkcs8"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

// Config holds the configuration for the keyblob backend
type Config struct {
	// Path is the keyblob file
	Path string

	// Password decrypts an encrypted PKCS#8 keyblob
	Password []byte

	// Fs is the filesystem holding the keyblob (default: the OS filesystem)
	Fs afero.Fs

	// Logger is the logger instance to use
	Logger *logging.Logger
}

// ConfigFromLocator builds a configuration from a nova-tz://<any>/<keyblob-path>
// locator. The host is ignored.
func ConfigFromLocator(l *locator.Locator) (*Config, error) {
	if l.Path() == "" || l.Path() == "/" {
		return nil, fmt.Errorf("%w: %q", locator.ErrInvalidURL, l.String())
	}
	return &Config{Path: l.Path()}, nil
}

// Validate validates the keyblob backend configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: keyblob path is required", backend.ErrInvalidConfig)
	}
	return nil
}

// Info describes a keyblob backed key.
type Info struct {
	Path string `json:"path"`
}

// Kind implements backend.Info.
func (Info) Kind() backend.Kind { return backend.KindNovaTZ }

// Backend loads a keyblob exported by the trusted execution environment.
type Backend struct {
	path     string
	password []byte
	fs       afero.Fs
	logger   *logging.Logger
}

// New creates a keyblob backend.
func New(config *Config) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", backend.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		path:     config.Path,
		password: config.Password,
		fs:       config.Fs,
		logger:   config.Logger,
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	return b, nil
}

// GetKeypair loads the keyblob. Keyblobs can only be produced inside the
// trusted execution environment: asking to create one is a programming
// error and panics with backend.ErrCreateNotSupported.
func (b *Backend) GetKeypair(create bool) (*keys.Keypair, error) {
	if create {
		panic(fmt.Errorf("nova-tz: %w", backend.ErrCreateNotSupported))
	}
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if exists, _ := afero.Exists(b.fs, b.path); !exists {
			return nil, fmt.Errorf("nova-tz: %s: %w", b.path, backend.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("nova-tz: failed to read keyblob %s: %w", b.path, err)
	}
	priv, err := b.decode(data)
	if err != nil {
		return nil, fmt.Errorf("nova-tz: %s: %w: %v", b.path, backend.ErrKeyDecodingFailed, err)
	}
	signer, ok := priv.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", keys.ErrUnsupportedKeyType, priv)
	}
	return keys.NewKeypair(keys.MainNet, signer)
}

// GetInfo reports the keyblob path.
func (b *Backend) GetInfo() (backend.Info, error) {
	return Info{Path: b.path}, nil
}

// Close is a no-op; keyblobs hold no handles.
func (b *Backend) Close() error {
	return nil
}

// decode parses a PEM or DER PKCS#8 keyblob, decrypting it when a password
// is configured.
func (b *Backend) decode(data []byte) (crypto.PrivateKey, error) {
	if block, _ := pem.Decode(data); block != nil {
		b.logger.Debug("decoding pem keyblob", "type", block.Type)
		data = block.Bytes
	}
	if len(b.password) > 0 {
		return pkcs8.ParsePKCS8PrivateKey(data, b.password)
	}
	return x509.ParsePKCS8PrivateKey(data)
}
