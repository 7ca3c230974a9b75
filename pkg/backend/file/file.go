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

// Package file implements the software fallback backend. The keypair is
// stored in its binary form in a single file which is created on demand.
package file

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

// keyFilePerms restricts the keypair file to its owner.
const keyFilePerms = 0600

// Config holds the configuration for the file backend
type Config struct {
	// Path is the keypair file
	Path string

	// KeyTag selects the network and algorithm of generated keys
	// (default: mainnet ed25519)
	KeyTag keys.KeyTag

	// Fs is the filesystem holding the keypair (default: the OS filesystem)
	Fs afero.Fs

	// Rand is the entropy source for key generation (default: crypto/rand)
	Rand io.Reader

	// Logger is the logger instance to use
	Logger *logging.Logger
}

// ConfigFromLocator builds a configuration from a file:// or bare path locator.
func ConfigFromLocator(l *locator.Locator) (*Config, error) {
	if l.Path() == "" {
		return nil, fmt.Errorf("%w: %q", locator.ErrInvalidURL, l.String())
	}
	return &Config{
		Path:   l.Path(),
		KeyTag: keys.DefaultKeyTag,
	}, nil
}

// Validate validates the file backend configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: file path is required", backend.ErrInvalidConfig)
	}
	return nil
}

// Backend stores a software keypair in a file.
type Backend struct {
	path   string
	tag    keys.KeyTag
	fs     afero.Fs
	rand   io.Reader
	logger *logging.Logger
}

// Info describes a file backed key.
type Info struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Kind implements backend.Info.
func (Info) Kind() backend.Kind { return backend.KindFile }

// New creates a file backend, filling unset configuration with defaults.
func New(config *Config) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", backend.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		path:   config.Path,
		tag:    config.KeyTag,
		fs:     config.Fs,
		rand:   config.Rand,
		logger: config.Logger,
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.rand == nil {
		b.rand = rand.Reader
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	return b, nil
}

// GetKeypair returns the stored keypair. A new keypair is generated and
// written first when create is set or when the file does not exist yet.
func (b *Backend) GetKeypair(create bool) (*keys.Keypair, error) {
	exists, err := afero.Exists(b.fs, b.path)
	if err != nil {
		return nil, fmt.Errorf("file: failed to stat %s: %w", b.path, err)
	}
	if exists && !create {
		return b.load()
	}

	generated, err := b.generate()
	if err != nil {
		return nil, err
	}
	keypair, err := b.load()
	if err != nil {
		return nil, err
	}
	if !keypair.PublicKey().Equal(generated.PublicKey()) {
		return nil, fmt.Errorf("file: %s: stored keypair does not match the generated one", b.path)
	}
	return keypair, nil
}

// GetInfo reports the key type and path. The key is loaded to read its type
// but never created.
func (b *Backend) GetInfo() (backend.Info, error) {
	keypair, err := b.load()
	if err != nil {
		return nil, err
	}
	return Info{
		Type: keypair.KeyTag().KeyType.String(),
		Path: b.path,
	}, nil
}

// Close is a no-op; the file backend holds no handles.
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) generate() (*keys.Keypair, error) {
	b.logger.Debug("generating keypair", "path", b.path, "tag", b.tag.String())
	keypair, err := keys.Generate(b.tag, b.rand)
	if err != nil {
		return nil, err
	}
	data, err := keypair.Bytes()
	if err != nil {
		return nil, err
	}
	if err := afero.WriteFile(b.fs, b.path, data, keyFilePerms); err != nil {
		return nil, fmt.Errorf("file: failed to write keypair %s: %w", b.path, err)
	}
	return keypair, nil
}

func (b *Backend) load() (*keys.Keypair, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if exists, _ := afero.Exists(b.fs, b.path); !exists {
			return nil, fmt.Errorf("file: %s: %w", b.path, backend.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("file: failed to read keypair %s: %w", b.path, err)
	}
	keypair, err := keys.KeypairFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("file: %s: %w: %w", b.path, backend.ErrKeyDecodingFailed, err)
	}
	return keypair, nil
}
