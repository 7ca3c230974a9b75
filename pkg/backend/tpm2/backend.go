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

package tpm2

import (
	"crypto"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

// Opener opens a TPM transport for config.
type Opener func(config *Config) (transport.TPMCloser, error)

// Open is the default Opener. It connects to the embedded simulator, an
// SWTPM over TCP or the configured device, in that order of preference.
func Open(config *Config) (transport.TPMCloser, error) {
	switch {
	case config.UseSimulator:
		return openSimulator()
	case config.SimulatorHost != "":
		cmdAddr := fmt.Sprintf("%s:%d", config.SimulatorHost, config.SimulatorPort)
		platAddr := fmt.Sprintf("%s:%d", config.SimulatorHost, config.SimulatorPort+1)
		tpm, err := tcp.Open(tcp.Config{
			CommandAddress:  cmdAddr,
			PlatformAddress: platAddr,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: swtpm at %s: %v", ErrTPMNotAvailable, cmdAddr, err)
		}
		return tpm, nil
	default:
		tpm, err := transport.OpenTPM(config.Device)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTPMNotAvailable, config.Device, err)
		}
		return tpm, nil
	}
}

// Info describes a TPM held key.
type Info struct {
	Path string `json:"path"`
}

// Kind implements backend.Info.
func (Info) Kind() backend.Kind { return backend.KindTPM2 }

// Backend reads a persistent ECC key from a TPM.
type Backend struct {
	config *Config
	opener Opener
	logger *logging.Logger
	tpm    transport.TPMCloser
}

// New creates a TPM2 backend. The TPM is opened on first use.
func New(config *Config) (*Backend, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", backend.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		config: config,
		opener: config.Opener,
		logger: config.Logger,
	}
	if b.opener == nil {
		b.opener = Open
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	return b, nil
}

// GetKeypair returns the persistent key. TPM keys are provisioned
// externally, so create always fails with backend.ErrCreateNotSupported. A
// key path that does not end in a persistent handle names no key and
// reports backend.ErrKeyNotFound.
func (b *Backend) GetKeypair(create bool) (*keys.Keypair, error) {
	if create {
		return nil, fmt.Errorf("tpm2: %w", backend.ErrCreateNotSupported)
	}
	h, err := ParseHandle(b.config.Path)
	if err != nil {
		return nil, fmt.Errorf("tpm2: %w: %w", backend.ErrKeyNotFound, err)
	}
	tpm, err := b.open()
	if err != nil {
		return nil, err
	}

	handle := tpm2.TPMHandle(h)
	b.logger.Debugf("tpm2: reading public area of 0x%08x", h)
	rsp, err := tpm2.ReadPublic{
		ObjectHandle: handle,
	}.Execute(tpm)
	if err != nil {
		if errors.Is(err, tpm2.TPMRCHandle) {
			return nil, fmt.Errorf("tpm2: handle 0x%08x: %w", h, backend.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("tpm2: failed to read public area of 0x%08x: %w", h, err)
	}
	pub, err := publicKey(rsp.OutPublic)
	if err != nil {
		return nil, err
	}
	signer := &tpmSigner{
		tpm:    tpm,
		handle: handle,
		name:   rsp.Name,
		public: pub,
	}
	return keys.NewKeypair(keys.MainNet, signer)
}

// GetInfo reports the key path without touching the TPM.
func (b *Backend) GetInfo() (backend.Info, error) {
	return Info{Path: b.config.Path}, nil
}

// Close releases the TPM transport if it was opened.
func (b *Backend) Close() error {
	if b.tpm == nil {
		return nil
	}
	err := b.tpm.Close()
	b.tpm = nil
	return err
}

func (b *Backend) open() (transport.TPMCloser, error) {
	if b.tpm != nil {
		return b.tpm, nil
	}
	tpm, err := b.opener(b.config)
	if err != nil {
		return nil, err
	}
	b.tpm = tpm
	return tpm, nil
}

// publicKey extracts a compact P-256 key from a public area.
func publicKey(outPublic tpm2.TPM2BPublic) (*ecdsa.PublicKey, error) {
	pub, err := outPublic.Contents()
	if err != nil {
		return nil, fmt.Errorf("tpm2: failed to decode public area: %w", err)
	}
	if pub.Type != tpm2.TPMAlgECC {
		return nil, fmt.Errorf("%w: tpm key algorithm 0x%04x", keys.ErrUnsupportedKeyType, uint16(pub.Type))
	}
	details, err := pub.Parameters.ECCDetail()
	if err != nil {
		return nil, fmt.Errorf("tpm2: failed to read ecc parameters: %w", err)
	}
	if details.CurveID != tpm2.TPMECCNistP256 {
		return nil, fmt.Errorf("%w: tpm curve 0x%04x", keys.ErrUnsupportedKeyType, uint16(details.CurveID))
	}
	point, err := pub.Unique.ECC()
	if err != nil {
		return nil, fmt.Errorf("tpm2: failed to read ecc point: %w", err)
	}
	key, err := keys.ECCPublicKeyFromXY(point.X.Buffer, point.Y.Buffer)
	if err != nil {
		return nil, err
	}
	if !keys.IsCompact(key) {
		return nil, fmt.Errorf("tpm2: %w", keys.ErrNotCompact)
	}
	return key, nil
}

// tpmSigner signs SHA-256 digests with a persistent TPM key.
type tpmSigner struct {
	tpm    transport.TPM
	handle tpm2.TPMHandle
	name   tpm2.TPM2BName
	public *ecdsa.PublicKey
}

func (s *tpmSigner) Public() crypto.PublicKey {
	return s.public
}

// Sign returns an ASN.1 DER ECDSA signature of digest.
func (s *tpmSigner) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 {
		return nil, fmt.Errorf("tpm2: unsupported hash %v", opts.HashFunc())
	}
	rsp, err := tpm2.Sign{
		KeyHandle: tpm2.AuthHandle{
			Handle: s.handle,
			Name:   s.name,
			Auth:   tpm2.PasswordAuth(nil),
		},
		Digest: tpm2.TPM2BDigest{
			Buffer: digest,
		},
		InScheme: tpm2.TPMTSigScheme{
			Scheme: tpm2.TPMAlgECDSA,
			Details: tpm2.NewTPMUSigScheme(
				tpm2.TPMAlgECDSA,
				&tpm2.TPMSSchemeHash{
					HashAlg: tpm2.TPMAlgSHA256,
				},
			),
		},
		Validation: tpm2.TPMTTKHashCheck{
			Tag: tpm2.TPMSTHashCheck,
		},
	}.Execute(s.tpm)
	if err != nil {
		return nil, fmt.Errorf("tpm2: sign failed: %w", err)
	}
	sig, err := rsp.Signature.Signature.ECDSA()
	if err != nil {
		return nil, err
	}
	return keys.EncodeECDSASignature(sig.SignatureR.Buffer, sig.SignatureS.Buffer)
}
