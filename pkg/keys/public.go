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

package keys

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// addressVersion is the base58check version byte of public key strings.
const addressVersion = 0x00

// PublicKey is a tagged public key. Its binary form is the tag byte followed
// by the algorithm specific key bytes; its string form is the base58check
// encoding of the binary form.
type PublicKey struct {
	tag KeyTag
	key crypto.PublicKey
}

// NewPublicKey wraps a standard library public key. ECDSA keys must be
// compact P-256 points.
func NewPublicKey(network Network, pub crypto.PublicKey) (*PublicKey, error) {
	switch key := pub.(type) {
	case ed25519.PublicKey:
		if len(key) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: ed25519 key must be %d bytes", ErrInvalidPublicKey, ed25519.PublicKeySize)
		}
		return &PublicKey{tag: KeyTag{Network: network, KeyType: Ed25519}, key: key}, nil
	case *ecdsa.PublicKey:
		if key.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: curve %s", ErrUnsupportedKeyType, key.Curve.Params().Name)
		}
		if !IsCompact(key) {
			return nil, ErrNotCompact
		}
		return &PublicKey{tag: KeyTag{Network: network, KeyType: EccCompact}, key: key}, nil
	case *rsa.PublicKey:
		return &PublicKey{tag: KeyTag{Network: network, KeyType: Rsa}, key: key}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, pub)
	}
}

// PublicKeyFromBytes decodes the binary form of a public key.
func PublicKeyFromBytes(data []byte) (*PublicKey, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPublicKey, len(data))
	}
	tag, err := ParseKeyTag(data[0])
	if err != nil {
		return nil, err
	}
	body := data[1:]
	switch tag.KeyType {
	case Ed25519:
		if len(body) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: ed25519 key must be %d bytes, got %d",
				ErrInvalidPublicKey, ed25519.PublicKeySize, len(body))
		}
		return &PublicKey{tag: tag, key: ed25519.PublicKey(bytes.Clone(body))}, nil
	case EccCompact:
		pub, err := decompress(body)
		if err != nil {
			return nil, err
		}
		return &PublicKey{tag: tag, key: pub}, nil
	case Rsa:
		pub, err := x509.ParsePKCS1PublicKey(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return &PublicKey{tag: tag, key: pub}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, tag.KeyType)
	}
}

// ParsePublicKey decodes the base58check string form of a public key.
func ParsePublicKey(s string) (*PublicKey, error) {
	data, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPublicKey, s, err)
	}
	if version != addressVersion {
		return nil, fmt.Errorf("%w: %q: unexpected version %d", ErrInvalidPublicKey, s, version)
	}
	return PublicKeyFromBytes(data)
}

// KeyTag returns the tag of the key.
func (p *PublicKey) KeyTag() KeyTag {
	return p.tag
}

// Crypto returns the standard library public key.
func (p *PublicKey) Crypto() crypto.PublicKey {
	return p.key
}

// Bytes returns the binary form of the key.
func (p *PublicKey) Bytes() []byte {
	out := []byte{p.tag.Byte()}
	switch key := p.key.(type) {
	case ed25519.PublicKey:
		out = append(out, key...)
	case *ecdsa.PublicKey:
		out = append(out, compactBytes(key)...)
	case *rsa.PublicKey:
		out = append(out, x509.MarshalPKCS1PublicKey(key)...)
	}
	return out
}

// String returns the base58check form of the key.
func (p *PublicKey) String() string {
	return base58.CheckEncode(p.Bytes(), addressVersion)
}

// MarshalText encodes the key as its string form so public keys render as
// strings in JSON output.
func (p *PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a key from its string form.
func (p *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// Equal reports whether both keys have the same binary form.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return bytes.Equal(p.Bytes(), other.Bytes())
}

// Verify checks signature over msg. A signature that does not match returns
// ErrInvalidSignature.
func (p *PublicKey) Verify(msg, signature []byte) error {
	switch key := p.key.(type) {
	case ed25519.PublicKey:
		if !ed25519.Verify(key, msg, signature) {
			return ErrInvalidSignature
		}
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(msg)
		if !ecdsa.VerifyASN1(key, digest[:], signature) {
			return ErrInvalidSignature
		}
	case *rsa.PublicKey:
		digest := sha256.Sum256(msg)
		if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], signature); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedKeyType, p.key)
	}
	return nil
}
