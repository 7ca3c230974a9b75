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
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
)

// maxCompactAttempts bounds the search for a compact P-256 key. Each
// attempt succeeds with probability 1/2.
const maxCompactAttempts = 64

// Keypair pairs a tagged public key with the signer holding its private
// material. The signer may be a software key or a handle into hardware.
type Keypair struct {
	public *PublicKey
	signer crypto.Signer
}

// NewKeypair wraps signer, deriving the key tag from its public key.
func NewKeypair(network Network, signer crypto.Signer) (*Keypair, error) {
	pub, err := NewPublicKey(network, signer.Public())
	if err != nil {
		return nil, err
	}
	return &Keypair{public: pub, signer: signer}, nil
}

// Generate creates a software keypair for tag using entropy from random.
func Generate(tag KeyTag, random io.Reader) (*Keypair, error) {
	switch tag.KeyType {
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(random)
		if err != nil {
			return nil, fmt.Errorf("keys: failed to generate ed25519 key: %w", err)
		}
		return NewKeypair(tag.Network, priv)
	case EccCompact:
		for i := 0; i < maxCompactAttempts; i++ {
			priv, err := ecdsa.GenerateKey(elliptic.P256(), random)
			if err != nil {
				return nil, fmt.Errorf("keys: failed to generate ecc key: %w", err)
			}
			if IsCompact(&priv.PublicKey) {
				return NewKeypair(tag.Network, priv)
			}
		}
		return nil, ErrNotCompact
	default:
		return nil, fmt.Errorf("%w: cannot generate %s keys", ErrUnsupportedKeyType, tag.KeyType)
	}
}

// KeypairFromBytes decodes a software keypair produced by Keypair.Bytes.
func KeypairFromBytes(data []byte) (*Keypair, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKeypair)
	}
	tag, err := ParseKeyTag(data[0])
	if err != nil {
		return nil, err
	}
	body := data[1:]
	switch tag.KeyType {
	case Ed25519:
		if len(body) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: ed25519 keypair must be %d bytes, got %d",
				ErrInvalidKeypair, ed25519.PrivateKeySize, len(body))
		}
		priv := ed25519.NewKeyFromSeed(body[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], body[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidKeypair)
		}
		return NewKeypair(tag.Network, priv)
	case EccCompact:
		if len(body) != 2*compactSize {
			return nil, fmt.Errorf("%w: ecc_compact keypair must be %d bytes, got %d",
				ErrInvalidKeypair, 2*compactSize, len(body))
		}
		priv, err := ecdsa.ParseRawPrivateKey(elliptic.P256(), body[:compactSize])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
		}
		if !bytes.Equal(compactBytes(&priv.PublicKey), body[compactSize:]) {
			return nil, fmt.Errorf("%w: public key does not match scalar", ErrInvalidKeypair)
		}
		return NewKeypair(tag.Network, priv)
	default:
		return nil, fmt.Errorf("%w: %s keypairs cannot be decoded", ErrUnsupportedKeyType, tag.KeyType)
	}
}

// PublicKey returns the tagged public key.
func (k *Keypair) PublicKey() *PublicKey {
	return k.public
}

// KeyTag returns the tag of the keypair.
func (k *Keypair) KeyTag() KeyTag {
	return k.public.tag
}

// Sign signs msg. Ed25519 keys sign the message itself; ECC and RSA keys
// sign its SHA-256 digest.
func (k *Keypair) Sign(msg []byte) ([]byte, error) {
	var (
		sig []byte
		err error
	)
	switch k.public.tag.KeyType {
	case Ed25519:
		sig, err = k.signer.Sign(rand.Reader, msg, crypto.Hash(0))
	case EccCompact, Rsa:
		digest := sha256.Sum256(msg)
		sig, err = k.signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKeyType, k.public.tag.KeyType)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return sig, nil
}

// Bytes returns the binary form of a software keypair. Hardware backed
// keypairs return ErrNotExportable.
func (k *Keypair) Bytes() ([]byte, error) {
	out := []byte{k.public.tag.Byte()}
	switch priv := k.signer.(type) {
	case ed25519.PrivateKey:
		return append(out, priv...), nil
	case *ecdsa.PrivateKey:
		scalar, err := priv.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotExportable, err)
		}
		out = append(out, scalar...)
		return append(out, compactBytes(&priv.PublicKey)...), nil
	default:
		return nil, ErrNotExportable
	}
}
