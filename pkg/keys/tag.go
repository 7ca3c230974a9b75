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

import "fmt"

// Network is the high nibble of a key tag.
type Network uint8

const (
	MainNet Network = 0x00
	TestNet Network = 0x10
)

func (n Network) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	default:
		return fmt.Sprintf("network(0x%02x)", uint8(n))
	}
}

// KeyType is the low nibble of a key tag.
type KeyType uint8

const (
	EccCompact KeyType = 0
	Ed25519    KeyType = 1
	Rsa        KeyType = 4
)

func (k KeyType) String() string {
	switch k {
	case EccCompact:
		return "ecc_compact"
	case Ed25519:
		return "ed25519"
	case Rsa:
		return "rsa"
	default:
		return fmt.Sprintf("key_type(%d)", uint8(k))
	}
}

// KeyTag prefixes every binary public key and keypair. It identifies the
// network the key belongs to and the algorithm of the key material that
// follows.
type KeyTag struct {
	Network Network
	KeyType KeyType
}

// DefaultKeyTag is used when generating software keys.
var DefaultKeyTag = KeyTag{Network: MainNet, KeyType: Ed25519}

// Byte returns the single byte wire form of the tag.
func (t KeyTag) Byte() byte {
	return byte(t.Network) | byte(t.KeyType)
}

func (t KeyTag) String() string {
	return t.Network.String() + "/" + t.KeyType.String()
}

// ParseKeyTag decodes a tag byte.
func ParseKeyTag(b byte) (KeyTag, error) {
	tag := KeyTag{
		Network: Network(b & 0xf0),
		KeyType: KeyType(b & 0x0f),
	}
	switch tag.Network {
	case MainNet, TestNet:
	default:
		return KeyTag{}, fmt.Errorf("%w: 0x%02x", ErrInvalidKeyTag, b)
	}
	switch tag.KeyType {
	case EccCompact, Ed25519, Rsa:
	default:
		return KeyTag{}, fmt.Errorf("%w: 0x%02x", ErrInvalidKeyTag, b)
	}
	return tag, nil
}
