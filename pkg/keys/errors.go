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

import "errors"

var (
	// ErrInvalidKeyTag is returned when a key tag byte names an unknown
	// network or key type.
	ErrInvalidKeyTag = errors.New("keys: invalid key tag")

	// ErrUnsupportedKeyType is returned for key types or curves that cannot
	// be represented as a gateway key.
	ErrUnsupportedKeyType = errors.New("keys: unsupported key type")

	// ErrInvalidPublicKey is returned when public key bytes or strings fail to decode.
	ErrInvalidPublicKey = errors.New("keys: invalid public key")

	// ErrInvalidKeypair is returned when serialized keypair bytes fail to decode.
	ErrInvalidKeypair = errors.New("keys: invalid keypair")

	// ErrNotCompact is returned for P-256 points whose Y coordinate is not
	// the lesser of the two roots. Only compact points can be encoded as
	// ecc_compact public keys.
	ErrNotCompact = errors.New("keys: ecc key is not compact")

	// ErrNotExportable is returned when serializing a keypair whose private
	// material lives in hardware.
	ErrNotExportable = errors.New("keys: keypair is not exportable")

	// ErrInvalidSignature is returned when a signature does not verify. It is
	// a verification result, not a library failure.
	ErrInvalidSignature = errors.New("keys: invalid signature")

	// ErrSigningFailed wraps failures from the underlying signer.
	ErrSigningFailed = errors.New("keys: signing failed")
)
