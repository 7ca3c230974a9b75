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
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// compactSize is the length of a P-256 coordinate.
const compactSize = 32

// IsCompact reports whether pub is a P-256 point whose Y coordinate is the
// lesser of y and p-y. Such a point is fully described by its X coordinate.
func IsCompact(pub *ecdsa.PublicKey) bool {
	if pub == nil || pub.Curve != elliptic.P256() {
		return false
	}
	p := pub.Curve.Params().P
	negY := new(big.Int).Sub(p, pub.Y)
	return pub.Y.Cmp(negY) <= 0
}

// ECCPublicKeyFromXY builds a P-256 public key from raw big-endian X and Y
// coordinates as returned by secure elements and TPMs.
func ECCPublicKeyFromXY(x, y []byte) (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()
	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}
	if !curve.IsOnCurve(pub.X, pub.Y) {
		return nil, fmt.Errorf("%w: point is not on P-256", ErrInvalidPublicKey)
	}
	return pub, nil
}

func compactBytes(pub *ecdsa.PublicKey) []byte {
	return pub.X.FillBytes(make([]byte, compactSize))
}

// decompress recovers the compact point for the X coordinate in data.
func decompress(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) != compactSize {
		return nil, fmt.Errorf("%w: ecc_compact key must be %d bytes, got %d",
			ErrInvalidPublicKey, compactSize, len(data))
	}
	curve := elliptic.P256()
	params := curve.Params()

	x := new(big.Int).SetBytes(data)
	if x.Cmp(params.P) >= 0 {
		return nil, fmt.Errorf("%w: x coordinate out of range", ErrInvalidPublicKey)
	}

	// y² = x³ - 3x + b
	y2 := new(big.Int).Exp(x, big.NewInt(3), params.P)
	threeX := new(big.Int).Mul(x, big.NewInt(3))
	y2.Sub(y2, threeX)
	y2.Add(y2, params.B)
	y2.Mod(y2, params.P)

	y := new(big.Int).ModSqrt(y2, params.P)
	if y == nil {
		return nil, fmt.Errorf("%w: x coordinate is not on P-256", ErrInvalidPublicKey)
	}
	if negY := new(big.Int).Sub(params.P, y); negY.Cmp(y) < 0 {
		y = negY
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// EncodeECDSASignature converts a raw (r, s) pair into the ASN.1 DER form
// used for ecc_compact signatures.
func EncodeECDSASignature(r, s []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(new(big.Int).SetBytes(r))
		b.AddASN1BigInt(new(big.Int).SetBytes(s))
	})
	return b.Bytes()
}
