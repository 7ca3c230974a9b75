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

package txn

import "fmt"

// Message is a transaction with a deterministic encoding.
type Message interface {
	Marshal() ([]byte, error)
}

// Field addresses one signature field of a message of type T.
type Field[T any] struct {
	Name string
	Get  func(*T) []byte
	Set  func(*T, []byte)
}

// Signer produces a signature over a message. *keys.Keypair implements it.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}

// Verifier checks a signature over a message, returning
// keys.ErrInvalidSignature on mismatch. *keys.PublicKey implements it.
type Verifier interface {
	Verify(msg, signature []byte) error
}

// Canonical encodes a copy of msg with every listed signature field
// cleared. Clearing all of them, not just the one being signed, makes the
// signed bytes independent of which parties have signed already.
func Canonical[T any, M interface {
	*T
	Message
}](msg M, fields ...Field[T]) ([]byte, error) {
	clone := *msg
	for _, f := range fields {
		f.Set(&clone, nil)
	}
	data, err := M(&clone).Marshal()
	if err != nil {
		return nil, fmt.Errorf("txn: failed to encode canonical form: %w", err)
	}
	return data, nil
}

// Sign signs the canonical form of msg and stores the signature in target.
func Sign[T any, M interface {
	*T
	Message
}](msg M, signer Signer, target Field[T], fields ...Field[T]) error {
	data, err := Canonical(msg, fields...)
	if err != nil {
		return err
	}
	sig, err := signer.Sign(data)
	if err != nil {
		return fmt.Errorf("txn: failed to sign %s: %w", target.Name, err)
	}
	target.Set((*T)(msg), sig)
	return nil
}

// Verify checks the signature stored in target against the canonical form
// of msg. A signature that does not match returns the verifier's mismatch
// error (keys.ErrInvalidSignature); any other error is an encoding failure.
func Verify[T any, M interface {
	*T
	Message
}](msg M, key Verifier, target Field[T], fields ...Field[T]) error {
	data, err := Canonical(msg, fields...)
	if err != nil {
		return err
	}
	return key.Verify(data, target.Get((*T)(msg)))
}
