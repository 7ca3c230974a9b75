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

// Package backend defines the contract implemented by every security device
// backend: secure elements, TPMs, trusted execution keyblobs and key files.
package backend

import (
	"io"

	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
)

// Kind identifies a backend family.
type Kind string

const (
	KindECC608 Kind = "ecc608"
	KindTPM2   Kind = "tpm2"
	KindNovaTZ Kind = "nova-tz"
	KindFile   Kind = "file"
)

// Backend retrieves (and where supported, creates) the gateway keypair held
// by one key store.
//
// GetKeypair with create=false reads existing key material and fails when
// none exists. With create=true a backend either provisions new material or
// fails explicitly; it never silently returns an existing key in place of a
// new one it cannot create.
//
// GetInfo returns a descriptive, non-secret snapshot and does not modify key
// state.
//
// Close releases hardware handles. Keypairs returned by GetKeypair may keep
// using the backend until it is closed.
type Backend interface {
	GetKeypair(create bool) (*keys.Keypair, error)
	GetInfo() (Info, error)
	io.Closer
}

// Info is a backend specific snapshot used purely for reporting. It must not
// be used to perform cryptographic operations.
type Info interface {
	Kind() Kind
}
