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

package backend

import "errors"

var (
	// ErrKeyNotFound is returned when a backend has no key material at the
	// configured location (missing file, empty slot, unknown handle).
	ErrKeyNotFound = errors.New("backend: key not found")

	// ErrCreateNotSupported is returned by backends that can only read
	// provisioned keys when asked to create one.
	ErrCreateNotSupported = errors.New("backend: keypair creation not supported")

	// ErrInvalidKeyPath is returned when a backend specific key path cannot
	// be interpreted.
	ErrInvalidKeyPath = errors.New("backend: invalid key path")

	// ErrInvalidConfig is returned when a backend configuration is incomplete.
	ErrInvalidConfig = errors.New("backend: invalid configuration")

	// ErrKeyDecodingFailed is returned when stored key material cannot be decoded.
	ErrKeyDecodingFailed = errors.New("backend: failed to decode key")
)
