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

// Package tpm2 implements the TPM backend. The gateway key is an ECC P-256
// signing key made persistent in the TPM by an external provisioning step;
// the backend only reads its public area and signs with it.
//
// Locators name the persistent handle in the last path element:
//
//	tpm://tpm/0x81000002
//	tpm://tpm/gateway/0x81000002?device=/dev/tpm0
//	tpm://tpm/0x81000002?swtpm=localhost:2321
//
// Keys are never created; GetKeypair(true) returns
// backend.ErrCreateNotSupported without touching the TPM.
package tpm2
