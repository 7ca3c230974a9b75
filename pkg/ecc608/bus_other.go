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

//go:build !linux

package ecc608

// OpenI2C requires the Linux i2c-dev interface.
func OpenI2C(path string, address uint16) (Bus, error) {
	return nil, ErrUnsupportedPlatform
}

// OpenSWI requires Linux termios.
func OpenSWI(path string) (Bus, error) {
	return nil, ErrUnsupportedPlatform
}
