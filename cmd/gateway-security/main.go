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

// Command gateway-security reads gateway keys from security devices and
// signs add gateway transactions.
package main

import "github.com/jeremyhahn/go-gateway-security/internal/cli"

func main() {
	cli.Main()
}
