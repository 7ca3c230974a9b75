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

import "errors"

var (
	// ErrInvalidTransactionType is returned when an envelope carries a
	// transaction other than the one requested.
	ErrInvalidTransactionType = errors.New("txn: invalid transaction type")

	// ErrMalformed is returned when transaction bytes are not a valid
	// protobuf encoding of the expected message.
	ErrMalformed = errors.New("txn: malformed transaction")
)
