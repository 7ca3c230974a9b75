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

package cli

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/txn"
)

// VerifyResult is the output of verify.
type VerifyResult struct {
	Address *keys.PublicKey `json:"address"`
	Owner   *keys.PublicKey `json:"owner"`
	Payer   *keys.PublicKey `json:"payer,omitempty"`
	Verify  bool            `json:"verify"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify <txn>",
	Short: "Verify the gateway signature of an add gateway transaction",
	Long: `Verify the gateway signature of a base64 encoded add gateway
transaction against the gateway key it names. The device is not used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runVerify(args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

func runVerify(encoded string) (*VerifyResult, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction encoding: %w", err)
	}
	envelope, err := txn.ParseBlockchainTxn(data)
	if err != nil {
		return nil, err
	}
	add, err := envelope.AddGatewayV1()
	if err != nil {
		return nil, err
	}

	gateway, err := keys.PublicKeyFromBytes(add.Gateway)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway key: %w", err)
	}
	owner, err := keys.PublicKeyFromBytes(add.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner key: %w", err)
	}
	result := &VerifyResult{
		Address: gateway,
		Owner:   owner,
	}
	if len(add.Payer) > 0 {
		if result.Payer, err = keys.PublicKeyFromBytes(add.Payer); err != nil {
			return nil, fmt.Errorf("invalid payer key: %w", err)
		}
	}

	switch err := add.VerifyGateway(gateway); {
	case err == nil:
		result.Verify = true
	case errors.Is(err, keys.ErrInvalidSignature):
		result.Verify = false
	default:
		return nil, err
	}
	return result, nil
}
