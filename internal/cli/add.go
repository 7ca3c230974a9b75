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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-gateway-security/pkg/device"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/txn"
)

// AddRequest holds the add command inputs.
type AddRequest struct {
	Owner      *keys.PublicKey
	Payer      *keys.PublicKey
	Fee        uint64
	StakingFee uint64
}

// AddResult is the output of add. Txn is the base64 encoding of the base64
// encoded transaction envelope.
type AddResult struct {
	Address *keys.PublicKey `json:"address"`
	Txn     string          `json:"txn"`
}

var addFlags struct {
	payer      string
	fee        uint64
	stakingFee uint64
}

var addCmd = &cobra.Command{
	Use:   "add <owner>",
	Short: "Construct an add gateway transaction for this gateway",
	Long: `Construct an add gateway transaction naming owner, a public key in
string form, and sign it with the device key as the gateway. The owner and
payer signatures are left empty.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &AddRequest{
			Fee:        addFlags.fee,
			StakingFee: addFlags.stakingFee,
		}
		var err error
		if req.Owner, err = keys.ParsePublicKey(args[0]); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
		if addFlags.payer != "" {
			if req.Payer, err = keys.ParsePublicKey(addFlags.payer); err != nil {
				return fmt.Errorf("invalid payer: %w", err)
			}
		}

		d, err := openDevice()
		if err != nil {
			return err
		}
		defer d.Close()

		result, err := runAdd(d, req)
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.payer, "payer", "", "payer public key")
	addCmd.Flags().Uint64Var(&addFlags.fee, "fee", 0, "transaction fee")
	addCmd.Flags().Uint64Var(&addFlags.stakingFee, "staking-fee", 0, "staking fee")
}

func runAdd(d *device.Device, req *AddRequest) (*AddResult, error) {
	keypair, err := d.GetKeypair(false)
	if err != nil {
		return nil, err
	}

	add := &txn.AddGatewayV1{
		Owner:      req.Owner.Bytes(),
		Gateway:    keypair.PublicKey().Bytes(),
		Fee:        req.Fee,
		StakingFee: req.StakingFee,
	}
	if req.Payer != nil {
		add.Payer = req.Payer.Bytes()
	}
	if err := add.SignGateway(keypair); err != nil {
		return nil, err
	}

	envelope, err := txn.NewAddGatewayTxn(add).Marshal()
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(envelope)
	return &AddResult{
		Address: keypair.PublicKey(),
		Txn:     base64.StdEncoding.EncodeToString([]byte(encoded)),
	}, nil
}
