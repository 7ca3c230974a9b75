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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/device"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
)

// InfoResult is the output of info and provision.
type InfoResult struct {
	PublicKey *keys.PublicKey `json:"public_key"`
	Info      backend.Info    `json:"info"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the device public key and description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDevice()
		if err != nil {
			return err
		}
		defer d.Close()

		result, err := runInfo(d, false)
		if err != nil {
			return err
		}
		return printResult(cmd, result)
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the device keypair",
	Long: `Create a new keypair on the device, replacing any existing one, and
print its public key. Only the ecc and file devices can create keys.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDevice()
		if err != nil {
			return err
		}
		defer d.Close()

		result, err := runInfo(d, true)
		if err != nil {
			return err
		}
		newLogger().Info("provisioned gateway key",
			"device", getConfig().Device,
			"public_key", result.PublicKey.String())
		return printResult(cmd, result)
	},
}

func runInfo(d *device.Device, create bool) (*InfoResult, error) {
	keypair, err := d.GetKeypair(create)
	if err != nil {
		return nil, err
	}
	info, err := d.GetInfo()
	if err != nil {
		return nil, err
	}
	return &InfoResult{
		PublicKey: keypair.PublicKey(),
		Info:      info,
	}, nil
}
