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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-gateway-security/pkg/device"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gateway-security",
	Short: "Gateway security device tool",
	Long: `gateway-security reads the gateway key held by a security device and
signs add gateway transactions with it.

The --device locator selects the key store:
  ecc://i2c-1, ecc://i2c-1:96?slot=0   ATECC608 secure element
  tpm://tpm/0x81000002                 TPM persistent key
  nova-tz://rsa/<keyblob-path>         trusted execution keyblob
  file:///etc/keypair.bin              software keypair file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globalConfig.Load(cmd.Flags())
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize global config
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	globalConfig.bindFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(provisionCmd)
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}

// openDevice opens the configured device with a logger on stderr.
func openDevice() (*device.Device, error) {
	cfg := getConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := cfg.OpenDevice(device.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}
	printVerbose("opened %s device %s", d.Kind(), d.Locator())
	return d, nil
}

// newLogger returns a stderr logger at the configured verbosity.
func newLogger() *logging.Logger {
	return logging.NewLogger(getConfig().Verbose)
}

// printResult writes result as JSON to the command's output.
func printResult(cmd *cobra.Command, result any) error {
	return NewPrinter(cmd.OutOrStdout()).PrintJSON(result)
}

// handleError prints an error and exits with code 1
func handleError(w io.Writer, err error) {
	printer := NewPrinter(w)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// Main runs the command line and exits non-zero on failure.
func Main() {
	if err := Execute(); err != nil {
		handleError(os.Stderr, err)
	}
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if getConfig().Verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
