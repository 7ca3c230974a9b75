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
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-gateway-security/pkg/device"
)

// envPrefix prefixes environment variables that override flags.
const envPrefix = "GATEWAY_SECURITY"

// ErrDeviceRequired is returned when no device locator is configured.
var ErrDeviceRequired = errors.New("cli: --device is required")

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Device is the security device locator
	Device string

	// KeyblobPassword decrypts encrypted nova-tz keyblobs
	KeyblobPassword string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{}
}

// bindFlags registers the global flags on flags.
func (c *Config) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.ConfigFile, "config", "",
		"config file (yaml, json or toml)")
	flags.StringVar(&c.Device, "device", "",
		"security device locator (env "+envPrefix+"_DEVICE)")
	flags.StringVar(&c.KeyblobPassword, "keyblob-password", "",
		"password of an encrypted nova-tz keyblob (env "+envPrefix+"_KEYBLOB_PASSWORD)")
	flags.BoolVarP(&c.Verbose, "verbose", "v", false,
		"verbose output")
}

// Load resolves the configuration from flags, environment variables and
// the optional config file, in that order of precedence.
func (c *Config) Load(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("cli: failed to bind flags: %w", err)
	}
	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cli: failed to read config %s: %w", c.ConfigFile, err)
		}
	}
	c.Device = v.GetString("device")
	c.KeyblobPassword = v.GetString("keyblob-password")
	c.Verbose = v.GetBool("verbose")
	return nil
}

// Validate checks that a device is configured
func (c *Config) Validate() error {
	if c.Device == "" {
		return ErrDeviceRequired
	}
	return nil
}

// OpenDevice opens the configured device.
func (c *Config) OpenDevice(opts ...device.Option) (*device.Device, error) {
	if c.KeyblobPassword != "" {
		opts = append(opts, device.WithKeyblobPassword([]byte(c.KeyblobPassword)))
	}
	return device.Open(c.Device, opts...)
}
