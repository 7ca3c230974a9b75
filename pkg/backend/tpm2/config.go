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

package tpm2

import (
	"fmt"
	"net"
	"path"
	"strconv"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

const (
	// DefaultDevice is the kernel resource manager node.
	DefaultDevice = "/dev/tpmrm0"

	persistentFirst = 0x81000000
	persistentLast  = 0x81ffffff
)

// Config holds the configuration for the TPM2 backend
type Config struct {
	// Path is the key path from the locator. Its last element names the
	// persistent handle of the key (e.g. /0x81000002)
	Path string

	// Device is the path to the TPM device (default: "/dev/tpmrm0")
	Device string

	// UseSimulator opens the embedded simulator instead of a device
	UseSimulator bool

	// SimulatorHost is the hostname of an SWTPM listening on TCP
	SimulatorHost string

	// SimulatorPort is the SWTPM command port; the platform port is the
	// next one (default: 2321)
	SimulatorPort int

	// Opener opens the TPM transport (default: Open)
	Opener Opener

	// Logger is the logger instance to use
	Logger *logging.Logger
}

// ConfigFromLocator builds a configuration from a tpm://<any>/<key-path>
// locator. The key path is kept as given and resolved when the key is read.
func ConfigFromLocator(l *locator.Locator) (*Config, error) {
	if l.Path() == "" || l.Path() == "/" {
		return nil, fmt.Errorf("%w: %q", backend.ErrInvalidKeyPath, l.String())
	}
	device, err := locator.Arg(l, "device", DefaultDevice)
	if err != nil {
		return nil, err
	}
	simulator, err := locator.Arg(l, "simulator", false)
	if err != nil {
		return nil, err
	}
	config := &Config{
		Path:         l.Path(),
		Device:       device,
		UseSimulator: simulator,
	}
	if l.Has("swtpm") {
		addr, _ := locator.Arg(l, "swtpm", "")
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", locator.ErrInvalidArgument, "swtpm")
		}
		config.SimulatorHost = host
		if config.SimulatorPort, err = strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("%w: %q", locator.ErrInvalidArgument, "swtpm")
		}
	}
	return config, nil
}

// ParseHandle extracts the persistent handle from the last element of a key
// path. Handles are hex (0x81000002) or decimal and must be in the persistent
// range.
func ParseHandle(keyPath string) (uint32, error) {
	elem := path.Base(keyPath)
	if elem == "/" || elem == "." {
		return 0, fmt.Errorf("%w: %q", backend.ErrInvalidKeyPath, keyPath)
	}
	handle, err := strconv.ParseUint(elem, 0, 32)
	if err != nil || !isPersistent(uint32(handle)) {
		return 0, fmt.Errorf("%w: %q is not a persistent handle", backend.ErrInvalidKeyPath, keyPath)
	}
	return uint32(handle), nil
}

func isPersistent(handle uint32) bool {
	return handle >= persistentFirst && handle <= persistentLast
}

// Validate validates the TPM2 backend configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: key path is required", backend.ErrInvalidConfig)
	}
	if c.Device == "" {
		c.Device = DefaultDevice
	}
	if c.SimulatorHost != "" && c.SimulatorPort == 0 {
		c.SimulatorPort = 2321
	}
	return nil
}
