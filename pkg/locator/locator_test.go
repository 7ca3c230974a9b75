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

package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		scheme  Scheme
		host    string
		port    uint16
		hasPort bool
		path    string
	}{
		{"bare path", "/tmp/keypair.bin", SchemeFile, "", 0, false, "/tmp/keypair.bin"},
		{"relative path", "keys/keypair.bin", SchemeFile, "", 0, false, "keys/keypair.bin"},
		{"file url", "file:///etc/keypair.bin", SchemeFile, "", 0, false, "/etc/keypair.bin"},
		{"ecc with address", "ecc://i2c-1:96?slot=0", SchemeECC, "i2c-1", 96, true, ""},
		{"ecc without address", "ecc://i2c-1", SchemeECC, "i2c-1", 0, false, ""},
		{"ecc tty", "ecc://ttyS0", SchemeECC, "ttyS0", 0, false, ""},
		{"tpm", "tpm://tpm/HS/SRK/0x81000002", SchemeTPM, "tpm", 0, false, "/HS/SRK/0x81000002"},
		{"nova-tz", "nova-tz://rsa/tmp/rsa_key_blob", SchemeNovaTZ, "rsa", 0, false, "/tmp/rsa_key_blob"},
		{"uppercase scheme", "ECC://i2c-0", SchemeECC, "i2c-0", 0, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, l.String())
			assert.Equal(t, tt.scheme, l.Scheme())
			assert.Equal(t, tt.host, l.Host())
			port, hasPort := l.Port()
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.hasPort, hasPort)
			assert.Equal(t, tt.path, l.Path())
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	a, err := Parse("ecc://i2c-1:97?slot=3")
	require.NoError(t, err)
	b, err := Parse("ecc://i2c-1:97?slot=3")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_Errors(t *testing.T) {
	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := Parse("foo://bar")
		require.ErrorIs(t, err, ErrUnsupportedScheme)
		assert.Contains(t, err.Error(), "foo://bar")
	})

	t.Run("non numeric port", func(t *testing.T) {
		_, err := Parse("ecc://i2c-1:abc")
		require.ErrorIs(t, err, ErrInvalidURL)
		assert.Contains(t, err.Error(), "ecc://i2c-1:abc")
	})

	t.Run("port out of range", func(t *testing.T) {
		_, err := Parse("ecc://i2c-1:70000")
		require.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("bad query escape", func(t *testing.T) {
		_, err := Parse("ecc://i2c-1?slot=%zz")
		require.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("control characters", func(t *testing.T) {
		_, err := Parse("file://\x7f")
		require.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestArg(t *testing.T) {
	l, err := Parse("ecc://i2c-1?slot=7&simulator=true&name=miner&address=0x60")
	require.NoError(t, err)

	slot, err := Arg(l, "slot", uint8(0))
	require.NoError(t, err)
	assert.Equal(t, uint8(7), slot)

	sim, err := Arg(l, "simulator", false)
	require.NoError(t, err)
	assert.True(t, sim)

	name, err := Arg(l, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "miner", name)

	address, err := Arg(l, "address", uint16(96))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x60), address)

	missing, err := Arg(l, "missing", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, missing)

	assert.True(t, l.Has("slot"))
	assert.False(t, l.Has("missing"))
}

func TestArg_Invalid(t *testing.T) {
	l, err := Parse("ecc://i2c-1?slot=300&simulator=maybe")
	require.NoError(t, err)

	slot, err := Arg(l, "slot", uint8(0))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"slot"`)
	assert.Equal(t, uint8(0), slot)

	_, err = Arg(l, "simulator", false)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "simulator")
}
