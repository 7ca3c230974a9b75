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

package device

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/google/go-tpm/tpm2/transport"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/ecc608"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/file"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/novatz"
	"github.com/jeremyhahn/go-gateway-security/pkg/backend/tpm2"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/locator"
	"github.com/jeremyhahn/go-gateway-security/pkg/logging"
)

func TestOpen_Kinds(t *testing.T) {
	tests := []struct {
		url  string
		kind backend.Kind
	}{
		{url: "ecc://i2c-1:96?slot=0", kind: backend.KindECC608},
		{url: "tpm://tpm/0x81000002", kind: backend.KindTPM2},
		{url: "nova-tz://rsa/var/data/keyblob", kind: backend.KindNovaTZ},
		{url: "file:///etc/keypair.bin", kind: backend.KindFile},
		{url: "/etc/keypair.bin", kind: backend.KindFile},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := Open(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind())
			assert.Equal(t, tt.url, d.Locator().String())
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{url: "http://example.com/key", wantErr: locator.ErrUnsupportedScheme},
		{url: "ecc://i2c-1?slot=abc", wantErr: locator.ErrInvalidArgument},
		{url: "tpm://tpm", wantErr: backend.ErrInvalidKeyPath},
		{url: "nova-tz://rsa", wantErr: locator.ErrInvalidURL},
		{url: "file://", wantErr: locator.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := Open(tt.url)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFile_CreateAndReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	d, err := Open("/keys/gateway.bin", WithFs(fs), WithLogger(logging.Discard()))
	require.NoError(t, err)
	defer d.Close()

	created, err := d.GetKeypair(true)
	require.NoError(t, err)

	loaded, err := d.GetKeypair(false)
	require.NoError(t, err)
	assert.True(t, created.PublicKey().Equal(loaded.PublicKey()))

	info, err := d.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, file.Info{Type: "ed25519", Path: "/keys/gateway.bin"}, info)

	recreated, err := d.GetKeypair(true)
	require.NoError(t, err)
	assert.False(t, created.PublicKey().Equal(recreated.PublicKey()))
}

func TestOpen_LoggerTaggedWithKind(t *testing.T) {
	var buf bytes.Buffer
	d, err := Open("/keys/gateway.bin", WithFs(afero.NewMemMapFs()), WithLogger(logging.New(&buf, true)))
	require.NoError(t, err)

	_, err = d.GetKeypair(false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "device=file")
	assert.Contains(t, buf.String(), "generating keypair")
}

func TestNovaTZ_WithFsAndPassword(t *testing.T) {
	var priv *ecdsa.PrivateKey
	for priv == nil || !keys.IsCompact(&priv.PublicKey) {
		var err error
		priv, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/var/data/keyblob", der, 0600))

	d, err := Open("nova-tz://rsa/var/data/keyblob", WithFs(fs))
	require.NoError(t, err)

	keypair, err := d.GetKeypair(false)
	require.NoError(t, err)
	assert.True(t, priv.PublicKey.Equal(keypair.PublicKey().Crypto()))

	info, err := d.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, novatz.Info{Path: "/var/data/keyblob"}, info)

	assert.Panics(t, func() { _, _ = d.GetKeypair(true) })

	// an encrypted keyblob password does not apply to plain keyblobs
	d, err = Open("nova-tz://rsa/var/data/keyblob", WithFs(fs), WithKeyblobPassword([]byte("secret")))
	require.NoError(t, err)
	_, err = d.GetKeypair(false)
	assert.ErrorIs(t, err, backend.ErrKeyDecodingFailed)
}

func TestECC_WithOpener(t *testing.T) {
	opened := false
	d, err := Open("ecc://i2c-7:88?slot=3", WithECCOpener(func(path string, address uint16, _ *logging.Logger) (ecc608.Chip, error) {
		opened = true
		assert.Equal(t, "/dev/i2c-7", path)
		assert.Equal(t, uint16(88), address)
		return nil, backend.ErrKeyNotFound
	}))
	require.NoError(t, err)

	info, err := d.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, ecc608.Info{Path: "/dev/i2c-7", Address: 88, Slot: 3}, info)
	assert.False(t, opened)

	_, err = d.GetKeypair(false)
	assert.ErrorIs(t, err, backend.ErrKeyNotFound)
	assert.True(t, opened)
	assert.NoError(t, d.Close())
}

func TestTPM_WithOpener(t *testing.T) {
	d, err := Open("tpm://tpm/0x81000002?device=/dev/tpm0", WithTPMOpener(func(config *tpm2.Config) (transport.TPMCloser, error) {
		assert.Equal(t, "/dev/tpm0", config.Device)
		assert.Equal(t, "/0x81000002", config.Path)
		return nil, tpm2.ErrTPMNotAvailable
	}))
	require.NoError(t, err)

	_, err = d.GetKeypair(true)
	assert.ErrorIs(t, err, backend.ErrCreateNotSupported)

	_, err = d.GetKeypair(false)
	assert.ErrorIs(t, err, tpm2.ErrTPMNotAvailable)

	info, err := d.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, tpm2.Info{Path: "/0x81000002"}, info)
}

func TestTPM_OpaqueKeyPath(t *testing.T) {
	for _, url := range []string{"tpm://tpm//HS/SRK/MinerKey", "tpm://tpm/HS/SRK/MinerKey"} {
		t.Run(url, func(t *testing.T) {
			d, err := Open(url, WithTPMOpener(func(*tpm2.Config) (transport.TPMCloser, error) {
				t.Fatal("TPM must not be opened")
				return nil, nil
			}))
			require.NoError(t, err)

			_, err = d.GetKeypair(true)
			assert.ErrorIs(t, err, backend.ErrCreateNotSupported)

			_, err = d.GetKeypair(false)
			assert.ErrorIs(t, err, backend.ErrKeyNotFound)
		})
	}
}
