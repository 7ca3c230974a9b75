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
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeremyhahn/go-gateway-security/pkg/backend"
	"github.com/jeremyhahn/go-gateway-security/pkg/device"
	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
	"github.com/jeremyhahn/go-gateway-security/pkg/txn"
)

func newOwner(t *testing.T) *keys.PublicKey {
	t.Helper()
	keypair, err := keys.Generate(keys.DefaultKeyTag, rand.Reader)
	require.NoError(t, err)
	return keypair.PublicKey()
}

func openFileDevice(t *testing.T) (*device.Device, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.bin")
	d, err := device.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

// decodeTxn undoes the outer base64 of an add result.
func decodeTxn(t *testing.T, s string) string {
	t.Helper()
	inner, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return string(inner)
}

func TestRunInfo(t *testing.T) {
	d, path := openFileDevice(t)

	result, err := runInfo(d, false)
	require.NoError(t, err)
	assert.Equal(t, backend.KindFile, result.Info.Kind())

	again, err := runInfo(d, false)
	require.NoError(t, err)
	assert.Equal(t, result.PublicKey.String(), again.PublicKey.String())

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).PrintJSON(result))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, result.PublicKey.String(), out["public_key"])
	assert.Equal(t, map[string]any{"type": "ed25519", "path": path}, out["info"])
}

func TestRunInfo_Provision(t *testing.T) {
	d, _ := openFileDevice(t)

	first, err := runInfo(d, false)
	require.NoError(t, err)
	provisioned, err := runInfo(d, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicKey.String(), provisioned.PublicKey.String())
}

func TestAddVerify_EndToEnd(t *testing.T) {
	d, _ := openFileDevice(t)
	owner := newOwner(t)

	added, err := runAdd(d, &AddRequest{Owner: owner})
	require.NoError(t, err)
	require.NotEmpty(t, added.Txn)

	info, err := runInfo(d, false)
	require.NoError(t, err)
	assert.Equal(t, info.PublicKey.String(), added.Address.String())

	verified, err := runVerify(decodeTxn(t, added.Txn))
	require.NoError(t, err)
	assert.True(t, verified.Verify)
	assert.Equal(t, added.Address.String(), verified.Address.String())
	assert.Equal(t, owner.String(), verified.Owner.String())
	assert.Nil(t, verified.Payer)
}

func TestAdd_PayerAndFees(t *testing.T) {
	d, _ := openFileDevice(t)
	owner, payer := newOwner(t), newOwner(t)

	added, err := runAdd(d, &AddRequest{Owner: owner, Payer: payer, Fee: 65000, StakingFee: 4000000})
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(decodeTxn(t, added.Txn))
	require.NoError(t, err)
	envelope, err := txn.ParseBlockchainTxn(data)
	require.NoError(t, err)
	add, err := envelope.AddGatewayV1()
	require.NoError(t, err)
	assert.Equal(t, uint64(65000), add.Fee)
	assert.Equal(t, uint64(4000000), add.StakingFee)
	assert.Equal(t, payer.Bytes(), add.Payer)
	assert.Empty(t, add.OwnerSignature)
	assert.Empty(t, add.PayerSignature)

	verified, err := runVerify(decodeTxn(t, added.Txn))
	require.NoError(t, err)
	assert.True(t, verified.Verify)
	require.NotNil(t, verified.Payer)
	assert.Equal(t, payer.String(), verified.Payer.String())
}

func TestVerify_TamperedTxn(t *testing.T) {
	d, _ := openFileDevice(t)
	added, err := runAdd(d, &AddRequest{Owner: newOwner(t)})
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(decodeTxn(t, added.Txn))
	require.NoError(t, err)
	envelope, err := txn.ParseBlockchainTxn(data)
	require.NoError(t, err)
	envelope.AddGateway.Fee = 1
	data, err = envelope.Marshal()
	require.NoError(t, err)

	verified, err := runVerify(base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.False(t, verified.Verify)
}

func TestVerify_InvalidTransactionType(t *testing.T) {
	data := protowire.AppendTag(nil, 5, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte{0x0a, 0x01, 0x01})

	_, err := runVerify(base64.StdEncoding.EncodeToString(data))
	assert.ErrorIs(t, err, txn.ErrInvalidTransactionType)
	assert.Contains(t, err.Error(), "invalid transaction type")
}

func TestVerify_InvalidInput(t *testing.T) {
	_, err := runVerify("not base64!")
	assert.Error(t, err)

	_, err = runVerify(base64.StdEncoding.EncodeToString([]byte{0xff}))
	assert.ErrorIs(t, err, txn.ErrMalformed)

	// an add gateway transaction without keys
	data, err := txn.NewAddGatewayTxn(&txn.AddGatewayV1{Fee: 1}).Marshal()
	require.NoError(t, err)
	_, err = runVerify(base64.StdEncoding.EncodeToString(data))
	assert.ErrorIs(t, err, keys.ErrInvalidPublicKey)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecute_AddThenVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.bin")
	owner := newOwner(t)

	out, err := execute(t, "--device", path, "info")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))

	out, err = execute(t, "--device", path, "add", owner.String())
	require.NoError(t, err)
	var added map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, info["public_key"], added["address"])

	out, err = execute(t, "--device", path, "verify", decodeTxn(t, added["txn"]))
	require.NoError(t, err)
	var verified map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &verified))
	assert.Equal(t, true, verified["verify"])
	assert.Equal(t, added["address"], verified["address"])
	assert.Equal(t, owner.String(), verified["owner"])
}

func TestExecute_Errors(t *testing.T) {
	_, err := execute(t, "--device", "", "info")
	assert.ErrorIs(t, err, ErrDeviceRequired)

	_, err = execute(t, "--device", "/tmp/unused.bin", "add", "not-a-key")
	assert.ErrorIs(t, err, keys.ErrInvalidPublicKey)

	_, err = execute(t, "--device", "tpm://tpm/0x81000002", "provision")
	assert.ErrorIs(t, err, backend.ErrCreateNotSupported)
}

func TestExecute_Version(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	var version map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &version))
	assert.Equal(t, Version, version["version"])
}
