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

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeremyhahn/go-gateway-security/pkg/keys"
)

func generate(t *testing.T, keyType keys.KeyType) *keys.Keypair {
	t.Helper()
	keypair, err := keys.Generate(keys.KeyTag{Network: keys.MainNet, KeyType: keyType}, rand.Reader)
	require.NoError(t, err)
	return keypair
}

func newAddGateway(t *testing.T, owner, gateway *keys.Keypair) *AddGatewayV1 {
	t.Helper()
	return &AddGatewayV1{
		Owner:      owner.PublicKey().Bytes(),
		Gateway:    gateway.PublicKey().Bytes(),
		StakingFee: 4000000,
		Fee:        65000,
	}
}

func TestAddGatewayV1_Encoding(t *testing.T) {
	txn := &AddGatewayV1{
		Owner:            []byte{0x01},
		Gateway:          []byte{0x02},
		GatewaySignature: []byte{0x04},
		Fee:              300,
	}
	data, err := txn.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x0a, 0x01, 0x01, // owner
		0x12, 0x01, 0x02, // gateway
		0x22, 0x01, 0x04, // gateway_signature
		0x40, 0xac, 0x02, // fee
	}, data)

	var decoded AddGatewayV1
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, *txn, decoded)

	empty, err := (&AddGatewayV1{}).Marshal()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAddGatewayV1_UnknownFields(t *testing.T) {
	data, err := (&AddGatewayV1{Owner: []byte("owner"), StakingFee: 1}).Marshal()
	require.NoError(t, err)
	data = protowire.AppendTag(data, 15, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("future"))
	data = protowire.AppendTag(data, 16, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)

	var decoded AddGatewayV1
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, AddGatewayV1{Owner: []byte("owner"), StakingFee: 1}, decoded)
}

func TestAddGatewayV1_Malformed(t *testing.T) {
	var decoded AddGatewayV1
	err := decoded.Unmarshal([]byte{0x0a, 0x05, 0x01})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseBlockchainTxn([]byte{0xff})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBlockchainTxn(t *testing.T) {
	inner := &AddGatewayV1{Owner: []byte("owner"), Gateway: []byte("gateway")}
	data, err := NewAddGatewayTxn(inner).Marshal()
	require.NoError(t, err)

	envelope, err := ParseBlockchainTxn(data)
	require.NoError(t, err)
	got, err := envelope.AddGatewayV1()
	require.NoError(t, err)
	assert.Equal(t, inner, got)
}

func TestBlockchainTxn_UnknownFields(t *testing.T) {
	inner := &AddGatewayV1{Owner: []byte("owner"), Fee: 5}
	data, err := NewAddGatewayTxn(inner).Marshal()
	require.NoError(t, err)
	data = protowire.AppendTag(data, 40, protowire.VarintType)
	data = protowire.AppendVarint(data, 1)

	envelope, err := ParseBlockchainTxn(data)
	require.NoError(t, err)
	got, err := envelope.AddGatewayV1()
	require.NoError(t, err)
	assert.Equal(t, inner, got)

	// re-encoding drops what the schema does not describe
	again, err := envelope.Marshal()
	require.NoError(t, err)
	expected, err := NewAddGatewayTxn(inner).Marshal()
	require.NoError(t, err)
	assert.Equal(t, expected, again)
}

func TestBlockchainTxn_InvalidType(t *testing.T) {
	// a structurally valid envelope carrying variant 2
	data := protowire.AppendTag(nil, 2, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte{0x0a, 0x01, 0x01})

	envelope, err := ParseBlockchainTxn(data)
	require.NoError(t, err)
	_, err = envelope.AddGatewayV1()
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
	assert.Contains(t, err.Error(), "variant 2")

	envelope, err = ParseBlockchainTxn(nil)
	require.NoError(t, err)
	_, err = envelope.AddGatewayV1()
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestCanonical_ClearsAllSignatures(t *testing.T) {
	txn := &AddGatewayV1{
		Owner:            []byte("owner"),
		Gateway:          []byte("gateway"),
		OwnerSignature:   []byte("owner sig"),
		GatewaySignature: []byte("gateway sig"),
		PayerSignature:   []byte("payer sig"),
		Fee:              10,
	}
	canonical, err := Canonical(txn, AddGatewaySignatureFields...)
	require.NoError(t, err)

	unsigned, err := (&AddGatewayV1{Owner: []byte("owner"), Gateway: []byte("gateway"), Fee: 10}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, unsigned, canonical)

	// the message itself is untouched
	assert.Equal(t, []byte("owner sig"), txn.OwnerSignature)
	assert.Equal(t, []byte("gateway sig"), txn.GatewaySignature)
	assert.Equal(t, []byte("payer sig"), txn.PayerSignature)
}

func TestSignVerify_Gateway(t *testing.T) {
	for _, keyType := range []keys.KeyType{keys.Ed25519, keys.EccCompact} {
		t.Run(keyType.String(), func(t *testing.T) {
			owner := generate(t, keys.Ed25519)
			gateway := generate(t, keyType)
			txn := newAddGateway(t, owner, gateway)

			require.NoError(t, txn.SignGateway(gateway))
			assert.NotEmpty(t, txn.GatewaySignature)
			assert.NoError(t, txn.VerifyGateway(gateway.PublicKey()))

			assert.ErrorIs(t, txn.VerifyGateway(owner.PublicKey()), keys.ErrInvalidSignature)
		})
	}
}

func TestVerify_PayloadMutation(t *testing.T) {
	owner := generate(t, keys.Ed25519)
	gateway := generate(t, keys.Ed25519)
	other := generate(t, keys.Ed25519)

	mutations := map[string]func(*AddGatewayV1){
		"owner":       func(t *AddGatewayV1) { t.Owner = other.PublicKey().Bytes() },
		"gateway":     func(t *AddGatewayV1) { t.Gateway = other.PublicKey().Bytes() },
		"payer":       func(t *AddGatewayV1) { t.Payer = other.PublicKey().Bytes() },
		"fee":         func(t *AddGatewayV1) { t.Fee++ },
		"staking fee": func(t *AddGatewayV1) { t.StakingFee = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			txn := newAddGateway(t, owner, gateway)
			require.NoError(t, txn.SignGateway(gateway))
			mutate(txn)
			assert.ErrorIs(t, txn.VerifyGateway(gateway.PublicKey()), keys.ErrInvalidSignature)
		})
	}
}

func TestSignVerify_MultiSlotIndependence(t *testing.T) {
	owner := generate(t, keys.Ed25519)
	gateway := generate(t, keys.EccCompact)
	payer := generate(t, keys.Ed25519)

	txn := newAddGateway(t, owner, gateway)
	txn.Payer = payer.PublicKey().Bytes()

	// sign in one order
	require.NoError(t, txn.SignGateway(gateway))
	require.NoError(t, txn.SignOwner(owner))
	require.NoError(t, txn.SignPayer(payer))

	assert.NoError(t, txn.VerifyOwner(owner.PublicKey()))
	assert.NoError(t, txn.VerifyGateway(gateway.PublicKey()))
	assert.NoError(t, txn.VerifyPayer(payer.PublicKey()))

	// replacing one signature leaves the others valid
	txn.OwnerSignature = []byte("garbage")
	assert.ErrorIs(t, txn.VerifyOwner(owner.PublicKey()), keys.ErrInvalidSignature)
	assert.NoError(t, txn.VerifyGateway(gateway.PublicKey()))
	assert.NoError(t, txn.VerifyPayer(payer.PublicKey()))

	// an owner signature made before anyone else signed still verifies
	fresh := newAddGateway(t, owner, gateway)
	fresh.Payer = txn.Payer
	require.NoError(t, fresh.SignOwner(owner))
	txn.OwnerSignature = fresh.OwnerSignature
	assert.NoError(t, txn.VerifyOwner(owner.PublicKey()))
}

func TestSign_GenericField(t *testing.T) {
	keypair := generate(t, keys.Ed25519)
	txn := &AddGatewayV1{Owner: []byte("owner")}

	require.NoError(t, Sign(txn, keypair, PayerSignature, AddGatewaySignatureFields...))
	assert.NotEmpty(t, PayerSignature.Get(txn))
	assert.NoError(t, Verify(txn, keypair.PublicKey(), PayerSignature, AddGatewaySignatureFields...))
	assert.ErrorIs(t, Verify(txn, keypair.PublicKey(), OwnerSignature, AddGatewaySignatureFields...), keys.ErrInvalidSignature)
}
