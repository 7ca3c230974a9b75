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

// Package txn encodes add gateway transactions and implements their
// canonical signing scheme.
//
// Messages use the protobuf wire format of the blockchain transaction
// definitions. Encoding is deterministic: fields are written in field number
// order and proto3 zero values are omitted, so the same transaction always
// produces the same bytes.
package txn

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// AddGatewayV1 adds a gateway to an owner's account. Key fields hold binary
// public keys; signature fields are empty until the party signs.
type AddGatewayV1 struct {
	Owner            []byte
	Gateway          []byte
	OwnerSignature   []byte
	GatewaySignature []byte
	Payer            []byte
	PayerSignature   []byte
	StakingFee       uint64
	Fee              uint64
}

// Marshal returns the protobuf encoding of t.
func (t *AddGatewayV1) Marshal() ([]byte, error) {
	b, err := marshalOptions.Marshal(t.message())
	if err != nil {
		return nil, fmt.Errorf("txn: failed to encode add gateway: %w", err)
	}
	return b, nil
}

// Unmarshal decodes b into t, replacing its contents. Unknown fields are
// skipped.
func (t *AddGatewayV1) Unmarshal(b []byte) error {
	m := dynamicpb.NewMessage(addGatewayDescriptor)
	if err := proto.Unmarshal(b, m); err != nil {
		return malformed(err)
	}
	t.fromMessage(m)
	return nil
}

// message converts t to its protobuf form. Empty fields are left unset.
func (t *AddGatewayV1) message() *dynamicpb.Message {
	m := dynamicpb.NewMessage(addGatewayDescriptor)
	fields := addGatewayDescriptor.Fields()
	for _, f := range []struct {
		num   protowire.Number
		value []byte
	}{
		{fieldOwner, t.Owner},
		{fieldGateway, t.Gateway},
		{fieldOwnerSignature, t.OwnerSignature},
		{fieldGatewaySignature, t.GatewaySignature},
		{fieldPayer, t.Payer},
		{fieldPayerSignature, t.PayerSignature},
	} {
		if len(f.value) > 0 {
			m.Set(fields.ByNumber(f.num), protoreflect.ValueOfBytes(f.value))
		}
	}
	if t.StakingFee != 0 {
		m.Set(fields.ByNumber(fieldStakingFee), protoreflect.ValueOfUint64(t.StakingFee))
	}
	if t.Fee != 0 {
		m.Set(fields.ByNumber(fieldFee), protoreflect.ValueOfUint64(t.Fee))
	}
	return m
}

func (t *AddGatewayV1) fromMessage(m protoreflect.Message) {
	fields := m.Descriptor().Fields()
	bytesField := func(num protowire.Number) []byte {
		fd := fields.ByNumber(num)
		if !m.Has(fd) {
			return nil
		}
		return append([]byte(nil), m.Get(fd).Bytes()...)
	}
	*t = AddGatewayV1{
		Owner:            bytesField(fieldOwner),
		Gateway:          bytesField(fieldGateway),
		OwnerSignature:   bytesField(fieldOwnerSignature),
		GatewaySignature: bytesField(fieldGatewaySignature),
		Payer:            bytesField(fieldPayer),
		PayerSignature:   bytesField(fieldPayerSignature),
		StakingFee:       m.Get(fields.ByNumber(fieldStakingFee)).Uint(),
		Fee:              m.Get(fields.ByNumber(fieldFee)).Uint(),
	}
}

// Signature fields of AddGatewayV1
var (
	OwnerSignature = Field[AddGatewayV1]{
		Name: "owner_signature",
		Get:  func(t *AddGatewayV1) []byte { return t.OwnerSignature },
		Set:  func(t *AddGatewayV1, sig []byte) { t.OwnerSignature = sig },
	}
	PayerSignature = Field[AddGatewayV1]{
		Name: "payer_signature",
		Get:  func(t *AddGatewayV1) []byte { return t.PayerSignature },
		Set:  func(t *AddGatewayV1, sig []byte) { t.PayerSignature = sig },
	}
	GatewaySignature = Field[AddGatewayV1]{
		Name: "gateway_signature",
		Get:  func(t *AddGatewayV1) []byte { return t.GatewaySignature },
		Set:  func(t *AddGatewayV1, sig []byte) { t.GatewaySignature = sig },
	}

	// AddGatewaySignatureFields are cleared from every canonical encoding.
	AddGatewaySignatureFields = []Field[AddGatewayV1]{
		OwnerSignature,
		PayerSignature,
		GatewaySignature,
	}
)

// SignOwner stores the owner signature of t.
func (t *AddGatewayV1) SignOwner(signer Signer) error {
	return Sign(t, signer, OwnerSignature, AddGatewaySignatureFields...)
}

// SignPayer stores the payer signature of t.
func (t *AddGatewayV1) SignPayer(signer Signer) error {
	return Sign(t, signer, PayerSignature, AddGatewaySignatureFields...)
}

// SignGateway stores the gateway signature of t.
func (t *AddGatewayV1) SignGateway(signer Signer) error {
	return Sign(t, signer, GatewaySignature, AddGatewaySignatureFields...)
}

// VerifyOwner checks the owner signature of t against key.
func (t *AddGatewayV1) VerifyOwner(key Verifier) error {
	return Verify(t, key, OwnerSignature, AddGatewaySignatureFields...)
}

// VerifyPayer checks the payer signature of t against key.
func (t *AddGatewayV1) VerifyPayer(key Verifier) error {
	return Verify(t, key, PayerSignature, AddGatewaySignatureFields...)
}

// VerifyGateway checks the gateway signature of t against key.
func (t *AddGatewayV1) VerifyGateway(key Verifier) error {
	return Verify(t, key, GatewaySignature, AddGatewaySignatureFields...)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}
