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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// BlockchainTxn is the envelope carrying one transaction. Only the add
// gateway variant is decoded. Variants outside this package's schema are
// kept as unknown fields; the first one is recorded by field number so
// callers can report it.
type BlockchainTxn struct {
	AddGateway *AddGatewayV1

	variant protowire.Number
}

// NewAddGatewayTxn wraps t in an envelope.
func NewAddGatewayTxn(t *AddGatewayV1) *BlockchainTxn {
	return &BlockchainTxn{AddGateway: t, variant: fieldAddGateway}
}

// Marshal returns the protobuf encoding of the envelope.
func (e *BlockchainTxn) Marshal() ([]byte, error) {
	m := dynamicpb.NewMessage(blockchainTxnDescriptor)
	if e.AddGateway != nil {
		fd := blockchainTxnDescriptor.Fields().ByNumber(fieldAddGateway)
		m.Set(fd, protoreflect.ValueOfMessage(e.AddGateway.message()))
	}
	b, err := marshalOptions.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("txn: failed to encode envelope: %w", err)
	}
	return b, nil
}

// Unmarshal decodes b into the envelope, replacing its contents.
func (e *BlockchainTxn) Unmarshal(b []byte) error {
	m := dynamicpb.NewMessage(blockchainTxnDescriptor)
	if err := proto.Unmarshal(b, m); err != nil {
		return malformed(err)
	}

	*e = BlockchainTxn{}
	fd := blockchainTxnDescriptor.Fields().ByNumber(fieldAddGateway)
	if m.Has(fd) {
		e.AddGateway = &AddGatewayV1{}
		e.AddGateway.fromMessage(m.Get(fd).Message())
		e.variant = fieldAddGateway
		return nil
	}
	if num, _, n := protowire.ConsumeTag(m.GetUnknown()); n > 0 {
		e.variant = num
	}
	return nil
}

// AddGatewayV1 returns the add gateway transaction or
// ErrInvalidTransactionType when the envelope holds another variant.
func (e *BlockchainTxn) AddGatewayV1() (*AddGatewayV1, error) {
	if e.AddGateway == nil {
		if e.variant != 0 {
			return nil, fmt.Errorf("%w: variant %d", ErrInvalidTransactionType, e.variant)
		}
		return nil, ErrInvalidTransactionType
	}
	return e.AddGateway, nil
}

// ParseBlockchainTxn decodes an envelope.
func ParseBlockchainTxn(b []byte) (*BlockchainTxn, error) {
	e := &BlockchainTxn{}
	if err := e.Unmarshal(b); err != nil {
		return nil, err
	}
	return e, nil
}
