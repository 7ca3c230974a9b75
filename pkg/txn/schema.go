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
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// AddGatewayV1 field numbers
const (
	fieldOwner            protowire.Number = 1
	fieldGateway          protowire.Number = 2
	fieldOwnerSignature   protowire.Number = 3
	fieldGatewaySignature protowire.Number = 4
	fieldPayer            protowire.Number = 5
	fieldPayerSignature   protowire.Number = 6
	fieldStakingFee       protowire.Number = 7
	fieldFee              protowire.Number = 8
)

// fieldAddGateway is the add gateway variant of the transaction oneof.
const fieldAddGateway protowire.Number = 1

// Descriptors of the subset of the blockchain transaction schema this
// package encodes.
var (
	addGatewayDescriptor    protoreflect.MessageDescriptor
	blockchainTxnDescriptor protoreflect.MessageDescriptor
)

func init() {
	file, err := protodesc.NewFile(schema(), new(protoregistry.Files))
	if err != nil {
		panic("txn: invalid transaction schema: " + err.Error())
	}
	addGatewayDescriptor = file.Messages().ByName("blockchain_txn_add_gateway_v1")
	blockchainTxnDescriptor = file.Messages().ByName("blockchain_txn")
}

func schema() *descriptorpb.FileDescriptorProto {
	field := func(name string, num protowire.Number, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(int32(num)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   typ.Enum(),
		}
	}
	bytesType := descriptorpb.FieldDescriptorProto_TYPE_BYTES
	uint64Type := descriptorpb.FieldDescriptorProto_TYPE_UINT64

	addGateway := field("add_gateway", fieldAddGateway, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	addGateway.TypeName = proto.String(".helium.blockchain_txn_add_gateway_v1")
	addGateway.OneofIndex = proto.Int32(0)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("helium/blockchain_txn.proto"),
		Package: proto.String("helium"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("blockchain_txn_add_gateway_v1"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("owner", fieldOwner, bytesType),
					field("gateway", fieldGateway, bytesType),
					field("owner_signature", fieldOwnerSignature, bytesType),
					field("gateway_signature", fieldGatewaySignature, bytesType),
					field("payer", fieldPayer, bytesType),
					field("payer_signature", fieldPayerSignature, bytesType),
					field("staking_fee", fieldStakingFee, uint64Type),
					field("fee", fieldFee, uint64Type),
				},
			},
			{
				Name:  proto.String("blockchain_txn"),
				Field: []*descriptorpb.FieldDescriptorProto{addGateway},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("txn")},
				},
			},
		},
	}
}

// marshalOptions writes fields in field number order.
var marshalOptions = proto.MarshalOptions{Deterministic: true}
