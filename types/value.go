// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// ValueKind discriminates the SML_Value choice. Unlike MessageBody and Time,
// SML_Value is an implicit choice: the underlying TLV type and declared
// length pick the variant directly, with no separate [tag, data] wrapper.
type ValueKind uint8

const (
	ValueBool ValueKind = iota
	ValueOctetString
	ValueI8
	ValueI16
	ValueI32
	ValueI64
	ValueU8
	ValueU16
	ValueU32
	ValueU64
	ValueList
)

// Value is a decoded SML_Value. Only the field matching Kind is meaningful;
// I64/U64 hold every integer width widened to the full word.
type Value struct {
	Kind        ValueKind
	Bool        bool
	OctetString []byte
	I64         int64
	U64         uint64
}

func decodeValue(item *tlv.Item) (*Value, error) {
	switch item.Type {
	case tlv.TypeBoolean:
		b, err := item.IntoBool()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: ValueBool, Bool: b}, nil

	case tlv.TypeString:
		buf := make([]byte, item.Len)
		if err := item.ReadString(buf); err != nil {
			return nil, err
		}
		return &Value{Kind: ValueOctetString, OctetString: buf}, nil

	case tlv.TypeList:
		// ListType values (used for signature chains) are not exercised by
		// the concrete schema surface this module generates; skip rather
		// than decode.
		if err := item.Discard(); err != nil {
			return nil, err
		}
		return &Value{Kind: ValueList}, nil

	case tlv.TypeInteger:
		switch item.Len {
		case 1:
			v, err := item.IntoI8()
			return &Value{Kind: ValueI8, I64: int64(v)}, err
		case 2:
			v, err := item.IntoI16()
			return &Value{Kind: ValueI16, I64: int64(v)}, err
		case 3, 4:
			v, err := item.IntoI32Relaxed()
			return &Value{Kind: ValueI32, I64: int64(v)}, err
		case 8:
			v, err := item.IntoI64()
			return &Value{Kind: ValueI64, I64: v}, err
		default:
			v, err := item.IntoI64Relaxed()
			return &Value{Kind: ValueI64, I64: v}, err
		}

	case tlv.TypeUnsigned:
		switch item.Len {
		case 1:
			v, err := item.IntoU8()
			return &Value{Kind: ValueU8, U64: uint64(v)}, err
		case 2:
			v, err := item.IntoU16()
			return &Value{Kind: ValueU16, U64: uint64(v)}, err
		case 3, 4:
			v, err := item.IntoU32Relaxed()
			return &Value{Kind: ValueU32, U64: uint64(v)}, err
		case 8:
			v, err := item.IntoU64()
			return &Value{Kind: ValueU64, U64: v}, err
		default:
			v, err := item.IntoU64Relaxed()
			return &Value{Kind: ValueU64, U64: v}, err
		}

	default:
		return nil, tlv.ErrUnexpectedTlv
	}
}

func readOptionalValue(list *tlv.List) (*Value, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	if isNone(item) {
		return nil, nil
	}
	return decodeValue(item)
}

func readValue(list *tlv.List) (*Value, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	return decodeValue(item)
}
