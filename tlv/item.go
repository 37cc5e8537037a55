// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tlv

import (
	"encoding/binary"
	"io"
)

// Item is one TLV value handed out by List.Next. It must be resolved exactly
// once, either by one of the Into*/ReadString/AsList accessors (which read
// its payload straight off the wire) or by Discard (which hands its
// declared length to the reader as pending-skip debt instead). Calling an
// accessor on an already-resolved item returns ErrCantParseTwice; calling
// Discard on an already-resolved item is a no-op that returns nil.
type Item struct {
	rd   *Reader
	Type Type
	Len  int // byte length for scalar kinds; declared item count for a list
	done bool
}

// Discard abandons the item without reading its payload, crediting its
// declared size to the reader's pending-skip debt so the next header read
// steps over it correctly.
func (it *Item) Discard() error {
	if it.done {
		return nil
	}
	if it.Type == TypeList {
		it.rd.remainingTLVs += it.Len
	} else if it.Len > 0 {
		it.rd.remainingBytes += it.Len
	}
	it.done = true
	return nil
}

// AsList turns a list-kind item into a cursor over its declared items.
func (it *Item) AsList() (*List, error) {
	if it.Type != TypeList {
		return nil, ErrUnexpectedTlv
	}
	if it.done {
		return nil, ErrCantParseTwice
	}
	it.done = true
	return &List{rd: it.rd, remaining: it.Len}, nil
}

// ReadString reads a string-kind item's payload into buf, which must be
// exactly Len bytes.
func (it *Item) ReadString(buf []byte) error {
	if it.Type != TypeString {
		return ErrUnexpectedTlv
	}
	if it.done {
		return ErrCantParseTwice
	}
	if len(buf) != it.Len {
		return ErrWrongBufferSize
	}
	it.done = true
	if it.Len == 0 {
		return nil
	}
	if _, err := io.ReadFull(it.rd.r, buf); err != nil {
		return wrapErr(err)
	}
	return nil
}

// IntoBool reads a boolean-kind item, which must declare exactly one byte;
// any non-zero byte is true.
func (it *Item) IntoBool() (bool, error) {
	if it.Type != TypeBoolean {
		return false, ErrUnexpectedTlv
	}
	if it.done {
		return false, ErrCantParseTwice
	}
	if it.Len != 1 {
		return false, &Error{Kind: KindUnsupportedLen, Len: it.Len}
	}
	it.done = true
	var b [1]byte
	if _, err := io.ReadFull(it.rd.r, b[:]); err != nil {
		return false, wrapErr(err)
	}
	return b[0] != 0, nil
}

// readUnsigned reads it.Len bytes (which must satisfy lo <= Len <= hi) into
// the low end of a zero-extended 64-bit word.
func (it *Item) readUnsigned(lo, hi int) (uint64, error) {
	if it.Type != TypeUnsigned {
		return 0, ErrUnexpectedTlv
	}
	if it.done {
		return 0, ErrCantParseTwice
	}
	if it.Len < lo || it.Len > hi {
		return 0, &Error{Kind: KindUnsupportedLen, Len: it.Len}
	}
	it.done = true
	var raw [8]byte
	if it.Len > 0 {
		if _, err := io.ReadFull(it.rd.r, raw[8-it.Len:]); err != nil {
			return 0, wrapErr(err)
		}
	}
	return binary.BigEndian.Uint64(raw[:]), nil
}

// readInteger reads it.Len bytes (which must satisfy lo <= Len <= hi) into a
// sign-extended 64-bit word.
func (it *Item) readInteger(lo, hi int) (int64, error) {
	if it.Type != TypeInteger {
		return 0, ErrUnexpectedTlv
	}
	if it.done {
		return 0, ErrCantParseTwice
	}
	if it.Len < lo || it.Len > hi {
		return 0, &Error{Kind: KindUnsupportedLen, Len: it.Len}
	}
	it.done = true
	var raw [8]byte
	if it.Len > 0 {
		if _, err := io.ReadFull(it.rd.r, raw[8-it.Len:]); err != nil {
			return 0, wrapErr(err)
		}
		if raw[8-it.Len]&0x80 != 0 {
			for i := 0; i < 8-it.Len; i++ {
				raw[i] = 0xFF
			}
		}
	}
	return int64(binary.BigEndian.Uint64(raw[:])), nil
}

// IntoU8 reads an unsigned item declared as exactly 1 byte.
func (it *Item) IntoU8() (uint8, error) { v, err := it.readUnsigned(1, 1); return uint8(v), err }

// IntoU16 reads an unsigned item declared as exactly 2 bytes.
func (it *Item) IntoU16() (uint16, error) { v, err := it.readUnsigned(2, 2); return uint16(v), err }

// IntoU32 reads an unsigned item declared as exactly 4 bytes.
func (it *Item) IntoU32() (uint32, error) { v, err := it.readUnsigned(4, 4); return uint32(v), err }

// IntoU64 reads an unsigned item declared as exactly 8 bytes.
func (it *Item) IntoU64() (uint64, error) { return it.readUnsigned(8, 8) }

// IntoU32Relaxed reads an unsigned item declared as 1 to 4 bytes, widening.
func (it *Item) IntoU32Relaxed() (uint32, error) {
	v, err := it.readUnsigned(1, 4)
	return uint32(v), err
}

// IntoU64Relaxed reads an unsigned item declared as 1 to 8 bytes, widening.
func (it *Item) IntoU64Relaxed() (uint64, error) { return it.readUnsigned(1, 8) }

// IntoI8 reads a signed item declared as exactly 1 byte.
func (it *Item) IntoI8() (int8, error) { v, err := it.readInteger(1, 1); return int8(v), err }

// IntoI16 reads a signed item declared as exactly 2 bytes.
func (it *Item) IntoI16() (int16, error) { v, err := it.readInteger(2, 2); return int16(v), err }

// IntoI32 reads a signed item declared as exactly 4 bytes.
func (it *Item) IntoI32() (int32, error) { v, err := it.readInteger(4, 4); return int32(v), err }

// IntoI64 reads a signed item declared as exactly 8 bytes.
func (it *Item) IntoI64() (int64, error) { return it.readInteger(8, 8) }

// IntoI32Relaxed reads a signed item declared as 1 to 4 bytes, sign-extending.
func (it *Item) IntoI32Relaxed() (int32, error) {
	v, err := it.readInteger(1, 4)
	return int32(v), err
}

// IntoI64Relaxed reads a signed item declared as 1 to 8 bytes, sign-extending.
func (it *Item) IntoI64Relaxed() (int64, error) { return it.readInteger(1, 8) }
