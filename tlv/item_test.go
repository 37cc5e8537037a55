// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tlv

import (
	"bytes"
	"testing"
)

// header builds a single-byte TLV header: 3-bit type in bits 4-6 (bit 7,
// the continuation flag, left clear), 4-bit length in the low nibble.
func header(ty byte, length int) byte {
	return ty<<4 | byte(length)
}

const (
	bitsString    = 0b000
	bitsBoolean   = 0b100
	bitsInteger   = 0b101
	bitsUnsigned  = 0b110
	bitsList      = 0b111
)

func unsignedItem(t *testing.T, n uint64, width int) *Item {
	t.Helper()
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	hdr := header(bitsUnsigned, width+1)
	rd := NewReader(bytes.NewReader(append([]byte{hdr}, buf...)))
	item, err := (&List{rd: rd, remaining: 1}).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return item
}

func signedItem(t *testing.T, raw []byte) *Item {
	t.Helper()
	hdr := header(bitsInteger, len(raw)+1)
	rd := NewReader(bytes.NewReader(append([]byte{hdr}, raw...)))
	item, err := (&List{rd: rd, remaining: 1}).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return item
}

func TestUnsignedExactWidthRoundTrip(t *testing.T) {
	cases := []struct {
		width int
		value uint64
		read  func(*Item) (uint64, error)
	}{
		{1, 0xAB, func(it *Item) (uint64, error) { v, err := it.IntoU8(); return uint64(v), err }},
		{2, 0xBEEF, func(it *Item) (uint64, error) { v, err := it.IntoU16(); return uint64(v), err }},
		{4, 0xDEADBEEF, func(it *Item) (uint64, error) { v, err := it.IntoU32(); return uint64(v), err }},
		{8, 0x0123456789ABCDEF, func(it *Item) (uint64, error) { return it.IntoU64() }},
	}
	for _, c := range cases {
		item := unsignedItem(t, c.value, c.width)
		got, err := c.read(item)
		if err != nil {
			t.Fatalf("width %d: %v", c.width, err)
		}
		if got != c.value {
			t.Fatalf("width %d: got %#x, want %#x", c.width, got, c.value)
		}
	}
}

func TestUnsignedRelaxedWidensWithoutSignExtension(t *testing.T) {
	item := unsignedItem(t, 0xFF, 1)
	got, err := item.IntoU32Relaxed()
	if err != nil {
		t.Fatalf("IntoU32Relaxed: %v", err)
	}
	if got != 0xFF {
		t.Fatalf("got %#x, want 0xFF (no sign extension for unsigned)", got)
	}
}

func TestSignedExactWidthRoundTrip(t *testing.T) {
	item := signedItem(t, []byte{0x7F})
	v, err := item.IntoI8()
	if err != nil || v != 0x7F {
		t.Fatalf("IntoI8: got (%d, %v)", v, err)
	}

	item = signedItem(t, []byte{0xFF, 0xFE})
	v16, err := item.IntoI16()
	if err != nil || v16 != -2 {
		t.Fatalf("IntoI16: got (%d, %v)", v16, err)
	}
}

func TestSignedRelaxedSignExtendsNegative(t *testing.T) {
	// One byte, top bit set: -1 as i8, should sign-extend to -1 as i32.
	item := signedItem(t, []byte{0xFF})
	got, err := item.IntoI32Relaxed()
	if err != nil {
		t.Fatalf("IntoI32Relaxed: %v", err)
	}
	if got != -1 {
		t.Fatalf("got %d, want -1 (sign bit must propagate to all higher bits)", got)
	}
}

func TestSignedRelaxedNoExtensionWhenTopBitClear(t *testing.T) {
	item := signedItem(t, []byte{0x7F})
	got, err := item.IntoI32Relaxed()
	if err != nil {
		t.Fatalf("IntoI32Relaxed: %v", err)
	}
	if got != 0x7F {
		t.Fatalf("got %d, want 0x7F (no sign extension when top bit clear)", got)
	}
}

func TestDiscardThenReusePanicsNever_SecondAccessorErrors(t *testing.T) {
	item := unsignedItem(t, 7, 1)
	if err := item.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := item.IntoU8(); !Is(err, KindCantParseTwice) {
		t.Fatalf("got %v, want KindCantParseTwice", err)
	}
}

func TestReadTwiceReturnsCantParseTwice(t *testing.T) {
	item := unsignedItem(t, 7, 1)
	if _, err := item.IntoU8(); err != nil {
		t.Fatalf("first IntoU8: %v", err)
	}
	if _, err := item.IntoU8(); !Is(err, KindCantParseTwice) {
		t.Fatalf("second IntoU8: got %v, want KindCantParseTwice", err)
	}
}

func TestReadStringWrongBufferSize(t *testing.T) {
	hdr := header(bitsString, 4) // declared len 3 + 1 header byte
	rd := NewReader(bytes.NewReader(append([]byte{hdr}, 'a', 'b', 'c')))
	item, err := (&List{rd: rd, remaining: 1}).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := item.ReadString(make([]byte, 2)); !Is(err, KindWrongBufferSize) {
		t.Fatalf("got %v, want KindWrongBufferSize", err)
	}
}

func TestReadStringExactRoundTrip(t *testing.T) {
	hdr := header(bitsString, 4)
	rd := NewReader(bytes.NewReader(append([]byte{hdr}, 'x', 'y', 'z')))
	item, err := (&List{rd: rd, remaining: 1}).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	buf := make([]byte, 3)
	if err := item.ReadString(buf); err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if string(buf) != "xyz" {
		t.Fatalf("got %q, want %q", buf, "xyz")
	}
}

func TestBooleanWrongLengthRejected(t *testing.T) {
	hdr := header(bitsBoolean, 3) // declared len 3 incl. 1 header byte -> 2 payload bytes, invalid for a boolean
	rd := NewReader(bytes.NewReader(append([]byte{hdr}, 0x01, 0x01)))
	item, err := (&List{rd: rd, remaining: 1}).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := item.IntoBool(); !Is(err, KindUnsupportedLen) {
		t.Fatalf("got %v, want KindUnsupportedLen", err)
	}
}
