// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tlv

import (
	"io"

	"code.hybscloud.com/iox"
)

// Type is the 3-bit TLV type tag carried in the high bits of a header byte.
type Type uint8

const (
	TypeString Type = iota
	TypeBoolean
	TypeInteger
	TypeUnsigned
	TypeList
)

func typeFromBits(b byte) (Type, error) {
	switch b {
	case 0b000:
		return TypeString, nil
	case 0b100:
		return TypeBoolean, nil
	case 0b101:
		return TypeInteger, nil
	case 0b110:
		return TypeUnsigned, nil
	case 0b111:
		return TypeList, nil
	default:
		return 0, &Error{Kind: KindUnsupportedTlvType, Tag: uint32(b)}
	}
}

// maxLength caps the accumulated length field of a continued header well
// below where the left-shift-by-4-per-byte accumulator could wrap a 64-bit
// int, matching the spec's "TlvLengthTooBig" guard against a pathological
// continuation chain.
const maxLength = 1 << 28

// Reader is a single TLV cursor over a byte stream positioned at the start
// of a TLV stream (in a Session, one per frame, reading that frame's
// messages in turn). It tracks a flat pending-skip debt -- bytes owed
// (remainingBytes) and whole TLV items owed (remainingTLVs) -- which is
// discharged before every new header read. This is the Go reformulation of
// the "credit remaining length back on drop" discipline: a value read
// straight off the wire never adds debt; a value that is handed to the
// caller and then abandoned (Discard, Skip, SkipRest) adds its size as debt
// for the reader to skip before it lets the caller move on.
type Reader struct {
	r io.Reader

	remainingBytes int
	remainingTLVs  int
}

// NewReader returns a Reader positioned at the start of a TLV stream.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// SkipBytes discards exactly n raw bytes, four at a time.
func (rd *Reader) SkipBytes(n int) error {
	var buf [4]byte
	for n > 0 {
		chunk := n
		if chunk > 4 {
			chunk = 4
		}
		if _, err := io.ReadFull(rd.r, buf[:chunk]); err != nil {
			return wrapErr(err)
		}
		n -= chunk
	}
	return nil
}

// SkipTLVs discards exactly n whole TLV items, reading each one's header and
// then its payload (or, for a list item, folding its declared item count
// into the same loop so nested lists unroll flat rather than recursing).
func (rd *Reader) SkipTLVs(n int) error {
	for n > 0 {
		ty, length, err := rd.readHeaderRaw()
		if err != nil {
			if err == ErrEndOfSmlMessage {
				return &Error{Kind: KindMidMessageEndMarker, Remaining: n}
			}
			return err
		}
		n--
		if ty == TypeList {
			n += length
			continue
		}
		if length > 0 {
			if err := rd.SkipBytes(length); err != nil {
				return err
			}
		}
	}
	return nil
}

// DischargePending discharges any outstanding pending-skip debt without
// reading a new header. Callers that must observe reader state exactly at a
// field boundary -- such as snapshotting a digest computed over bytes read
// so far -- use this instead of letting the next header read (ReadList,
// List.Next) discharge the same debt as a side effect partway through its
// own work.
func (rd *Reader) DischargePending() error {
	return rd.skipNow()
}

// skipNow discharges any outstanding pending-skip debt. It must run before
// every new header read.
func (rd *Reader) skipNow() error {
	if rd.remainingBytes > 0 {
		n := rd.remainingBytes
		rd.remainingBytes = 0
		if err := rd.SkipBytes(n); err != nil {
			return err
		}
	}
	if rd.remainingTLVs > 0 {
		n := rd.remainingTLVs
		rd.remainingTLVs = 0
		if err := rd.SkipTLVs(n); err != nil {
			return err
		}
	}
	return nil
}

// readHeaderRaw reads one TLV header, following continuation bytes, and
// returns the item's type and its payload length (item count, for a list).
// A zero-length string header is the end-of-message marker and is reported
// as ErrEndOfSmlMessage; any other zero-length or too-short header is
// malformed.
func (rd *Reader) readHeaderRaw() (Type, int, error) {
	var b [1]byte
	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return 0, 0, wrapErr(err)
	}
	first := b[0]
	ty, err := typeFromBits((first >> 4) & 0b111)
	if err != nil {
		return 0, 0, err
	}
	length := int(first & 0x0F)
	headerLen := 1
	for first&0x80 != 0 {
		if _, err := io.ReadFull(rd.r, b[:]); err != nil {
			return 0, 0, wrapErr(err)
		}
		first = b[0]
		if (first>>4)&0b111 != 0 {
			return 0, 0, ErrMultibyteTlvReservedType
		}
		if length > maxLength>>4 {
			return 0, 0, ErrTlvLengthTooBig
		}
		length = length<<4 | int(first&0x0F)
		headerLen++
	}
	if ty == TypeList {
		return ty, length, nil
	}
	if length == 0 {
		if ty == TypeString {
			return 0, 0, ErrEndOfSmlMessage
		}
		return 0, 0, &Error{Kind: KindShortTlvLength, Len: 0}
	}
	if length < headerLen {
		return 0, 0, &Error{Kind: KindShortTlvLength, Len: length}
	}
	return ty, length - headerLen, nil
}

// ReadList reads the next header, which must be a list, and returns a cursor
// over its declared item count. Any outstanding pending-skip debt is
// discharged first.
func (rd *Reader) ReadList() (*List, error) {
	if err := rd.skipNow(); err != nil {
		return nil, err
	}
	ty, length, err := rd.readHeaderRaw()
	if err != nil {
		return nil, err
	}
	if ty != TypeList {
		return nil, ErrUnexpectedTlv
	}
	return &List{rd: rd, remaining: length}, nil
}

// wrapErr normalizes an error from a short read: *Error and the non-blocking
// control-flow sentinels pass through unchanged, io.EOF mid-item becomes an
// unexpected-EOF *Error, everything else is wrapped as KindIo.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case err == iox.ErrWouldBlock || err == iox.ErrMore:
		return err
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrUnexpectedEof
	}
	return WrapIo(err)
}
