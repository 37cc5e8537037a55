// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tlv implements the self-describing Type-Length-Value encoding
// that every SML TLV item and list is built from, plus the pending-skip
// cursor that lets a caller ignore fields it does not need without buffering
// the rest of the message.
package tlv

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a decode failure raised anywhere in the
// framing, message, TLV, or schema layers. It lives here, in the lowest leaf
// package, so both tlv and the root sml package can share one taxonomy
// without an import cycle; sml re-exports it under its own names.
type Kind uint8

const (
	_ Kind = iota
	KindUnexpectedEof
	KindUnexpectedTlv
	KindShortTlvLength
	KindMidMessageEndMarker
	KindMultibyteTlvReservedType
	KindTlvLengthTooBig
	KindEndOfSmlMessage
	KindUnsupportedTlvType
	KindUnexpectedValue
	KindUnsupportedLen
	KindEndOfList
	KindChecksumMismatch
	KindUnsupportedTag
	KindWrongBufferSize
	KindNoneTlv
	KindCantParseTwice
	KindIo
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEof:
		return "UnexpectedEof"
	case KindUnexpectedTlv:
		return "UnexpectedTlv"
	case KindShortTlvLength:
		return "ShortTlvLength"
	case KindMidMessageEndMarker:
		return "MidMessageEndMarker"
	case KindMultibyteTlvReservedType:
		return "MultibyteTlvReservedType"
	case KindTlvLengthTooBig:
		return "TlvLengthTooBig"
	case KindEndOfSmlMessage:
		return "EndOfSmlMessage"
	case KindUnsupportedTlvType:
		return "UnsupportedTlvType"
	case KindUnexpectedValue:
		return "UnexpectedValue"
	case KindUnsupportedLen:
		return "UnsupportedLen"
	case KindEndOfList:
		return "EndOfList"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindUnsupportedTag:
		return "UnsupportedTag"
	case KindWrongBufferSize:
		return "WrongBufferSize"
	case KindNoneTlv:
		return "NoneTlv"
	case KindCantParseTwice:
		return "CantParseTwice"
	case KindIo:
		return "Io"
	default:
		return "Unknown"
	}
}

// Error is the typed error raised by the decoder. Kind is always set; the
// remaining fields are populated only where the taxonomy calls for a payload.
type Error struct {
	Kind Kind

	// Tag is the unrecognised CHOICE discriminator (KindUnsupportedTag) or
	// the unsupported raw TLV type bits (KindUnsupportedTlvType).
	Tag uint32

	// Len is the offending declared length (KindShortTlvLength, KindUnsupportedLen).
	Len int

	// Remaining is the outstanding skip debt (KindMidMessageEndMarker).
	Remaining int

	// Rec and Calc are the received and computed CRC values (KindChecksumMismatch).
	Rec, Calc uint16

	// Err wraps the underlying reader error (KindIo).
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedTag:
		return fmt.Sprintf("sml: unsupported tag %d", e.Tag)
	case KindUnsupportedTlvType:
		return fmt.Sprintf("sml: unsupported tlv type %d", e.Tag)
	case KindShortTlvLength:
		return fmt.Sprintf("sml: short tlv length %d", e.Len)
	case KindUnsupportedLen:
		return fmt.Sprintf("sml: unsupported length %d", e.Len)
	case KindMidMessageEndMarker:
		return fmt.Sprintf("sml: end marker with %d items still owed", e.Remaining)
	case KindChecksumMismatch:
		return fmt.Sprintf("sml: checksum mismatch: received %#04x, computed %#04x", e.Rec, e.Calc)
	case KindIo:
		return fmt.Sprintf("sml: io: %v", e.Err)
	default:
		return "sml: " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func NewErr(k Kind) *Error { return &Error{Kind: k} }

func WrapIo(err error) *Error { return &Error{Kind: KindIo, Err: err} }

// Sentinel errors for the payload-less kinds. *Error has no Is method, so
// errors.Is only matches these by pointer identity; compare by Kind with
// Is(err, Kind) instead.
var (
	ErrUnexpectedTlv            = NewErr(KindUnexpectedTlv)
	ErrUnexpectedEof            = NewErr(KindUnexpectedEof)
	ErrMultibyteTlvReservedType = NewErr(KindMultibyteTlvReservedType)
	ErrTlvLengthTooBig          = NewErr(KindTlvLengthTooBig)
	ErrEndOfSmlMessage          = NewErr(KindEndOfSmlMessage)
	ErrUnexpectedValue          = NewErr(KindUnexpectedValue)
	ErrEndOfList                = NewErr(KindEndOfList)
	ErrWrongBufferSize          = NewErr(KindWrongBufferSize)
	ErrNoneTlv                  = NewErr(KindNoneTlv)
	ErrCantParseTwice           = NewErr(KindCantParseTwice)

	// ErrInvalidArgument reports a nil reader/writer or invalid configuration,
	// matching the framing teacher's own sentinel of the same name.
	ErrInvalidArgument = errors.New("sml: invalid argument")

	// ErrUnimplementedEscape reports a four-byte escape sequence other than
	// the literal-1B or end-marker case.
	ErrUnimplementedEscape = errors.New("sml: unimplemented escape sequence")
)

// Is reports whether err (or anything it wraps) carries Kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
