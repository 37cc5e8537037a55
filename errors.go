// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import "code.hybscloud.com/sml/tlv"

// Kind and Error are defined in package tlv, the lowest leaf package in this
// module, and re-exported here so callers working at the frame/message level
// never need to import tlv directly. See tlv.Kind for the full taxonomy.
type (
	Kind  = tlv.Kind
	Error = tlv.Error
)

const (
	KindUnexpectedEof            = tlv.KindUnexpectedEof
	KindUnexpectedTlv            = tlv.KindUnexpectedTlv
	KindShortTlvLength           = tlv.KindShortTlvLength
	KindMidMessageEndMarker      = tlv.KindMidMessageEndMarker
	KindMultibyteTlvReservedType = tlv.KindMultibyteTlvReservedType
	KindTlvLengthTooBig          = tlv.KindTlvLengthTooBig
	KindEndOfSmlMessage          = tlv.KindEndOfSmlMessage
	KindUnsupportedTlvType       = tlv.KindUnsupportedTlvType
	KindUnexpectedValue          = tlv.KindUnexpectedValue
	KindUnsupportedLen           = tlv.KindUnsupportedLen
	KindEndOfList                = tlv.KindEndOfList
	KindChecksumMismatch         = tlv.KindChecksumMismatch
	KindUnsupportedTag           = tlv.KindUnsupportedTag
	KindWrongBufferSize          = tlv.KindWrongBufferSize
	KindNoneTlv                  = tlv.KindNoneTlv
	KindCantParseTwice           = tlv.KindCantParseTwice
	KindIo                       = tlv.KindIo
)

func newErr(k Kind) *Error { return tlv.NewErr(k) }

func wrapIo(err error) *Error { return tlv.WrapIo(err) }

var (
	ErrUnexpectedTlv            = tlv.ErrUnexpectedTlv
	ErrUnexpectedEof            = tlv.ErrUnexpectedEof
	ErrMultibyteTlvReservedType = tlv.ErrMultibyteTlvReservedType
	ErrTlvLengthTooBig          = tlv.ErrTlvLengthTooBig
	ErrEndOfSmlMessage          = tlv.ErrEndOfSmlMessage
	ErrUnexpectedValue          = tlv.ErrUnexpectedValue
	ErrEndOfList                = tlv.ErrEndOfList
	ErrWrongBufferSize          = tlv.ErrWrongBufferSize
	ErrNoneTlv                  = tlv.ErrNoneTlv
	ErrCantParseTwice           = tlv.ErrCantParseTwice
	ErrInvalidArgument          = tlv.ErrInvalidArgument
	ErrUnimplementedEscape      = tlv.ErrUnimplementedEscape
)

// Is reports whether err (or anything it wraps) carries Kind k.
func Is(err error, k Kind) bool { return tlv.Is(err, k) }
