// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import (
	"encoding/binary"
	"io"
	"runtime"
	"time"

	"code.hybscloud.com/sml/tlv"
	"code.hybscloud.com/sml/types"
)

// Callback receives frame and message boundaries as a Session decodes a
// stream. FrameStart fires once a frame's opening marker has been found;
// MessageReceived fires once per message inside that frame, after the whole
// message body has been decoded into msg (a registered tag without a
// concrete struct arrives with Body.Raw set and its data already skipped);
// the callback is not handed a cursor over the body. FrameFinished reports
// true when the frame decoded with every message CRC and the frame CRC
// checking out, and false after any protocol-level error in the frame.
type Callback interface {
	FrameStart()
	MessageReceived(msg *types.Message) error
	FrameFinished(valid bool)
}

type sessionState uint8

const (
	stateWaitStart sessionState = iota
	stateFrameBody
)

// Session drives one raw byte stream through start detection, framing,
// per-message CRC verification, and schema decoding, invoking a Callback at
// each boundary. It is pull-driven and resumable: Run can be called
// repeatedly on a non-blocking reader, picking up exactly where the previous
// call returned ErrWouldBlock or ErrMore.
type Session struct {
	raw  io.Reader
	cb   Callback
	opts Options

	state    sessionState
	detector *StartDetector

	fr  *FramingReader
	mcr *MessageCRCReader
	rd  *tlv.Reader
}

// NewSession returns a Session reading frames from raw and reporting them to cb.
func NewSession(raw io.Reader, cb Callback, opts ...Option) *Session {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{raw: raw, cb: cb, opts: o, detector: NewStartDetector(raw)}
}

// RunBlocking calls Run repeatedly, waiting out ErrWouldBlock/ErrMore
// according to the session's RetryDelay option instead of returning them to
// the caller. Any other error -- including a would-block with a negative
// RetryDelay, the default -- returns immediately.
func (s *Session) RunBlocking() error {
	for {
		err := s.Run()
		if err != ErrWouldBlock && err != ErrMore {
			return err
		}
		if s.opts.RetryDelay < 0 {
			return err
		}
		if s.opts.RetryDelay == 0 {
			runtime.Gosched()
			continue
		}
		time.Sleep(s.opts.RetryDelay)
	}
}

// Run decodes as many frames as are currently available, returning
// ErrWouldBlock or ErrMore when the underlying reader has no more data to
// offer right now. Any other non-nil return is fatal: the stream position is
// no longer well defined and the Session must not be reused.
func (s *Session) Run() error {
	for {
		switch s.state {
		case stateWaitStart:
			if err := s.detector.Wait(); err != nil {
				return err
			}
			s.cb.FrameStart()
			s.fr = NewFramingReader(s.raw)
			s.fr.limit = s.opts.ReadLimit
			s.mcr = NewMessageCRCReader(s.fr)
			s.rd = tlv.NewReader(s.mcr)
			s.state = stateFrameBody

		case stateFrameBody:
			valid, err := s.runFrameBody()
			if err != nil {
				return err
			}
			s.cb.FrameFinished(valid)
			s.detector.Reset()
			s.state = stateWaitStart
		}
	}
}

// runFrameBody decodes messages until the frame ends or a protocol-level
// error (a bad frame/message CRC, a malformed TLV header, and the like)
// shows the frame is corrupt. Protocol-level errors are reported as a false
// FrameFinished rather than propagated, so the session resynchronizes on
// the next opening marker and keeps decoding the stream that follows a
// damaged frame. Would-block/more and I/O errors propagate unchanged: the
// stream position is still well defined for would-block/more, and not at
// all for an I/O error, so the caller must see those directly.
func (s *Session) runFrameBody() (valid bool, err error) {
	for !s.fr.Ended() {
		if err := s.decodeMessage(); err != nil {
			if err == ErrWouldBlock || err == ErrMore {
				return false, err
			}
			if protoErr, ok := err.(*Error); ok && protoErr.Kind != KindIo {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// decodeMessage reads one 6-field message list: transaction_id (discarded),
// group_no, abort_on_error, message_body (handed to the callback), crc16,
// and the end-of-message marker. It verifies the message CRC, byte-swapping
// the transmitted value as the wire format requires.
func (s *Session) decodeMessage() error {
	s.mcr.Reset()
	list, err := s.rd.ReadList()
	if err != nil {
		return err
	}

	msg, err := types.DecodeMessage(list)
	if err != nil {
		return err
	}

	if err := s.cb.MessageReceived(msg); err != nil {
		return err
	}

	// Discharge whatever of message_body DecodeMessage left as pending-skip
	// debt (a Raw variant's data, fields a decoder skipped), then snapshot
	// the message digest --
	// before reading the crc16 field itself, so its own header and value
	// bytes are never folded into the sum they are compared against.
	if err := s.rd.DischargePending(); err != nil {
		return err
	}
	calc := s.mcr.Finalize()

	crcItem, err := list.Next()
	if err != nil {
		return err
	}
	recRaw, err := crcItem.IntoU16()
	if err != nil {
		return err
	}
	rec := byteSwap16(recRaw)
	if rec != calc {
		return &Error{Kind: KindChecksumMismatch, Rec: rec, Calc: calc}
	}

	if _, err := list.Next(); err != nil { // end-of-message marker
		return err
	}
	if more, err := list.Next(); err != nil {
		return err
	} else if more != nil {
		return ErrUnexpectedTlv
	}
	return nil
}

func byteSwap16(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.LittleEndian.Uint16(b[:])
}
