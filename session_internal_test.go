// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import (
	"bytes"
	"encoding/binary"
	"testing"

	"code.hybscloud.com/sml/types"
)

// header builds a single-byte TLV header: 3-bit type in bits 4-6, 4-bit
// length (or item count, for a list) in bits 0-3.
func header(ty byte, length int) byte { return ty<<4 | byte(length) }

const (
	bitsString   = 0b000
	bitsInteger  = 0b101
	bitsUnsigned = 0b110
	bitsList     = 0b111
)

// messageBodyTag0 is a minimal message_body choice: tag 0x0100
// (SML_PublicOpen.Req -- registered, but the types package has no
// concrete struct for it, so decodeMessageBody takes its Raw fallback) with
// an empty data item.
func messageBodyTag0() []byte {
	return []byte{
		header(bitsList, 2),
		header(bitsUnsigned, 3), 0x01, 0x00, // tag 0x0100
		header(bitsString, 0), // data: zero-length string sentinel
	}
}

// buildMessage assembles one complete 6-field message list: txnField and
// bodyField are already-encoded TLV bytes (header+payload) for the
// transaction_id and message_body fields respectively. group_no and
// abort_on_error are both fixed at 0.
//
// The message CRC covers every byte of the list through message_body and
// nothing past it -- decodeMessage snapshots the digest before it ever reads
// the crc16 field -- so the expected value is computed directly over that
// same prefix rather than solved for.
func buildMessage(t *testing.T, txnField, bodyField []byte) []byte {
	t.Helper()
	var prefix bytes.Buffer
	prefix.WriteByte(header(bitsList, 6))
	prefix.Write(txnField)
	prefix.WriteByte(header(bitsUnsigned, 2))
	prefix.WriteByte(0x00) // group_no
	prefix.WriteByte(header(bitsUnsigned, 2))
	prefix.WriteByte(0x00) // abort_on_error
	prefix.Write(bodyField)

	d := NewCRCDigest()
	d.Update(prefix.Bytes())
	calc := d.Sum16()

	var msg bytes.Buffer
	msg.Write(prefix.Bytes())
	msg.WriteByte(header(bitsUnsigned, 3)) // crc16 header
	var crcBytes [2]byte
	binary.LittleEndian.PutUint16(crcBytes[:], calc)
	msg.Write(crcBytes[:])
	msg.WriteByte(header(bitsString, 0)) // end-of-message marker
	return msg.Bytes()
}

// escapeWire doubles every 4-byte window of padded that equals the literal
// escape quad, matching the wire-level transformation FramingReader expects
// to undo.
func escapeWire(padded []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(padded); i += 4 {
		w := padded[i : i+4]
		out.Write(w)
		if [4]byte(w) == escQuad {
			out.Write(w)
		}
	}
	return out.Bytes()
}

// buildFrame assembles one complete frame (opening marker through the
// trailing CRC bytes) from a concatenation of already-built messages. The
// frame CRC is computed by running the real FramingReader once over a draft
// with a placeholder CRC, reading its KindChecksumMismatch error for the
// correct value -- the frame CRC is not self-referential, so this
// sidesteps having to reimplement advance's
// escape/hold/trim bookkeeping by hand.
func buildFrame(t *testing.T, messages ...[]byte) []byte {
	t.Helper()
	var payload bytes.Buffer
	for _, m := range messages {
		payload.Write(m)
	}
	pay := payload.Bytes()
	fill := (4 - len(pay)%4) % 4
	padded := append(append([]byte{}, pay...), make([]byte, fill)...)
	wire := escapeWire(padded)

	draft := append([]byte{}, openingMarker[:]...)
	draft = append(draft, wire...)
	draft = append(draft, escQuad[:]...)
	draft = append(draft, 0x1A, byte(fill), 0x00, 0x00) // placeholder CRC

	fr := NewFramingReader(bytes.NewReader(draft[len(openingMarker):]))
	var buf [256]byte
	var finalErr error
	for {
		_, err := fr.Read(buf[:])
		if err != nil {
			finalErr = err
			break
		}
	}
	protoErr, ok := finalErr.(*Error)
	if !ok || protoErr.Kind != KindChecksumMismatch {
		t.Fatalf("buildFrame: want checksum mismatch against placeholder, got %v", finalErr)
	}

	final := append([]byte{}, draft...)
	binary.LittleEndian.PutUint16(final[len(final)-2:], protoErr.Calc)
	return final
}

// recordingCallback implements Callback, recording every boundary event so
// tests can assert on the exact sequence Session.Run produced.
type recordingCallback struct {
	starts   int
	messages []*types.Message
	finishes []bool
}

func (r *recordingCallback) FrameStart() { r.starts++ }

func (r *recordingCallback) MessageReceived(msg *types.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingCallback) FrameFinished(valid bool) { r.finishes = append(r.finishes, valid) }

// runUntilDrained drives Run to completion against a finite byte slice,
// treating the inevitable end-of-stream error as success.
func runUntilDrained(t *testing.T, s *Session) {
	t.Helper()
	err := s.Run()
	if err == nil {
		return
	}
	if protoErr, ok := err.(*Error); ok && protoErr.Kind == KindIo {
		return
	}
	t.Fatalf("Run: unexpected error %v", err)
}

func TestSmallestValidFrameDecodesOneMessage(t *testing.T) {
	msg := buildMessage(t, []byte{header(bitsString, 2), 'T'}, messageBodyTag0())
	frame := buildFrame(t, msg)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(frame), cb)
	runUntilDrained(t, s)

	if cb.starts != 1 {
		t.Fatalf("got %d FrameStart calls, want 1", cb.starts)
	}
	if len(cb.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(cb.messages))
	}
	if cb.messages[0].Body == nil || !cb.messages[0].Body.Raw {
		t.Fatalf("got %+v, want a Raw message body (registered but unimplemented tag)", cb.messages[0].Body)
	}
	if len(cb.finishes) != 1 || !cb.finishes[0] {
		t.Fatalf("got finishes %v, want [true]", cb.finishes)
	}
}

// TestTamperedMessageCRCIsRejected flips every bit of one byte of the transmitted message
// CRC built from an independently-computed digest (see buildMessage). This
// only catches a regression back to the self-referential bug decodeMessage
// used to have: a digest that folds in the crc16 field's own bytes before
// finalizing accepts any value, including a tampered one, because the field
// is solved for rather than checked against.
func TestTamperedMessageCRCIsRejected(t *testing.T) {
	msg := buildMessage(t, []byte{header(bitsString, 2), 'T'}, messageBodyTag0())
	msg[len(msg)-2] ^= 0xFF // flip every bit of one byte of the transmitted crc16 field
	frame := buildFrame(t, msg)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(frame), cb)
	runUntilDrained(t, s)

	if len(cb.finishes) != 1 || cb.finishes[0] {
		t.Fatalf("got finishes %v, want a single failed frame", cb.finishes)
	}
}

func TestFillPaddingIsStrippedFromOutputButStillDigestedAndFrameValidates(t *testing.T) {
	// transaction_id's payload length (6 bytes) pushes total frame payload
	// length to 21 bytes, not a multiple of 4, forcing buildFrame to add
	// genuine fill padding (3 bytes) -- exercising the trimmed-held-window
	// path in FramingReader.advance rather than the fill=0 case.
	txn := append([]byte{header(bitsString, 7)}, []byte{1, 2, 3, 4, 5, 6}...)
	msg := buildMessage(t, txn, messageBodyTag0())
	frame := buildFrame(t, msg)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(frame), cb)
	runUntilDrained(t, s)

	if len(cb.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(cb.messages))
	}
	if len(cb.finishes) != 1 || !cb.finishes[0] {
		t.Fatalf("got finishes %v, want [true]", cb.finishes)
	}
}

func TestLiteralEscapeQuadInPayloadIsUnescapedTransparently(t *testing.T) {
	// transaction_id's payload is built so its last 4 bytes land exactly on
	// a frame-payload window boundary and equal the literal escape quad;
	// buildFrame's escapeWire doubles that window on the wire the same way
	// a real sender would, and the decoder must hand back the single,
	// undoubled quad as part of the field's value.
	txn := []byte{header(bitsString, 7), 0xAA, 0xBB, 0x1B, 0x1B, 0x1B, 0x1B}
	msg := buildMessage(t, txn, messageBodyTag0())
	frame := buildFrame(t, msg)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(frame), cb)
	runUntilDrained(t, s)

	if len(cb.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(cb.messages))
	}
	if len(cb.finishes) != 1 || !cb.finishes[0] {
		t.Fatalf("got finishes %v, want [true] -- escape sequence must not corrupt the frame CRC", cb.finishes)
	}
}

func TestBadFrameCRCResyncsOnNextFrame(t *testing.T) {
	good1 := buildFrame(t, buildMessage(t, []byte{header(bitsString, 2), 'T'}, messageBodyTag0()))
	good2 := buildFrame(t, buildMessage(t, []byte{header(bitsString, 2), 'U'}, messageBodyTag0()))

	corrupt := append([]byte{}, good1...)
	corrupt[len(corrupt)-1] ^= 0xFF // flip every bit of one byte of the transmitted frame CRC

	var stream bytes.Buffer
	stream.Write(corrupt)
	stream.Write(good2)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(stream.Bytes()), cb)
	runUntilDrained(t, s)

	if len(cb.finishes) != 2 {
		t.Fatalf("got %d FrameFinished calls, want 2: %v", len(cb.finishes), cb.finishes)
	}
	if cb.finishes[0] {
		t.Fatalf("first frame should have failed its CRC check")
	}
	if !cb.finishes[1] {
		t.Fatalf("second frame should have decoded cleanly after resync")
	}
	if len(cb.messages) != 1 {
		t.Fatalf("got %d messages, want 1 (only the valid frame delivers one)", len(cb.messages))
	}
}

func TestReadLimitFailsOversizedFrame(t *testing.T) {
	txn := append([]byte{header(bitsString, 10)}, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}...)
	msg := buildMessage(t, txn, messageBodyTag0())
	frame := buildFrame(t, msg)

	cb := &recordingCallback{}
	s := NewSession(bytes.NewReader(frame), cb, WithReadLimit(4))
	runUntilDrained(t, s)

	if len(cb.finishes) != 1 || cb.finishes[0] {
		t.Fatalf("got finishes %v, want a single failed frame", cb.finishes)
	}
}
