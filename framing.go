// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import (
	"encoding/binary"
	"io"
)

var escQuad = [4]byte{0x1B, 0x1B, 0x1B, 0x1B}

var openingMarker = [8]byte{0x1B, 0x1B, 0x1B, 0x1B, 0x01, 0x01, 0x01, 0x01}

// FramingReader un-escapes one SML frame at a time, strips fill padding,
// and verifies the frame CRC. It reads from a raw byte stream positioned
// immediately after the 8-byte opening marker (see StartDetector) and
// presents a logical, CRC-validated payload stream to the layer above.
//
// The reader holds back at most one confirmed-plain 4-byte window at a
// time: a window is only released to the caller once the following window
// has shown it is not the start of an escape/end sequence. That is what
// lets fill padding be trimmed from the tail of the last payload window
// without ever buffering more than two windows at once. Only the CRC
// digest spans the whole frame.
type FramingReader struct {
	raw    io.Reader
	digest *CRCDigest

	inEsc bool
	ended bool

	win    [4]byte
	winLen int

	held     [4]byte
	heldLen  int
	haveHeld bool

	out    []byte
	outOff int
	outBuf [8]byte

	// limit caps total decoded payload bytes for the frame; zero means
	// unlimited. emitted tracks bytes handed to the caller so far.
	limit   int
	emitted int
}

// NewFramingReader returns a FramingReader reading from raw, which must be
// positioned immediately after the opening marker. The frame CRC digest is
// pre-seeded with the 8-byte opening marker.
func NewFramingReader(raw io.Reader) *FramingReader {
	fr := &FramingReader{raw: raw, digest: NewCRCDigest()}
	fr.digest.Update(openingMarker[:])
	return fr
}

// Ended reports whether the frame has been fully delivered (end marker seen
// and verified).
func (fr *FramingReader) Ended() bool { return fr.ended }

// Read implements io.Reader. It returns ErrWouldBlock/ErrMore unchanged from
// the underlying reader; any other error (including a failed CRC or a
// malformed escape) is a *Error and the frame must be abandoned.
func (fr *FramingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	total := 0
	for total < len(p) {
		if fr.outOff < len(fr.out) {
			n := copy(p[total:], fr.out[fr.outOff:])
			fr.outOff += n
			total += n
			continue
		}
		if fr.ended {
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF
		}
		if err := fr.advance(); err != nil {
			if total > 0 && (err == ErrWouldBlock || err == ErrMore) {
				return total, nil
			}
			return total, err
		}
	}
	return total, nil
}

// fillWindow reads exactly 4 bytes into fr.win, resuming across calls.
func (fr *FramingReader) fillWindow() error {
	for fr.winLen < 4 {
		n, err := fr.raw.Read(fr.win[fr.winLen:4])
		fr.winLen += n
		if err != nil {
			if err == ErrWouldBlock || err == ErrMore {
				return err
			}
			if err == io.EOF {
				return wrapIo(io.ErrUnexpectedEOF)
			}
			return wrapIo(err)
		}
		if n == 0 {
			return wrapIo(io.ErrNoProgress)
		}
	}
	return nil
}

func (fr *FramingReader) consumeWindow() [4]byte {
	w := fr.win
	fr.winLen = 0
	return w
}

func (fr *FramingReader) emit(chunks ...[]byte) {
	n := 0
	for _, c := range chunks {
		n += copy(fr.outBuf[n:], c)
	}
	fr.out = fr.outBuf[:n]
	fr.outOff = 0
	fr.emitted += n
}

// checkLimit reports a protocol error once emitted payload bytes exceed the
// configured limit. Called right after every emit in advance.
func (fr *FramingReader) checkLimit() error {
	if fr.limit > 0 && fr.emitted > fr.limit {
		return newErr(KindTlvLengthTooBig)
	}
	return nil
}

// advance runs decision steps until either output bytes are staged, the
// frame ends, or the underlying reader signals would-block/more/error.
func (fr *FramingReader) advance() error {
	for {
		if err := fr.fillWindow(); err != nil {
			return err
		}
		cur := fr.consumeWindow()

		if !fr.inEsc && cur == escQuad {
			// Escape introducer: counts toward the CRC even though it
			// never reaches the logical payload. Whatever window is
			// still held precedes it on the wire, so it must be folded
			// in first -- CRC coverage follows read order, not
			// emission order.
			if fr.haveHeld {
				fr.digest.Update(fr.held[:fr.heldLen])
			}
			fr.digest.Update(cur[:])
			fr.inEsc = true
			continue
		}

		if fr.inEsc {
			switch {
			case cur == escQuad:
				// Literal run of four 0x1B bytes in the payload. Any held
				// window was already folded into the digest above, when
				// the escape introducer was seen.
				fr.digest.Update(cur[:])
				fr.inEsc = false
				if fr.haveHeld {
					fr.emit(fr.held[:fr.heldLen], cur[:])
					fr.haveHeld = false
					return fr.checkLimit()
				}
				fr.emit(cur[:])
				return fr.checkLimit()

			case cur[0] == 0x1A:
				fill := int(cur[1])
				if fill > 3 {
					return newErr(KindUnsupportedLen)
				}
				if !fr.haveHeld {
					if fill > 0 {
						return newErr(KindShortTlvLength)
					}
				} else if fill > fr.heldLen {
					return newErr(KindShortTlvLength)
				}
				// The held window (full 4 bytes, fill included) was already
				// folded into the digest above, when the escape introducer
				// was seen; only the trailing marker bytes fold in here.
				// Fill is trimmed from the emitted payload below, not from
				// what was digested.
				trimmed := 0
				if fr.haveHeld {
					trimmed = fr.heldLen - fill
				}
				fr.digest.Update(cur[0:2])
				rec := binary.LittleEndian.Uint16(cur[2:4])
				calc := fr.digest.Sum16()
				if rec != calc {
					return &Error{Kind: KindChecksumMismatch, Rec: rec, Calc: calc}
				}
				fr.ended = true
				if fr.haveHeld {
					fr.emit(fr.held[:trimmed])
					fr.haveHeld = false
					return fr.checkLimit()
				}
				return nil

			default:
				return ErrUnimplementedEscape
			}
		}

		// Normal case: cur is confirmed plain only once the window after
		// it is known not to start an escape sequence -- which is only
		// discoverable on a later call. Hand off any previously held
		// window now and hold cur in its place.
		if fr.haveHeld {
			fr.digest.Update(fr.held[:fr.heldLen])
			fr.emit(fr.held[:fr.heldLen])
			fr.held = cur
			fr.heldLen = 4
			return fr.checkLimit()
		}
		fr.held = cur
		fr.heldLen = 4
		fr.haveHeld = true
	}
}
