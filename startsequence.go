// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import "io"

// StartDetector scans a raw byte stream for the 8-byte frame opening marker
// 1B 1B 1B 1B 01 01 01 01. A run of four or more 0x1B bytes followed by
// exactly four 0x01 bytes is accepted; any 0x1B seen while counting the 0x01
// run only resets that run, not the leading 0x1B count.
type StartDetector struct {
	r io.Reader

	leading int // count of consecutive 0x1B seen, capped at 4
	tail    int // count of consecutive 0x01 seen since leading==4
}

// NewStartDetector returns a detector reading from r.
func NewStartDetector(r io.Reader) *StartDetector {
	return &StartDetector{r: r}
}

// Reset clears detector state so a fresh marker search can begin.
func (d *StartDetector) Reset() {
	d.leading = 0
	d.tail = 0
}

// Wait consumes bytes from the underlying reader one at a time until the
// full 8-byte marker has been observed. It returns ErrWouldBlock/ErrMore
// unchanged when the underlying reader signals them, resuming from where it
// left off on the next call. Any other reader error is fatal.
func (d *StartDetector) Wait() error {
	var b [1]byte
	for {
		n, err := d.r.Read(b[:])
		if n == 1 {
			d.step(b[0])
			if d.leading >= 4 && d.tail == 4 {
				d.Reset()
				return nil
			}
		}
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
}

func (d *StartDetector) step(b byte) {
	switch {
	case d.leading < 4:
		if b == 0x1B {
			d.leading++
		} else {
			d.leading = 0
			d.tail = 0
		}
	case b == 0x01:
		d.tail++
	case b == 0x1B:
		// Stray 1B while counting the 01 run: stay at leading>=4, restart tail only.
		d.tail = 0
	default:
		d.leading = 0
		d.tail = 0
	}
}
