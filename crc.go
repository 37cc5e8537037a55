// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

// CRC-16/SML: poly 0x1021, init 0xFFFF, reflected in/out, xorout 0xFFFF.
// Equivalent to the well-known CRC-16/X-25 parameterisation; check value
// 0x906E over "123456789". Folding a correct CRC back in (low byte first)
// leaves Sum16 at the constant 0x0F47. No CRC16 library exists anywhere
// in the reference corpus this module was built from, so the table and the
// digest below are hand-rolled, following the same choice the corpus's own
// FLAC reader makes for its inline CRC digesting (see DESIGN.md).

var crc16Table [256]uint16

func init() {
	const poly = 0x8408 // bit-reflected 0x1021
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for j := 0; j < 8; j++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		crc16Table[i] = crc
	}
}

// CRCDigest accumulates a running CRC-16/SML value over a sequence of
// Update calls.
type CRCDigest struct {
	crc uint16
}

// NewCRCDigest returns a digest pre-loaded with the CRC-16/SML initial value.
func NewCRCDigest() *CRCDigest {
	return &CRCDigest{crc: 0xFFFF}
}

// Reset restores the digest to its initial state.
func (d *CRCDigest) Reset() { d.crc = 0xFFFF }

// Update folds p into the running digest.
func (d *CRCDigest) Update(p []byte) {
	crc := d.crc
	for _, b := range p {
		crc = (crc >> 8) ^ crc16Table[byte(crc)^b]
	}
	d.crc = crc
}

// Sum16 returns the finalized CRC-16/SML value for everything folded in so far.
// It does not reset the digest.
func (d *CRCDigest) Sum16() uint16 {
	return d.crc ^ 0xFFFF
}
