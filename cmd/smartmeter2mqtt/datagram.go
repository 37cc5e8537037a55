// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"code.hybscloud.com/sml"
	"code.hybscloud.com/sml/obis"
)

// Datagram prefix layout, matching what the meters actually broadcast:
//
//	1 byte  address type
//	6 bytes MAC, wire order reversed relative to LEAddr.Address
//	2 bytes company id (ignored)
//	12 bytes AEAD nonce
//	rest    ciphertext
const (
	prefixAddrType    = 1
	prefixMAC         = 6
	prefixCompanyID   = 2
	prefixNonce       = 12
	datagramMinLength = prefixAddrType + prefixMAC + prefixCompanyID + prefixNonce
)

// frameCounter wraps an obis.Callback so the caller can tell a clean
// end-of-datagram apart from a session that never produced a frame.
type frameCounter struct {
	*obis.Callback
	frames int
}

func (f *frameCounter) FrameFinished(valid bool) {
	f.Callback.FrameFinished(valid)
	if valid {
		f.frames++
	}
}

// handleDatagram parses one received UDP payload, checks and records its
// nonce, decrypts it, and decodes the plaintext as a single SML
// transmission. Unlike the continuous serial stream this decoder was
// originally built for, a datagram carries exactly one frame: the glue
// below runs the session until it delivers that frame, then treats running
// out of bytes while scanning for a second one as expected rather than an
// error.
func handleDatagram(devices map[LEAddr]*device, nonces *NonceStore, logger *zap.Logger, buf []byte) error {
	if len(buf) < datagramMinLength {
		return fmt.Errorf("smartmeter2mqtt: datagram too short: %d bytes", len(buf))
	}

	addrType := AddrType(buf[0])
	var mac [6]byte
	copy(mac[:], buf[1:7])
	for i, j := 0, len(mac)-1; i < j; i, j = i+1, j-1 {
		mac[i], mac[j] = mac[j], mac[i]
	}
	leaddr := LEAddr{AddressType: addrType, Address: mac}

	rest := buf[1+prefixMAC:]
	rest = rest[prefixCompanyID:] // company id, unused

	nonceBytes := rest[:prefixNonce]
	ciphertext := rest[prefixNonce:]

	nonceValue := nonceValueFromBytes(nonceBytes)
	if err := nonces.Check(leaddr, nonceValue); err != nil {
		return err
	}

	dev, ok := devices[leaddr]
	if !ok {
		return fmt.Errorf("smartmeter2mqtt: unknown device %s", leaddr)
	}

	plaintext, err := dev.cipher.Open(nil, nonceBytes, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("smartmeter2mqtt: device %s: can't decrypt: %w", leaddr, err)
	}

	cb := &frameCounter{Callback: &obis.Callback{Publisher: newLogPublisher(leaddr, logger), Logger: logger}}
	session := sml.NewSession(bytes.NewReader(plaintext), cb)
	if err := session.Run(); err != nil {
		if cb.frames == 0 {
			return fmt.Errorf("smartmeter2mqtt: device %s: %w", leaddr, err)
		}
	}
	return nil
}
