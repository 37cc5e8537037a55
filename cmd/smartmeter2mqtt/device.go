// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// AddrType is the BLE address type byte prefixing every received datagram.
type AddrType uint8

const (
	AddrPublic     AddrType = 0x00
	AddrRandom     AddrType = 0x01
	AddrPublicID   AddrType = 0x02
	AddrRandomID   AddrType = 0x03
	AddrUnresolved AddrType = 0xFE
	AddrAnonymous  AddrType = 0xFF
)

func (t AddrType) String() string {
	switch t {
	case AddrPublic:
		return "public"
	case AddrRandom:
		return "random"
	case AddrPublicID:
		return "public_id"
	case AddrRandomID:
		return "random_id"
	case AddrUnresolved:
		return "unresolved"
	case AddrAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("addr_type(%#02x)", uint8(t))
	}
}

// LEAddr identifies a device by its BLE address type and MAC, the key every
// configured device and every received datagram is matched against.
type LEAddr struct {
	AddressType AddrType
	Address     [6]byte
}

func (a LEAddr) String() string {
	return fmt.Sprintf("%s/%02X:%02X:%02X:%02X:%02X:%02X", a.AddressType,
		a.Address[0], a.Address[1], a.Address[2], a.Address[3], a.Address[4], a.Address[5])
}

// parseMAC parses a colon-separated MAC address string into its 6 bytes.
func parseMAC(s string) ([6]byte, error) {
	var out [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return out, fmt.Errorf("smartmeter2mqtt: %q is not a MAC address", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return out, fmt.Errorf("smartmeter2mqtt: %q is not a MAC address: %w", s, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
