// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"code.hybscloud.com/sml/internal/bo"
)

// NonceValue is a 96-bit AEAD nonce read as a little-endian number so
// successive values can be compared for strict monotonicity. 96 bits
// comfortably fits a uint32 high half and a uint64 low half.
type NonceValue struct {
	Hi uint32
	Lo uint64
}

// nonceValueFromBytes reads the 12-byte wire nonce (low 8 bytes, then high 4
// bytes, little-endian per byte group as broadcast by the device) into a
// comparable NonceValue.
func nonceValueFromBytes(b []byte) NonceValue {
	return NonceValue{
		Hi: binary.LittleEndian.Uint32(b[8:12]),
		Lo: binary.LittleEndian.Uint64(b[0:8]),
	}
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v NonceValue) Compare(other NonceValue) int {
	switch {
	case v.Hi != other.Hi:
		if v.Hi < other.Hi {
			return -1
		}
		return 1
	case v.Lo != other.Lo:
		if v.Lo < other.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// NonceStore tracks the highest nonce seen per device, rejecting any replay
// or out-of-order delivery, and signals a background persister whenever it
// changes.
type NonceStore struct {
	mu     sync.Mutex
	values map[LEAddr]NonceValue
	dirty  chan struct{}
}

// NewNonceStore returns an empty store.
func NewNonceStore() *NonceStore {
	return &NonceStore{values: make(map[LEAddr]NonceValue), dirty: make(chan struct{}, 1)}
}

// Check records n for addr if it is strictly greater than the last value
// seen for that device, and returns an error otherwise. A successful check
// wakes the persister.
func (s *NonceStore) Check(addr LEAddr, n NonceValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.values[addr]
	if ok && n.Compare(old) <= 0 {
		return fmt.Errorf("smartmeter2mqtt: replayed or out-of-order nonce for %s", addr)
	}
	s.values[addr] = n
	select {
	case s.dirty <- struct{}{}:
	default:
	}
	return nil
}

// snapshot returns a copy of the current nonce table for the persister to
// serialize without holding the lock during I/O.
func (s *NonceStore) snapshot() map[LEAddr]NonceValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[LEAddr]NonceValue, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// restore replaces the table wholesale, used once at startup to load a
// previously persisted snapshot.
func (s *NonceStore) restore(values map[LEAddr]NonceValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
}

// runPersister saves a snapshot to path every time the store signals it has
// changed, until dirty is closed. It runs as its own goroutine.
func (s *NonceStore) runPersister(path string) {
	for range s.dirty {
		if err := saveNonceFile(path, s.snapshot()); err != nil {
			// Best-effort: a failed write leaves the file at its last saved
			// values, so after a restart nonces accepted since then are not
			// remembered. The next change signals a fresh write.
			continue
		}
	}
}

const nonceRecordSize = 1 + 6 + 4 + 8 // address type, MAC, Hi, Lo

func saveNonceFile(path string, values map[LEAddr]NonceValue) error {
	buf := make([]byte, 0, 4+len(values)*nonceRecordSize)
	var countBuf [4]byte
	bo.Native().PutUint32(countBuf[:], uint32(len(values)))
	buf = append(buf, countBuf[:]...)

	for addr, n := range values {
		buf = append(buf, byte(addr.AddressType))
		buf = append(buf, addr.Address[:]...)
		var hiBuf [4]byte
		bo.Native().PutUint32(hiBuf[:], n.Hi)
		buf = append(buf, hiBuf[:]...)
		var loBuf [8]byte
		bo.Native().PutUint64(loBuf[:], n.Lo)
		buf = append(buf, loBuf[:]...)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadNonceFile(path string) (map[LEAddr]NonceValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[LEAddr]NonceValue), nil
		}
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("smartmeter2mqtt: truncated nonce file")
	}
	count := bo.Native().Uint32(data[0:4])
	data = data[4:]

	out := make(map[LEAddr]NonceValue, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < nonceRecordSize {
			return nil, fmt.Errorf("smartmeter2mqtt: truncated nonce file")
		}
		var addr LEAddr
		addr.AddressType = AddrType(data[0])
		copy(addr.Address[:], data[1:7])
		hi := bo.Native().Uint32(data[7:11])
		lo := bo.Native().Uint64(data[11:19])
		out[addr] = NonceValue{Hi: hi, Lo: lo}
		data = data[nonceRecordSize:]
	}
	return out, nil
}
