// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import "io"

// MessageCRCReader is a thin passthrough over a FramingReader that digests
// every byte it hands upward into an independent per-message CRC-16
// register. Reset begins a new message; Finalize snapshots the current
// digest and restarts it for the next message.
type MessageCRCReader struct {
	inner  io.Reader
	digest *CRCDigest
}

// NewMessageCRCReader wraps inner (normally a *FramingReader).
func NewMessageCRCReader(inner io.Reader) *MessageCRCReader {
	return &MessageCRCReader{inner: inner, digest: NewCRCDigest()}
}

// Read implements io.Reader, folding every successfully-read byte into the
// running message digest before returning it to the caller.
func (m *MessageCRCReader) Read(p []byte) (int, error) {
	n, err := m.inner.Read(p)
	if n > 0 {
		m.digest.Update(p[:n])
	}
	return n, err
}

// Reset restarts the digest for a new message.
func (m *MessageCRCReader) Reset() { m.digest.Reset() }

// Finalize returns the digest accumulated since construction or the last
// Reset/Finalize call, then restarts the digest.
func (m *MessageCRCReader) Finalize() uint16 {
	sum := m.digest.Sum16()
	m.digest.Reset()
	return sum
}

// Ended forwards the underlying FramingReader's end-of-frame flag, if inner
// supports it.
func (m *MessageCRCReader) Ended() bool {
	type ender interface{ Ended() bool }
	if e, ok := m.inner.(ender); ok {
		return e.Ended()
	}
	return false
}
