// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import "time"

// Options configures a Session.
type Options struct {
	// ReadLimit caps the total decoded payload size (bytes) of a single
	// frame. Zero means no limit. A frame exceeding the limit is reported
	// as a failed frame (FrameFinished(false)) like any other malformed
	// frame, and the session resynchronizes on the next opening marker.
	ReadLimit int

	// RetryDelay controls how RunBlocking waits out ErrWouldBlock/ErrMore
	// from the underlying reader:
	//   - negative: nonblock, return the error immediately (Run's own
	//     default behavior; RunBlocking is never useful with this setting)
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	RetryDelay time.Duration
}

var defaultOptions = Options{
	ReadLimit:  0,
	RetryDelay: -1,
}

// Option configures a Session at construction time.
type Option func(*Options)

// WithReadLimit caps a frame's decoded payload size in bytes.
func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithRetryDelay sets the wait policy RunBlocking uses when Run returns
// ErrWouldBlock or ErrMore.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) in RunBlocking.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock is the default: RunBlocking returns ErrWouldBlock/ErrMore as
// soon as Run does, without retrying.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}
