// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sml

import "code.hybscloud.com/iox"

// These are re-exported so callers can reference the semantic control-flow
// errors without importing iox directly, matching the framing teacher's own
// package-level aliases.
var (
	// ErrWouldBlock means "no further progress without waiting". It is an
	// expected, non-failure control-flow signal for non-blocking I/O.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means "this completion is usable and more completions will
	// follow". The caller should process what it has and call again.
	ErrMore = iox.ErrMore
)
