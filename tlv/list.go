// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tlv

// List is a cursor over the declared item count of one TLV list. Next
// yields items one at a time; Skip and SkipRest hand unconsumed items back
// to the reader as pending-skip debt instead of reading them directly.
//
// A List must either be driven to exhaustion (Next returning nil) or have
// SkipRest called on it before the underlying Reader reads another header;
// the schema layer built on top of this package enforces that discipline on
// every field it does not itself consume.
type List struct {
	rd        *Reader
	remaining int
}

// Len returns the number of items not yet yielded by Next.
func (l *List) Len() int { return l.remaining }

// Next reads the next item's header, discharging any debt left behind by a
// prior item first. It returns (nil, nil) once the list is exhausted.
func (l *List) Next() (*Item, error) {
	if l.remaining <= 0 {
		return nil, nil
	}
	if err := l.rd.skipNow(); err != nil {
		return nil, err
	}
	ty, length, err := l.rd.readHeaderRaw()
	if err != nil {
		if err == ErrEndOfSmlMessage {
			// A zero-length string in list position is the SML "optional
			// field not present" encoding; surface it as a done, empty item
			// so typed accessors can report None without a special case.
			l.remaining--
			return &Item{rd: l.rd, Type: TypeString, Len: 0, done: true}, nil
		}
		return nil, err
	}
	l.remaining--
	return &Item{rd: l.rd, Type: ty, Len: length}, nil
}

// Skip adds n items to the reader's pending-skip debt instead of reading
// them, and reduces the list's own remaining count by n.
func (l *List) Skip(n int) {
	if n <= 0 {
		return
	}
	l.rd.remainingTLVs += n
	l.remaining -= n
}

// SkipRest hands every item this list has not yet yielded to the reader's
// pending-skip debt.
func (l *List) SkipRest() {
	if l.remaining > 0 {
		l.Skip(l.remaining)
	}
}
