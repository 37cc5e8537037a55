// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// TimeKind discriminates the SML_Time choice.
type TimeKind uint8

const (
	TimeSecIndex TimeKind = iota + 1
	TimeTimestamp
	TimeLocalTimestamp
)

// Time is the decoded SML_Time choice: a raw meter tick count, a Unix
// timestamp, or a timestamp plus timezone offsets.
type Time struct {
	Kind           TimeKind
	SecIndex       uint32
	Timestamp      uint32
	LocalTimestamp LocalTimestamp
}

// LocalTimestamp is the SML_TimestampLocal sequence.
type LocalTimestamp struct {
	Timestamp    uint32
	LocalOffset  int16
	SeasonOffset int16
}

func readOptionalTime(list *tlv.List) (*Time, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	if isNone(item) {
		return nil, nil
	}
	return decodeTime(item)
}

func decodeTime(item *tlv.Item) (*Time, error) {
	choice, err := item.AsList()
	if err != nil {
		return nil, err
	}
	tagItem, err := choice.Next()
	if err != nil {
		return nil, err
	}
	tag, err := tagItem.IntoU8()
	if err != nil {
		return nil, err
	}
	dataItem, err := choice.Next()
	if err != nil {
		return nil, err
	}

	t := &Time{Kind: TimeKind(tag)}
	switch TimeKind(tag) {
	case TimeSecIndex:
		v, err := dataItem.IntoU32Relaxed()
		if err != nil {
			return nil, err
		}
		t.SecIndex = v
	case TimeTimestamp:
		v, err := dataItem.IntoU32Relaxed()
		if err != nil {
			return nil, err
		}
		t.Timestamp = v
	case TimeLocalTimestamp:
		sub, err := dataItem.AsList()
		if err != nil {
			return nil, err
		}
		tsItem, err := sub.Next()
		if err != nil {
			return nil, err
		}
		ts, err := tsItem.IntoU32Relaxed()
		if err != nil {
			return nil, err
		}
		loItem, err := sub.Next()
		if err != nil {
			return nil, err
		}
		lo, err := loItem.IntoI16()
		if err != nil {
			return nil, err
		}
		soItem, err := sub.Next()
		if err != nil {
			return nil, err
		}
		so, err := soItem.IntoI16()
		if err != nil {
			return nil, err
		}
		sub.SkipRest()
		t.LocalTimestamp = LocalTimestamp{Timestamp: ts, LocalOffset: lo, SeasonOffset: so}
	default:
		if err := dataItem.Discard(); err != nil {
			return nil, err
		}
	}
	choice.SkipRest()
	return t, nil
}
