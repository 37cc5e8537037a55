// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// ListEntry is one SML_ListEntry: a single OBIS record.
type ListEntry struct {
	ObjName        []byte // the 6-byte OBIS code
	Status         *Value
	ValTime        *Time
	Unit           *uint8
	Scaler         *int8
	Value          *Value
	ValueSignature []byte
}

func decodeListEntry(item *tlv.Item) (*ListEntry, error) {
	list, err := item.AsList()
	if err != nil {
		return nil, err
	}
	e := &ListEntry{}

	objName, err := readOctetString(list)
	if err != nil {
		return nil, err
	}
	e.ObjName = objName

	status, err := readOptionalValue(list)
	if err != nil {
		return nil, err
	}
	e.Status = status

	valTime, err := readOptionalTime(list)
	if err != nil {
		return nil, err
	}
	e.ValTime = valTime

	unit, err := readOptionalU8(list)
	if err != nil {
		return nil, err
	}
	e.Unit = unit

	scaler, err := readOptionalI8(list)
	if err != nil {
		return nil, err
	}
	e.Scaler = scaler

	value, err := readValue(list)
	if err != nil {
		return nil, err
	}
	e.Value = value

	sig, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	e.ValueSignature = sig

	list.SkipRest()
	return e, nil
}

// decodeList reads an SML_List (a Sequence Of ListEntry) to exhaustion.
func decodeList(item *tlv.Item) ([]*ListEntry, error) {
	outer, err := item.AsList()
	if err != nil {
		return nil, err
	}
	entries := make([]*ListEntry, 0, outer.Len())
	for {
		entryItem, err := outer.Next()
		if err != nil {
			return nil, err
		}
		if entryItem == nil {
			break
		}
		e, err := decodeListEntry(entryItem)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
