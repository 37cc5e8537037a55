// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

func readOctetString(list *tlv.List) ([]byte, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, item.Len)
	if err := item.ReadString(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readOptionalOctetString(list *tlv.List) ([]byte, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	if isNone(item) {
		return nil, nil
	}
	buf := make([]byte, item.Len)
	if err := item.ReadString(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readOptionalU8(list *tlv.List) (*uint8, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	if isNone(item) {
		return nil, nil
	}
	v, err := item.IntoU8()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptionalI8(list *tlv.List) (*int8, error) {
	item, err := list.Next()
	if err != nil {
		return nil, err
	}
	if isNone(item) {
		return nil, nil
	}
	v, err := item.IntoI8()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
