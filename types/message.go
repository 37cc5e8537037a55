// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package types is the generated-style schema layer above package tlv: one
// accessor per SML structure, each reading its fields in declared order and
// skipping whatever it does not itself consume.
package types

import "code.hybscloud.com/sml/tlv"

// Message is a decoded SML message: its routing fields plus the dispatched
// body. transaction_id is read and discarded -- nothing in this schema
// surface needs to echo it back.
type Message struct {
	GroupNo      uint8
	AbortOnError uint8
	Body         *MessageBody
}

// DecodeMessage reads the first four of a message's six TLV fields:
// transaction_id, group_no, abort_on_error, and message_body. The remaining
// two fields, crc16 and the end-of-message marker, are the session layer's
// responsibility, since verifying them needs the running message CRC digest
// that this package has no access to.
func DecodeMessage(list *tlv.List) (*Message, error) {
	txn, err := list.Next()
	if err != nil {
		return nil, err
	}
	if err := txn.Discard(); err != nil {
		return nil, err
	}

	groupItem, err := list.Next()
	if err != nil {
		return nil, err
	}
	groupNo, err := groupItem.IntoU8()
	if err != nil {
		return nil, err
	}

	abortItem, err := list.Next()
	if err != nil {
		return nil, err
	}
	abortOnError, err := abortItem.IntoU8()
	if err != nil {
		return nil, err
	}

	bodyItem, err := list.Next()
	if err != nil {
		return nil, err
	}
	body, err := decodeMessageBody(bodyItem)
	if err != nil {
		return nil, err
	}

	return &Message{GroupNo: groupNo, AbortOnError: abortOnError, Body: body}, nil
}

// isNone reports whether item is the zero-length string that SML uses to
// encode an absent optional field.
func isNone(it *tlv.Item) bool {
	return it.Type == tlv.TypeString && it.Len == 0
}
