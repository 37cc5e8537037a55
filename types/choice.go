// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// Message-body tag values, as registered in the SML discriminator table
// (BSI TR-03109 Annex). Only the four tags this package has structs for
// decode to a concrete struct; the rest of this table's tags still carry
// their data as Raw, and a tag absent from the table entirely is rejected --
// see registeredTags and decodeMessageBody's default case.
const (
	TagOpenRequest             uint32 = 0x00000100
	TagOpenResponse            uint32 = 0x00000101
	TagCloseRequest            uint32 = 0x00000200
	TagCloseResponse           uint32 = 0x00000201
	TagGetProfilePackRequest   uint32 = 0x00000300
	TagGetProfilePackResponse  uint32 = 0x00000301
	TagGetProfileListRequest   uint32 = 0x00000400
	TagGetProfileListResponse  uint32 = 0x00000401
	TagGetProcParameterRequest uint32 = 0x00000500
	TagGetProcParameterResp    uint32 = 0x00000501
	TagSetProcParameterRequest uint32 = 0x00000600
	TagGetListRequest          uint32 = 0x00000700
	TagGetListResponse         uint32 = 0x00000701
	TagGetCosemRequest         uint32 = 0x00000800
	TagGetCosemResponse        uint32 = 0x00000801
	TagSetCosemRequest         uint32 = 0x00000900
	TagSetCosemResponse        uint32 = 0x00000901
	TagActionCosemRequest      uint32 = 0x00000A00
	TagActionCosemResponse     uint32 = 0x00000A01
	TagAttentionResponse       uint32 = 0x0000FF01
)

// registeredTags holds every discriminator value named above, whether or not
// this package has a concrete struct for it.
var registeredTags = map[uint32]bool{
	TagOpenRequest: true, TagOpenResponse: true,
	TagCloseRequest: true, TagCloseResponse: true,
	TagGetProfilePackRequest: true, TagGetProfilePackResponse: true,
	TagGetProfileListRequest: true, TagGetProfileListResponse: true,
	TagGetProcParameterRequest: true, TagGetProcParameterResp: true,
	TagSetProcParameterRequest: true,
	TagGetListRequest:          true, TagGetListResponse: true,
	TagGetCosemRequest: true, TagGetCosemResponse: true,
	TagSetCosemRequest: true, TagSetCosemResponse: true,
	TagActionCosemRequest: true, TagActionCosemResponse: true,
	TagAttentionResponse: true,
}

// MessageBody is the decoded SML_MessageBody choice. Exactly one of the
// named variants is non-nil when Tag matches it; any other registered tag
// sets Raw and leaves its data skipped rather than parsed -- see DESIGN.md
// for why the remaining message types are not individually generated.
type MessageBody struct {
	Tag uint32
	Raw bool

	OpenResponse    *OpenResponse
	CloseResponse   *CloseResponse
	GetListRequest  *GetListRequest
	GetListResponse *GetListResponse
}

func decodeMessageBody(item *tlv.Item) (*MessageBody, error) {
	choice, err := item.AsList()
	if err != nil {
		return nil, err
	}
	tagItem, err := choice.Next()
	if err != nil {
		return nil, err
	}
	tag, err := tagItem.IntoU32Relaxed()
	if err != nil {
		return nil, err
	}
	dataItem, err := choice.Next()
	if err != nil {
		return nil, err
	}

	body := &MessageBody{Tag: tag}
	switch tag {
	case TagOpenResponse:
		v, err := decodeOpenResponse(dataItem)
		if err != nil {
			return nil, err
		}
		body.OpenResponse = v
	case TagCloseResponse:
		v, err := decodeCloseResponse(dataItem)
		if err != nil {
			return nil, err
		}
		body.CloseResponse = v
	case TagGetListRequest:
		v, err := decodeGetListRequest(dataItem)
		if err != nil {
			return nil, err
		}
		body.GetListRequest = v
	case TagGetListResponse:
		v, err := decodeGetListResponse(dataItem)
		if err != nil {
			return nil, err
		}
		body.GetListResponse = v
	default:
		if !registeredTags[tag] {
			return nil, &tlv.Error{Kind: tlv.KindUnsupportedTag, Tag: tag}
		}
		body.Raw = true
		if err := dataItem.Discard(); err != nil {
			return nil, err
		}
	}

	choice.SkipRest()
	return body, nil
}
