// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// GetListRequest is SML_GetList_Req, a poll for a named value list.
type GetListRequest struct {
	ClientID []byte
	ServerID []byte
	Username []byte
	Password []byte
	ListName []byte
}

func decodeGetListRequest(item *tlv.Item) (*GetListRequest, error) {
	list, err := item.AsList()
	if err != nil {
		return nil, err
	}
	r := &GetListRequest{}

	clientID, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ClientID = clientID

	serverID, err := readOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ServerID = serverID

	username, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.Username = username

	password, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.Password = password

	listName, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ListName = listName

	list.SkipRest()
	return r, nil
}

// GetListResponse is SML_GetList_Res: the value list a meter streams out
// unsolicited, one ListEntry per OBIS code.
type GetListResponse struct {
	ClientID       []byte
	ServerID       []byte
	ListName       []byte
	ActSensorTime  *Time
	ValList        []*ListEntry
	ListSignature  []byte
	ActGatewayTime *Time
}

func decodeGetListResponse(item *tlv.Item) (*GetListResponse, error) {
	list, err := item.AsList()
	if err != nil {
		return nil, err
	}
	r := &GetListResponse{}

	clientID, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ClientID = clientID

	serverID, err := readOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ServerID = serverID

	listName, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ListName = listName

	actSensorTime, err := readOptionalTime(list)
	if err != nil {
		return nil, err
	}
	r.ActSensorTime = actSensorTime

	valListItem, err := list.Next()
	if err != nil {
		return nil, err
	}
	entries, err := decodeList(valListItem)
	if err != nil {
		return nil, err
	}
	r.ValList = entries

	listSignature, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ListSignature = listSignature

	actGatewayTime, err := readOptionalTime(list)
	if err != nil {
		return nil, err
	}
	r.ActGatewayTime = actGatewayTime

	list.SkipRest()
	return r, nil
}
