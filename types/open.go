// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import "code.hybscloud.com/sml/tlv"

// OpenResponse is SML_PublicOpen_Res, the reply to a session open request.
type OpenResponse struct {
	Codepage   []byte
	ClientID   []byte
	ReqFileID  []byte
	ServerID   []byte
	RefTime    *Time
	SMLVersion *uint8
}

func decodeOpenResponse(item *tlv.Item) (*OpenResponse, error) {
	list, err := item.AsList()
	if err != nil {
		return nil, err
	}
	r := &OpenResponse{}

	codepage, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.Codepage = codepage

	clientID, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ClientID = clientID

	reqFileID, err := readOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ReqFileID = reqFileID

	serverID, err := readOctetString(list)
	if err != nil {
		return nil, err
	}
	r.ServerID = serverID

	refTime, err := readOptionalTime(list)
	if err != nil {
		return nil, err
	}
	r.RefTime = refTime

	smlVersion, err := readOptionalU8(list)
	if err != nil {
		return nil, err
	}
	r.SMLVersion = smlVersion

	list.SkipRest()
	return r, nil
}

// CloseResponse is SML_PublicClose_Res, the reply closing a session.
type CloseResponse struct {
	GlobalSignature []byte
}

func decodeCloseResponse(item *tlv.Item) (*CloseResponse, error) {
	list, err := item.AsList()
	if err != nil {
		return nil, err
	}
	r := &CloseResponse{}

	sig, err := readOptionalOctetString(list)
	if err != nil {
		return nil, err
	}
	r.GlobalSignature = sig

	list.SkipRest()
	return r, nil
}
