// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package obis

import (
	"errors"
	"testing"

	"code.hybscloud.com/sml"
	"code.hybscloud.com/sml/types"
)

type recordingPublisher struct {
	got []Summary
	err error
}

func (p *recordingPublisher) Publish(s Summary) error {
	p.got = append(p.got, s)
	return p.err
}

func scalerPtr(v int8) *int8 { return &v }

func listEntry(code [6]byte, scaler int8, value uint64) *types.ListEntry {
	return &types.ListEntry{
		ObjName: code[:],
		Scaler:  scalerPtr(scaler),
		Value:   &types.Value{Kind: types.ValueU64, U64: value},
	}
}

func getListMessage(entries ...*types.ListEntry) *types.Message {
	return &types.Message{
		Body: &types.MessageBody{
			Tag:             types.TagGetListResponse,
			GetListResponse: &types.GetListResponse{ValList: entries},
		},
	}
}

func TestBothQuantitiesPublishedOnValidFrame(t *testing.T) {
	pub := &recordingPublisher{}
	cb := &Callback{Publisher: pub}

	cb.FrameStart()
	msg := getListMessage(
		listEntry(ActivePowerCode, -1, 12345),
		listEntry(ActiveEnergyCode, 0, 9876543),
	)
	if err := cb.MessageReceived(msg); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(true)

	if len(pub.got) != 1 {
		t.Fatalf("got %d published summaries, want 1", len(pub.got))
	}
	want := Summary{
		ActivePower:  Reading{Scaler: -1, Value: 12345},
		ActiveEnergy: Reading{Scaler: 0, Value: 9876543},
	}
	if pub.got[0] != want {
		t.Fatalf("got %+v, want %+v", pub.got[0], want)
	}
}

func TestUnrelatedObisEntriesAreIgnored(t *testing.T) {
	pub := &recordingPublisher{}
	cb := &Callback{Publisher: pub}

	other := [6]byte{0x01, 0x00, 0x60, 0x01, 0x00, 0xFF}
	cb.FrameStart()
	msg := getListMessage(
		listEntry(other, 0, 1),
		listEntry(ActivePowerCode, -1, 12345),
		listEntry(ActiveEnergyCode, 0, 9876543),
	)
	if err := cb.MessageReceived(msg); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(true)

	if len(pub.got) != 1 {
		t.Fatalf("got %d published summaries, want 1", len(pub.got))
	}
}

func TestDuplicateEntryIsRejected(t *testing.T) {
	cb := &Callback{}
	cb.FrameStart()
	msg := getListMessage(
		listEntry(ActivePowerCode, -1, 12345),
		listEntry(ActivePowerCode, -1, 12346),
	)
	err := cb.MessageReceived(msg)
	if err == nil {
		t.Fatal("got nil error, want a duplicate-entry rejection")
	}
	var smlErr *sml.Error
	if !errors.As(err, &smlErr) || smlErr.Kind != sml.KindUnexpectedValue {
		t.Fatalf("got %v, want *sml.Error{Kind: KindUnexpectedValue}", err)
	}
}

func TestNothingPublishedWhenOnlyOneQuantitySeen(t *testing.T) {
	pub := &recordingPublisher{}
	cb := &Callback{Publisher: pub}

	cb.FrameStart()
	msg := getListMessage(listEntry(ActivePowerCode, -1, 12345))
	if err := cb.MessageReceived(msg); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(true)

	if len(pub.got) != 0 {
		t.Fatalf("got %d published summaries, want 0", len(pub.got))
	}
}

func TestNothingPublishedWhenFrameInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	cb := &Callback{Publisher: pub}

	cb.FrameStart()
	msg := getListMessage(
		listEntry(ActivePowerCode, -1, 12345),
		listEntry(ActiveEnergyCode, 0, 9876543),
	)
	if err := cb.MessageReceived(msg); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(false)

	if len(pub.got) != 0 {
		t.Fatalf("got %d published summaries, want 0", len(pub.got))
	}
}

func TestAccumulatorResetsBetweenFrames(t *testing.T) {
	pub := &recordingPublisher{}
	cb := &Callback{Publisher: pub}

	cb.FrameStart()
	if err := cb.MessageReceived(getListMessage(listEntry(ActivePowerCode, -1, 1))); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(true) // incomplete, nothing published, accumulator cleared

	cb.FrameStart()
	if err := cb.MessageReceived(getListMessage(
		listEntry(ActivePowerCode, -2, 2),
		listEntry(ActiveEnergyCode, 0, 3),
	)); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
	cb.FrameFinished(true)

	if len(pub.got) != 1 {
		t.Fatalf("got %d published summaries, want 1", len(pub.got))
	}
	if pub.got[0].ActivePower.Scaler != -2 {
		t.Fatalf("got stale reading from the first frame, want the second frame's -2 scaler: %+v", pub.got[0])
	}
}

func TestNonGetListMessageIsIgnored(t *testing.T) {
	cb := &Callback{}
	cb.FrameStart()
	msg := &types.Message{Body: &types.MessageBody{Tag: types.TagOpenResponse}}
	if err := cb.MessageReceived(msg); err != nil {
		t.Fatalf("MessageReceived: %v", err)
	}
}
