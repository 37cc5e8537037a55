// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obis is the reference application callback: it watches decoded
// GetListResponse bodies for the active-power and active-energy OBIS
// entries and publishes a summary once a frame validates with both present.
package obis

import (
	"bytes"

	"go.uber.org/zap"

	"code.hybscloud.com/sml"
	"code.hybscloud.com/sml/types"
)

// OBIS codes this callback extracts; unrelated entries are silently skipped.
var (
	ActivePowerCode  = [6]byte{0x01, 0x00, 0x10, 0x07, 0x00, 0xFF}
	ActiveEnergyCode = [6]byte{0x01, 0x00, 0x01, 0x08, 0x00, 0xFF}
)

// Reading is a (scaler, value) pair extracted from one OBIS entry.
type Reading struct {
	Scaler int8
	Value  uint64
}

// Summary is published once per valid frame carrying both named quantities.
type Summary struct {
	ActivePower  Reading
	ActiveEnergy Reading
}

// Publisher hands a decoded Summary off to wherever it needs to go next. No
// MQTT client library exists anywhere in the reference corpus this module
// was built from, so the broker-facing concern is modeled as this interface
// rather than a fabricated dependency; cmd/smartmeter2mqtt supplies the
// concrete implementation.
type Publisher interface {
	Publish(Summary) error
}

// Callback is the reference sml.Callback implementation.
type Callback struct {
	Publisher Publisher
	Logger    *zap.Logger

	activePower  *Reading
	activeEnergy *Reading
}

var _ sml.Callback = (*Callback)(nil)

// FrameStart clears the per-frame accumulator.
func (c *Callback) FrameStart() {
	c.activePower = nil
	c.activeEnergy = nil
}

// MessageReceived inspects GetListResponse bodies for the two named OBIS
// entries. Seeing the same quantity twice within one frame is a semantic
// error, not a malformed wire condition, so it is reported as
// KindUnexpectedValue.
func (c *Callback) MessageReceived(msg *types.Message) error {
	if msg.Body == nil || msg.Body.GetListResponse == nil {
		return nil
	}
	for _, entry := range msg.Body.GetListResponse.ValList {
		switch {
		case matchesCode(entry.ObjName, ActivePowerCode):
			if c.activePower != nil {
				return &sml.Error{Kind: sml.KindUnexpectedValue}
			}
			c.activePower = readingFrom(entry)
		case matchesCode(entry.ObjName, ActiveEnergyCode):
			if c.activeEnergy != nil {
				return &sml.Error{Kind: sml.KindUnexpectedValue}
			}
			c.activeEnergy = readingFrom(entry)
		}
	}
	return nil
}

// FrameFinished publishes a Summary if the frame validated and both named
// quantities were seen, then resets the accumulator either way.
func (c *Callback) FrameFinished(valid bool) {
	defer func() {
		c.activePower = nil
		c.activeEnergy = nil
	}()

	if !valid || c.activePower == nil || c.activeEnergy == nil {
		if c.Logger != nil {
			c.Logger.Debug("frame finished without a complete reading", zap.Bool("valid", valid))
		}
		return
	}
	summary := Summary{ActivePower: *c.activePower, ActiveEnergy: *c.activeEnergy}
	if c.Publisher == nil {
		return
	}
	if err := c.Publisher.Publish(summary); err != nil && c.Logger != nil {
		c.Logger.Warn("publish failed", zap.Error(err))
	}
}

func matchesCode(objName []byte, code [6]byte) bool {
	return bytes.Equal(objName, code[:])
}

func readingFrom(e *types.ListEntry) *Reading {
	var scaler int8
	if e.Scaler != nil {
		scaler = *e.Scaler
	}
	var value uint64
	if e.Value != nil {
		switch e.Value.Kind {
		case types.ValueU8, types.ValueU16, types.ValueU32, types.ValueU64:
			value = e.Value.U64
		default:
			value = uint64(e.Value.I64)
		}
	}
	return &Reading{Scaler: scaler, Value: value}
}
