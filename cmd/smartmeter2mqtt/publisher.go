// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"go.uber.org/zap"

	"code.hybscloud.com/sml/obis"
)

// logPublisher is the stand-in obis.Publisher shipped with this binary. No
// MQTT client exists anywhere in the reference corpus this module was built
// from, so rather than fabricate a dependency this binary logs each reading
// at the topics the original tool would have published to
// (smartmeter/<address>/active_power and .../active_energy) and leaves
// wiring an actual broker client to whatever deployment adopts it.
type logPublisher struct {
	addr   LEAddr
	logger *zap.Logger
}

func newLogPublisher(addr LEAddr, logger *zap.Logger) *logPublisher {
	return &logPublisher{addr: addr, logger: logger}
}

func (p *logPublisher) Publish(summary obis.Summary) error {
	p.logger.Info("reading",
		zap.String("topic", fmt.Sprintf("smartmeter/%s/active_power", p.addr)),
		zap.Int8("active_power_scaler", summary.ActivePower.Scaler),
		zap.Uint64("active_power_value", summary.ActivePower.Value),
		zap.String("topic", fmt.Sprintf("smartmeter/%s/active_energy", p.addr)),
		zap.Int8("active_energy_scaler", summary.ActiveEnergy.Scaler),
		zap.Uint64("active_energy_value", summary.ActiveEnergy.Value),
	)
	return nil
}
