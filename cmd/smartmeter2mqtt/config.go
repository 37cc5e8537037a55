// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/chacha20poly1305"
)

// MQTTConfig names the broker this binary publishes readings to.
type MQTTConfig struct {
	Host string `toml:"host"`
	Port uint16 `toml:"port"`
}

func (m MQTTConfig) portOrDefault() uint16 {
	if m.Port == 0 {
		return 1883
	}
	return m.Port
}

// DeviceConfig is one [device.<name>] table: the BLE address it broadcasts
// from, the path to its 32-byte ChaCha20-Poly1305 key, and its device kind.
type DeviceConfig struct {
	AddressType AddrType `toml:"address_type"`
	Address     string   `toml:"address"`
	KeyPath     string   `toml:"key"`
	Type        string   `toml:"type"`
}

// Config is the whole TOML configuration file.
type Config struct {
	MQTT       MQTTConfig              `toml:"mqtt"`
	RuntimeDir string                  `toml:"runtime_dir"`
	Devices    map[string]DeviceConfig `toml:"device"`
}

// device is a DeviceConfig resolved into runtime form: address parsed,
// key file read, and AEAD cipher constructed.
type device struct {
	name   string
	leaddr LEAddr
	cipher chacha20poly1305.AEAD
	kind   string
}

// loadConfig reads and parses the TOML file at path.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("smartmeter2mqtt: read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("smartmeter2mqtt: parse config: %w", err)
	}
	return &cfg, nil
}

// resolveDevices reads every configured device's key file and builds its
// runtime record, keyed by LEAddr for datagram dispatch.
func resolveDevices(cfg *Config) (map[LEAddr]*device, error) {
	out := make(map[LEAddr]*device, len(cfg.Devices))
	for name, dc := range cfg.Devices {
		mac, err := parseMAC(dc.Address)
		if err != nil {
			return nil, fmt.Errorf("smartmeter2mqtt: device %q: %w", name, err)
		}
		key, err := readKey(dc.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("smartmeter2mqtt: device %q: %w", name, err)
		}
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("smartmeter2mqtt: device %q: %w", name, err)
		}
		leaddr := LEAddr{AddressType: dc.AddressType, Address: mac}
		out[leaddr] = &device{name: name, leaddr: leaddr, cipher: aead, kind: dc.Type}
	}
	return out, nil
}

// readKey reads an exactly-32-byte ChaCha20-Poly1305 key from path.
func readKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't open key file: %w", err)
	}
	if len(data) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%d is not a valid key size", len(data))
	}
	return data, nil
}
