// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command smartmeter2mqtt listens for encrypted UDP broadcasts from
// configured smart meters, decrypts each datagram, decodes the plaintext as
// an SML transmission, and publishes the active-power and active-energy
// readings it carries.
package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultListenAddr = "0.0.0.0:8888"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "smartmeter2mqtt",
		Short: "Decrypt and decode SML datagrams from configured smart meters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, listenAddr)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to the TOML configuration file")
	flags.StringVar(&listenAddr, "listen", defaultListenAddr, "UDP address to listen on")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().SortFlags = false

	return cmd
}

func run(configPath, listenAddr string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("smartmeter2mqtt: can't build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	devices, err := resolveDevices(cfg)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", zap.Int("device_count", len(devices)))

	runtimeDir := os.Getenv("RUNTIME_DIRECTORY")
	if runtimeDir == "" {
		runtimeDir = cfg.RuntimeDir
	}
	if runtimeDir == "" {
		return fmt.Errorf("smartmeter2mqtt: can't find any runtime dir")
	}
	noncePath := filepath.Join(runtimeDir, "nonces")

	nonces := NewNonceStore()
	restored, err := loadNonceFile(noncePath)
	if err != nil {
		return fmt.Errorf("smartmeter2mqtt: load nonce file: %w", err)
	}
	nonces.restore(restored)
	go nonces.runPersister(noncePath)

	addr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("smartmeter2mqtt: resolve listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("smartmeter2mqtt: can't bind socket: %w", err)
	}
	defer conn.Close()
	logger.Info("listening", zap.String("addr", listenAddr))

	buf := make([]byte, 1024)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return fmt.Errorf("smartmeter2mqtt: can't receive UDP packet: %w", err)
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])

		if err := handleDatagram(devices, nonces, logger, datagram); err != nil {
			logger.Error("failed to handle frame", zap.Error(err))
		}
	}
}
