// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Device flags
	addresses  []int
	configPath string
	debug      bool

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wtvb",
	Short: "WTVB02 RS485 vibration sensor tool",
	Long: `RS485-WTVB02 - read, monitor and configure WTVB02-class vibration sensors.

The sensors speak a Modbus-RTU-like register protocol. This tool decodes the
vibration data block (acceleration, angular rate, magnetic field, angle) and
gives raw register access including the unlock/write/save sequence needed for
persistent configuration writes.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 230400]
  WebSocket: --url ws://host/path [--username user]  (serial-over-WS bridge)

Defaults can be placed in a TOML config file (--config), flags win.`,
	Version: "1.2.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyConfigFile(cmd); err != nil {
			return err
		}

		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 230400, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
	rootCmd.PersistentFlags().IntSliceVarP(&addresses, "address", "a", []int{0x50}, "Device Modbus address(es)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging (TX/RX traces)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// deviceAddresses validates the --address values down to bytes.
func deviceAddresses() ([]byte, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("at least one device address is required")
	}
	out := make([]byte, 0, len(addresses))
	for _, a := range addresses {
		if a < 1 || a > 0xFF {
			return nil, fmt.Errorf("invalid device address %d: must be 1-255", a)
		}
		out = append(out, byte(a))
	}
	return out, nil
}

// settleDelay is the pause between unlock, write and save steps.
const settleDelay = 100 * time.Millisecond
