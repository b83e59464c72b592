// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/unrealex/RS485-WTVB02/pkg/wtvb"
)

var (
	readReg     string
	readCount   uint16
	readTimeout time.Duration
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read registers from a sensor once",
	Long: `Send a single read request and print the decoded response.

Reading 12 registers from 0x34 returns the vibration data block (named axis
values); any other read decodes to normalized register values keyed by
register address. The register accepts decimal or 0x-prefixed hex.`,
	Example: `  wtvb read --port /dev/ttyUSB0 --reg 0x34 --count 12
  wtvb read --port /dev/ttyUSB0 --reg 0x23 --count 1`,
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVar(&readReg, "reg", "0x34", "Start register address")
	readCmd.Flags().Uint16Var(&readCount, "count", wtvb.DataBlockCount, "Number of registers")
	readCmd.Flags().DurationVar(&readTimeout, "timeout", 2*time.Second, "Response timeout")
	rootCmd.AddCommand(readCmd)
}

// parseRegister accepts decimal or 0x-prefixed register addresses.
func parseRegister(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q: %w", s, err)
	}
	return uint16(v), nil
}

func runRead(cmd *cobra.Command, args []string) error {
	reg, err := parseRegister(readReg)
	if err != nil {
		return err
	}
	addrs, err := deviceAddresses()
	if err != nil {
		return err
	}
	addr := addrs[0]

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Debug().Str("connection", connInfo).Msg("connected")

	snapshots := make(chan map[string]float64, 1)
	dev := wtvb.NewDevice(conn, addrs,
		wtvb.WithLogger(log),
		wtvb.WithSink(func(a byte, values map[string]float64) {
			if a != addr {
				return
			}
			select {
			case snapshots <- values:
			default:
			}
		}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		if err := dev.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("transport failed")
		}
	}()

	if err := dev.ReadRegisters(addr, reg, readCount); err != nil {
		return err
	}

	select {
	case values := <-snapshots:
		fmt.Printf("addr 0x%02X: %s\n", addr, wtvb.FormatSnapshot(values))
		return nil
	case <-time.After(readTimeout):
		return fmt.Errorf("no response from 0x%02X within %v (%s)", addr, readTimeout, dev.Stats().Summary())
	}
}
