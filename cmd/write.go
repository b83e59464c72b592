// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/unrealex/RS485-WTVB02/pkg/wtvb"
)

var (
	writeReg    string
	writeValue  string
	writeVerify bool
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a sensor register persistently",
	Long: `Write a value to a register using the full unlock/write/save sequence.

The sensor write-protects its registers until the vendor unlock key is
written, and discards unsaved changes on power cycle, so every write is sent
as unlock, write, save with a settle delay between the steps. The protocol
has no acknowledgment; by default success is assumed once the delays elapse.
Use --verify to read the register back afterwards and compare.

Register and value accept decimal or 0x-prefixed hex.`,
	Example: `  wtvb write --port /dev/ttyUSB0 --reg 0x03 --value 0x0008
  wtvb write --port /dev/ttyUSB0 --reg 0x23 --value 5 --verify`,
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeReg, "reg", "", "Register address (required)")
	writeCmd.Flags().StringVar(&writeValue, "value", "", "Value to write (required)")
	writeCmd.Flags().BoolVar(&writeVerify, "verify", false, "Read the register back and compare")
	writeCmd.MarkFlagRequired("reg")
	writeCmd.MarkFlagRequired("value")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	reg, err := parseRegister(writeReg)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(writeValue, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", writeValue, err)
	}
	value := uint16(v)

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

	dev := wtvb.NewDevice(conn, addrs,
		wtvb.WithLogger(log),
		wtvb.WithSettleDelay(settleDelay),
		wtvb.WithVerifyWrites(writeVerify))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	if writeVerify {
		// The read-back response has to flow through the decode loop.
		go func() {
			if err := dev.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("transport failed")
			}
		}()
	}

	if err := dev.WriteRegister(addr, reg, value); err != nil {
		return err
	}

	if writeVerify {
		fmt.Printf("register 0x%02X = 0x%04X on 0x%02X (verified)\n", reg, value, addr)
	} else {
		fmt.Printf("register 0x%02X = 0x%04X on 0x%02X (unverified: protocol has no acknowledgment)\n", reg, value, addr)
	}
	return nil
}
