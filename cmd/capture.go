// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/unrealex/RS485-WTVB02/pkg/wtvb"
)

var replayDecode bool

var replayCmd = &cobra.Command{
	Use:   "replay <capture-file>",
	Short: "Replay a CBOR capture file through the frame assembler",
	Long: `Read a capture file recorded with 'monitor --record' and run every frame
back through a fresh assembler, printing each frame as it validates.

With --decode, vibration data blocks are also decoded to axis values.
Generic register frames need the read request context that existed at record
time, so they are shown raw.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayDecode, "decode", false, "Decode vibration data blocks")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	addrs, err := deviceAddresses()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	defer f.Close()

	assembler := wtvb.NewAssembler(addrs)
	reader := wtvb.NewCaptureReader(f)
	records := 0

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		records++

		for _, frame := range assembler.FeedBytes(rec.Raw) {
			fmt.Println(wtvb.FormatFrame(frame))
			if !replayDecode {
				continue
			}
			if values, _ := wtvb.Decode(frame, wtvb.ReadContext{}); len(values) > 0 {
				fmt.Printf("  %s\n", wtvb.FormatSnapshot(values))
			}
		}
	}

	fmt.Printf("%d records, %s\n", records, assembler.Stats().Summary())
	return nil
}
