// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/unrealex/RS485-WTVB02/pkg/wtvb"
)

var (
	monLive     bool
	monWindow   int
	monLine     float64
	monInterval time.Duration
	monRecord   string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously poll sensors and track vibration extremes",
	Long: `Poll the vibration data block of every configured sensor and decode it live.

Acceleration min/max extremes are tracked over a sliding window of frames and
summarized when the window fills. With --line, each summary also checks every
acceleration axis against the symmetric threshold band and warns when the
band is exceeded.

With --record, every validated frame is appended to a CBOR capture file that
can be examined later with the replay command.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&monLive, "live", false, "Print every decoded snapshot")
	monitorCmd.Flags().IntVar(&monWindow, "window", 500, "Frames per min/max summary window")
	monitorCmd.Flags().Float64Var(&monLine, "line", 0, "Acceleration threshold in g (0 disables the band check)")
	monitorCmd.Flags().DurationVar(&monInterval, "interval", 200*time.Millisecond, "Poll interval per address")
	monitorCmd.Flags().StringVar(&monRecord, "record", "", "Append validated frames to a CBOR capture file")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monWindow <= 0 {
		return fmt.Errorf("--window must be positive")
	}

	addrs, err := deviceAddresses()
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("connection", connInfo).Msg("connected")

	opts := []wtvb.Option{
		wtvb.WithLogger(log),
		wtvb.WithPollInterval(monInterval),
	}

	if monRecord != "" {
		f, err := os.OpenFile(monRecord, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer f.Close()
		cw := wtvb.NewCaptureWriter(f)
		opts = append(opts, wtvb.WithFrameObserver(func(frame *wtvb.Frame) {
			if err := cw.WriteFrame(frame); err != nil {
				log.Error().Err(err).Msg("capture write failed")
			}
		}))
	}

	tracker := newMinMaxTracker(monWindow, monLine)
	opts = append(opts, wtvb.WithSink(func(addr byte, values map[string]float64) {
		if monLive {
			log.Info().
				Uint8("addr", addr).
				Str("values", wtvb.FormatSnapshot(values)).
				Msg("decoded")
		}
		tracker.observe(addr, values)
	}))

	dev := wtvb.NewDevice(conn, addrs, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Close the transport on shutdown so the blocked read loop exits.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		if err := dev.Poll(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("poll loop stopped")
		}
	}()

	log.Info().Msg("monitoring, press Ctrl+C to stop")
	err = dev.Run(ctx)
	log.Info().Str("stats", dev.Stats().Summary()).Msg("stream summary")
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// axisExtremes tracks one axis' minimum and maximum with timestamps, the
// granularity the vibrometer reports are judged at.
type axisExtremes struct {
	min, max     float64
	minAt, maxAt time.Time
	seen         bool
}

func (e *axisExtremes) observe(v float64, at time.Time) {
	if !e.seen || v < e.min {
		e.min, e.minAt = v, at
	}
	if !e.seen || v > e.max {
		e.max, e.maxAt = v, at
	}
	e.seen = true
}

// minMaxTracker accumulates acceleration extremes over a window of frames.
type minMaxTracker struct {
	window int
	line   float64
	count  int
	axes   map[string]*axisExtremes
}

var accelKeys = []string{wtvb.KeyAccX, wtvb.KeyAccY, wtvb.KeyAccZ}

func newMinMaxTracker(window int, line float64) *minMaxTracker {
	return &minMaxTracker{window: window, line: line, axes: make(map[string]*axisExtremes)}
}

// observe folds one snapshot into the window; when the window fills it logs
// the summary and resets. Non-IMU snapshots (no acceleration keys) are
// ignored.
func (t *minMaxTracker) observe(addr byte, values map[string]float64) {
	now := time.Now()
	tracked := false
	for _, key := range accelKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		e := t.axes[key]
		if e == nil {
			e = &axisExtremes{}
			t.axes[key] = e
		}
		e.observe(v, now)
		tracked = true
	}
	if !tracked {
		return
	}

	t.count++
	if t.count < t.window {
		return
	}
	t.summarize(addr)
	t.count = 0
	t.axes = make(map[string]*axisExtremes)
}

func (t *minMaxTracker) summarize(addr byte) {
	ev := log.Info()
	inBand := true
	for _, key := range accelKeys {
		e := t.axes[key]
		if e == nil {
			continue
		}
		ev = ev.Str(key, fmt.Sprintf("%.3f@%s / %.3f@%s",
			e.min, e.minAt.Format("15:04:05.000"),
			e.max, e.maxAt.Format("15:04:05.000")))
		if t.line > 0 && (e.min < -t.line || e.max > t.line) {
			inBand = false
		}
	}
	ev.Uint8("addr", addr).Int("frames", t.count).Msg("min/max window")

	if t.line > 0 {
		if inBand {
			log.Info().Float64("line", t.line).Msg("all axes within threshold band")
		} else {
			log.Warn().Float64("line", t.line).Msg("threshold band exceeded")
		}
	}
}
