// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Statistics tracks stream health counters for one assembler. Corrupted or
// misaligned stream segments are recovered silently, so these counters are
// the only place that damage is observable. Counters are atomic: they are
// written by the polling goroutine and read live by dashboards.
type Statistics struct {
	StartTime time.Time

	BytesIn      atomic.Uint64 // bytes fed to the assembler
	BytesDropped atomic.Uint64 // bytes discarded during resynchronization
	Frames       atomic.Uint64 // validated frames emitted
	CRCErrors    atomic.Uint64 // candidate frames rejected by checksum
}

// NewStatistics creates a zeroed counter set.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// FrameRate returns the average validated frames per second since start.
func (s *Statistics) FrameRate() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Frames.Load()) / elapsed
}

// Summary returns a one-line human-readable counter summary.
func (s *Statistics) Summary() string {
	return fmt.Sprintf("frames=%d crc_errors=%d bytes=%d dropped=%d rate=%.1f/s",
		s.Frames.Load(), s.CRCErrors.Load(), s.BytesIn.Load(), s.BytesDropped.Load(), s.FrameRate())
}
