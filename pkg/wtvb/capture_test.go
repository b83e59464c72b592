// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"bytes"
	"io"
	"testing"
)

func TestCapture_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0x40, 0x00, 0x80, 0x00},
		bytes.Repeat([]byte{0x12, 0x34}, 12),
	}

	var frames []*Frame
	a := NewAssembler([]byte{0x50})
	for _, p := range payloads {
		fs := a.FeedBytes(makeResponse(0x50, p))
		if len(fs) != 1 {
			t.Fatalf("setup: expected 1 frame, got %d", len(fs))
		}
		frames = append(frames, fs[0])
	}

	var buf bytes.Buffer
	cw := NewCaptureWriter(&buf)
	for _, f := range frames {
		if err := cw.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}

	cr := NewCaptureReader(&buf)
	for i, f := range frames {
		rec, err := cr.Next()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if rec.Address != 0x50 {
			t.Errorf("record %d address = 0x%02X", i, rec.Address)
		}
		want := makeResponse(0x50, f.Payload())
		if !bytes.Equal(rec.Raw, want) {
			t.Errorf("record %d raw = % X, want % X", i, rec.Raw, want)
		}
		if rec.Timestamp.IsZero() {
			t.Errorf("record %d has zero timestamp", i)
		}
	}
	if _, err := cr.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after last record, got %v", err)
	}
}

func TestReplay(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCaptureWriter(&buf)

	src := NewAssembler([]byte{0x50})
	for _, p := range [][]byte{{0x01, 0x02}, {0x03, 0x04, 0x05, 0x06}} {
		for _, f := range src.FeedBytes(makeResponse(0x50, p)) {
			if err := cw.WriteFrame(f); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
		}
	}

	frames, err := Replay(&buf, NewAssembler([]byte{0x50}))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("replayed %d frames, want 2", len(frames))
	}
	if !bytes.Equal(frames[1].Payload(), []byte{0x03, 0x04, 0x05, 0x06}) {
		t.Errorf("frame 1 payload = % X", frames[1].Payload())
	}
}
