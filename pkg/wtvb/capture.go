// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CaptureRecord is one timestamped raw frame in a capture stream. Records
// store wire bytes, not decoded values, so a capture can be replayed through
// any assembler configuration later.
type CaptureRecord struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	Address   byte      `cbor:"2,keyasint"`
	Raw       []byte    `cbor:"3,keyasint"`
}

// CaptureWriter appends frame records to a CBOR stream.
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer on w. Records are written as a
// flat CBOR sequence, one map per frame.
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// WriteFrame appends a frame to the capture, re-serialized to wire format.
func (cw *CaptureWriter) WriteFrame(f *Frame) error {
	raw := make([]byte, 0, len(f.Payload())+frameOverhead)
	raw = append(raw, f.Address(), f.Function(), byte(len(f.Payload())))
	raw = append(raw, f.Payload()...)
	raw = append(raw, byte(f.CRC()>>8), byte(f.CRC()))

	rec := CaptureRecord{
		Timestamp: f.Timestamp(),
		Address:   f.Address(),
		Raw:       raw,
	}
	if err := cw.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	return nil
}

// CaptureReader reads frame records back from a CBOR capture stream.
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader on r.
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at end of stream.
func (cr *CaptureReader) Next() (*CaptureRecord, error) {
	var rec CaptureRecord
	if err := cr.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode capture record: %w", err)
	}
	return &rec, nil
}

// Replay feeds every captured record through an assembler and returns the
// frames it emits. Corrupted records resynchronize away exactly as they
// would on a live stream.
func Replay(r io.Reader, a *Assembler) ([]*Frame, error) {
	cr := NewCaptureReader(r)
	var frames []*Frame
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, a.FeedBytes(rec.Raw)...)
	}
}
