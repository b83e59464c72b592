// SPDX-License-Identifier: Apache-2.0

package wtvb

// Assembler reassembles an unbounded byte stream into validated frames.
//
// The stream has no framing bytes: a frame boundary is only known once the
// length byte at offset 2 arrives. The assembler keeps a single accumulation
// buffer and resynchronizes after garbage, misalignment, or a corrupted frame
// by dropping one leading byte at a time, so bytes belonging to a following
// valid frame are never lost. Anomalies are counted, never surfaced as
// errors.
//
// An Assembler owns exactly one stream and is not safe for concurrent use.
type Assembler struct {
	addresses map[byte]bool
	buf       []byte
	stats     *Statistics
}

// NewAssembler creates an assembler that accepts frames from the given
// device addresses. Frames from any other address are treated as noise.
func NewAssembler(addresses []byte) *Assembler {
	known := make(map[byte]bool, len(addresses))
	for _, a := range addresses {
		known[a] = true
	}
	return &Assembler{
		addresses: known,
		buf:       make([]byte, 0, MaxPayloadSize+frameOverhead),
		stats:     NewStatistics(),
	}
}

// Stats returns the assembler's diagnostic counters.
func (a *Assembler) Stats() *Statistics {
	return a.stats
}

// Pending returns the number of buffered bytes not yet resolved into a frame.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Feed appends one byte to the accumulation buffer and returns a frame if
// the byte completed one, or nil if more bytes are needed. The result is
// identical whether a stream is fed byte by byte or in arbitrary chunks.
func (a *Assembler) Feed(b byte) *Frame {
	a.buf = append(a.buf, b)
	a.stats.BytesIn.Add(1)

	for len(a.buf) > 0 {
		// Leading byte must be a known device address.
		if !a.addresses[a.buf[0]] {
			a.drop()
			continue
		}

		// Only read responses are decodable; a write acknowledgment or any
		// other function code forces a resync.
		if len(a.buf) > 2 && a.buf[1] != FuncReadRegisters {
			a.drop()
			continue
		}

		if len(a.buf) < payloadOffset {
			return nil
		}

		frameLen := int(a.buf[2]) + frameOverhead
		if len(a.buf) < frameLen {
			return nil
		}

		// Full candidate frame buffered: verify the trailing CRC.
		want := uint16(a.buf[frameLen-2])<<8 | uint16(a.buf[frameLen-1])
		if Checksum(a.buf[:frameLen-2]) != want {
			a.stats.CRCErrors.Add(1)
			a.drop()
			continue
		}

		frame := NewFrame(a.buf[0], a.buf[1], a.buf[payloadOffset:frameLen-2], want)
		a.buf = a.buf[:0]
		a.stats.Frames.Add(1)
		return frame
	}

	return nil
}

// FeedBytes feeds a chunk of bytes and returns every frame completed by it.
func (a *Assembler) FeedBytes(data []byte) []*Frame {
	var frames []*Frame
	for _, b := range data {
		if f := a.Feed(b); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

// drop discards the first buffered byte to regain frame alignment.
func (a *Assembler) drop() {
	a.buf = a.buf[1:]
	a.stats.BytesDropped.Add(1)
}
