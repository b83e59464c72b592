// SPDX-License-Identifier: Apache-2.0

package wtvb

import "time"

// Frame is a complete, checksum-validated protocol message extracted from
// the byte stream by an Assembler.
type Frame struct {
	address   byte
	function  byte
	payload   []byte
	crc       uint16
	timestamp time.Time
}

// NewFrame builds a frame from already-validated fields. The payload is
// copied so the frame stays valid after the source buffer is reused.
func NewFrame(address, function byte, payload []byte, crc uint16) *Frame {
	p := make([]byte, len(payload))
	copy(p, payload)
	return &Frame{
		address:   address,
		function:  function,
		payload:   p,
		crc:       crc,
		timestamp: time.Now(),
	}
}

// Address returns the device address the frame came from.
func (f *Frame) Address() byte {
	return f.address
}

// Function returns the frame's function code.
func (f *Frame) Function() byte {
	return f.function
}

// Payload returns the frame's register payload bytes.
func (f *Frame) Payload() []byte {
	return f.payload
}

// CRC returns the checksum carried by the frame.
func (f *Frame) CRC() uint16 {
	return f.crc
}

// Timestamp returns the time the frame was assembled.
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}
