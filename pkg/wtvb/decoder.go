// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"math"
	"strconv"
)

// ReadContext carries the register address a previously issued read targeted.
// Generic read responses do not identify the registers they contain, so the
// response can only be interpreted against the request that caused it.
//
// The context is a value: Decode consumes the one passed in and returns the
// advanced one. Callers must keep at most one read outstanding per device or
// responses become unattributable (see Device.ReadRegisters).
type ReadContext struct {
	reg    uint16
	active bool
}

// NewReadContext returns a context for a read that targeted reg.
func NewReadContext(reg uint16) ReadContext {
	return ReadContext{reg: reg, active: true}
}

// Active reports whether a read is outstanding.
func (c ReadContext) Active() bool {
	return c.active
}

// Register returns the register address the next decoded value maps to.
func (c ReadContext) Register() uint16 {
	return c.reg
}

// Decode interprets a validated frame's payload into named register values.
//
// Two mutually exclusive policies, selected only by payload length:
//
//   - 24 bytes: the fixed vibration data block. Twelve signed 16-bit fields
//     decode to acceleration (g), angular rate (deg/s), magnetic field, and
//     angle (degrees) on three axes each. The read context is not consumed.
//   - anything else: a generic register read. Each signed 16-bit field scales
//     to value/32768 and is keyed by the decimal register address from ctx,
//     which advances one register per field. Without an active context the
//     payload is undecodable and the frame decodes to nothing.
//
// A register block read that happens to return exactly 12 registers is
// indistinguishable from the vibration block and takes the fixed policy;
// that ambiguity is inherent to the wire format.
func Decode(f *Frame, ctx ReadContext) (map[string]float64, ReadContext) {
	payload := f.Payload()

	if len(payload) == imuPayloadLen {
		return decodeIMU(payload), ctx
	}

	if !ctx.Active() {
		return nil, ctx
	}

	values := make(map[string]float64, len(payload)/2)
	for i := 0; i+1 < len(payload); i += 2 {
		v := signInt16(payload[i], payload[i+1])
		values[strconv.Itoa(int(ctx.reg))] = round3(float64(v) * scaleGeneric)
		ctx.reg++
	}
	return values, ctx
}

// decodeIMU applies the fixed vibration block layout: four groups of three
// axes, each field two bytes big-endian.
func decodeIMU(payload []byte) map[string]float64 {
	scales := [4]float64{scaleAccel, scaleAngular, scaleMag, scaleAngle}

	values := make(map[string]float64, len(imuKeys))
	for i, key := range imuKeys {
		v := signInt16(payload[2*i], payload[2*i+1])
		values[key] = round3(float64(v) * scales[i/3])
	}
	return values
}

// signInt16 combines a big-endian byte pair into a signed 16-bit quantity.
func signInt16(hi, lo byte) int16 {
	return int16(uint16(hi)<<8 | uint16(lo))
}

// round3 rounds to 3 decimal places, the resolution the device manual
// documents for every derived quantity.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
