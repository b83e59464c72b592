// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"bytes"
	"testing"
)

// imuPayload builds a 24-byte payload with the same raw big-endian value in
// every field of each group.
func imuPayload(accel, angular, mag, angle uint16) []byte {
	var p []byte
	for _, raw := range []uint16{accel, angular, mag, angle} {
		for i := 0; i < 3; i++ {
			p = append(p, byte(raw>>8), byte(raw))
		}
	}
	return p
}

func TestDecode_IMUScales(t *testing.T) {
	tests := []struct {
		name        string
		payload     []byte
		wantAccel   float64
		wantAngular float64
		wantMag     float64
		wantAngle   float64
	}{
		{
			name:        "positive mid-range",
			payload:     imuPayload(0x4000, 0x2000, 0x0064, 0x4000),
			wantAccel:   8.0,   // 16384/32768*16
			wantAngular: 500.0, // 8192/32768*2000
			wantMag:     1.3,   // 100*13/1000
			wantAngle:   90.0,  // 16384/32768*180
		},
		{
			name:        "negative values sign-extend",
			payload:     imuPayload(0xC000, 0xE000, 0xFF9C, 0x8000),
			wantAccel:   -8.0,   // -16384/32768*16
			wantAngular: -500.0, // -8192/32768*2000
			wantMag:     -1.3,   // -100*13/1000
			wantAngle:   -180.0, // -32768/32768*180
		},
		{
			name:        "zero",
			payload:     imuPayload(0, 0, 0, 0),
			wantAccel:   0,
			wantAngular: 0,
			wantMag:     0,
			wantAngle:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(0x50, FuncReadRegisters, tt.payload, 0)
			values, _ := Decode(f, ReadContext{})

			if len(values) != 12 {
				t.Fatalf("decoded %d registers, want 12", len(values))
			}
			checks := map[string]float64{
				KeyAccX: tt.wantAccel, KeyAccY: tt.wantAccel, KeyAccZ: tt.wantAccel,
				KeyAsX: tt.wantAngular, KeyAsY: tt.wantAngular, KeyAsZ: tt.wantAngular,
				KeyHX: tt.wantMag, KeyHY: tt.wantMag, KeyHZ: tt.wantMag,
				KeyAngX: tt.wantAngle, KeyAngY: tt.wantAngle, KeyAngZ: tt.wantAngle,
			}
			for key, want := range checks {
				if got, ok := values[key]; !ok || got != want {
					t.Errorf("%s = %v (present=%v), want %v", key, got, ok, want)
				}
			}
		})
	}
}

func TestDecode_IMURounding(t *testing.T) {
	// Raw 1 in an acceleration field: 1/32768*16 = 0.00048828125 → 0.0
	// Raw 3: 3/32768*16 = 0.00146484375 → 0.001
	p := imuPayload(0, 0, 0, 0)
	p[0], p[1] = 0x00, 0x01
	p[2], p[3] = 0x00, 0x03

	f := NewFrame(0x50, FuncReadRegisters, p, 0)
	values, _ := Decode(f, ReadContext{})

	if got := values[KeyAccX]; got != 0.0 {
		t.Errorf("AccX = %v, want 0.0", got)
	}
	if got := values[KeyAccY]; got != 0.001 {
		t.Errorf("AccY = %v, want 0.001", got)
	}
}

// The fixed policy does not touch the read context: an unrelated vibration
// frame between a read and its response must not disturb the cursor.
func TestDecode_IMULeavesContextAlone(t *testing.T) {
	f := NewFrame(0x50, FuncReadRegisters, imuPayload(0, 0, 0, 0), 0)
	ctx := NewReadContext(0x23)

	_, next := Decode(f, ctx)
	if !next.Active() || next.Register() != 0x23 {
		t.Errorf("context after IMU frame = {active:%v reg:0x%02X}, want unchanged", next.Active(), next.Register())
	}
}

func TestDecode_Generic(t *testing.T) {
	// 0x4000 → 0.5, 0x8000 → -1.0
	f := NewFrame(0x50, FuncReadRegisters, []byte{0x40, 0x00, 0x80, 0x00}, 0)
	values, next := Decode(f, NewReadContext(10))

	if len(values) != 2 {
		t.Fatalf("decoded %d registers, want 2", len(values))
	}
	if got := values["10"]; got != 0.5 {
		t.Errorf("register 10 = %v, want 0.5", got)
	}
	if got := values["11"]; got != -1.0 {
		t.Errorf("register 11 = %v, want -1.0", got)
	}
	if next.Register() != 12 {
		t.Errorf("context advanced to %d, want 12", next.Register())
	}
}

func TestDecode_GenericWithoutContext(t *testing.T) {
	f := NewFrame(0x50, FuncReadRegisters, []byte{0x40, 0x00}, 0)
	values, _ := Decode(f, ReadContext{})
	if len(values) != 0 {
		t.Errorf("decoded %d registers without a pending read, want 0", len(values))
	}
}

// Dispatch is by payload length alone: a generic read that happens to return
// 12 registers is decoded as a vibration block. Inherent wire ambiguity.
func TestDecode_Length24AlwaysIMU(t *testing.T) {
	f := NewFrame(0x50, FuncReadRegisters, bytes.Repeat([]byte{0x40, 0x00}, 12), 0)
	values, next := Decode(f, NewReadContext(0x10))

	if _, ok := values[KeyAccX]; !ok {
		t.Error("24-byte payload did not take the fixed IMU policy")
	}
	if next.Register() != 0x10 {
		t.Errorf("context advanced to 0x%02X, want untouched 0x10", next.Register())
	}
}

func TestSignInt16(t *testing.T) {
	tests := []struct {
		hi, lo byte
		want   int16
	}{
		{0x00, 0x00, 0},
		{0x00, 0x01, 1},
		{0x7F, 0xFF, 32767},
		{0x80, 0x00, -32768},
		{0xFF, 0xFF, -1},
	}
	for _, tt := range tests {
		if got := signInt16(tt.hi, tt.lo); got != tt.want {
			t.Errorf("signInt16(0x%02X, 0x%02X) = %d, want %d", tt.hi, tt.lo, got, tt.want)
		}
	}
}
