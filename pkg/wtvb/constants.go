// SPDX-License-Identifier: Apache-2.0

// Package wtvb implements the Modbus-RTU register protocol spoken by
// WTVB02-class RS485 vibration sensors.
//
// The package covers the full wire cycle: CRC-16/MODBUS checksums, a
// resynchronizing frame assembler for the unreliable byte stream, register
// decoding into physical quantities, and command encoding for register reads
// and the unlock/write/save sequence required for persistent writes.
package wtvb

// Function codes
const (
	FuncReadRegisters = 0x03
	FuncWriteRegister = 0x06
)

// Frame layout. A read response is
// [address][0x03][byte_count][payload...][crc_hi][crc_lo], so the total
// frame length is byte_count + 5.
const (
	frameOverhead  = 5 // address + function + length + 2 CRC bytes
	payloadOffset  = 3
	RequestSize    = 8 // read and write requests are always 8 bytes
	MaxPayloadSize = 250
)

// Control registers. The unlock key must be written to RegUnlock before any
// register write takes effect, and RegSave must be written afterwards or the
// device drops the change on power cycle. Vendor-fixed, not configurable.
const (
	RegUnlock = 0x69
	RegSave   = 0x00

	UnlockKey = 0xB588
	SaveValue = 0x0000
)

// Vibration data block. Reading DataBlockCount registers from DataBlockReg
// returns the 24-byte payload decoded by the fixed IMU policy.
const (
	DataBlockReg   = 0x34
	DataBlockCount = 12

	imuPayloadLen = 24
)

// Register keys produced by the fixed IMU decode policy, in payload order.
const (
	KeyAccX = "AccX"
	KeyAccY = "AccY"
	KeyAccZ = "AccZ"
	KeyAsX  = "AsX"
	KeyAsY  = "AsY"
	KeyAsZ  = "AsZ"
	KeyHX   = "HX"
	KeyHY   = "HY"
	KeyHZ   = "HZ"
	KeyAngX = "AngX"
	KeyAngY = "AngY"
	KeyAngZ = "AngZ"
)

// imuKeys lists the IMU register keys in the order their fields appear in a
// 24-byte payload.
var imuKeys = []string{
	KeyAccX, KeyAccY, KeyAccZ,
	KeyAsX, KeyAsY, KeyAsZ,
	KeyHX, KeyHY, KeyHZ,
	KeyAngX, KeyAngY, KeyAngZ,
}

// Decode scale factors (per the WTVB02 register manual)
const (
	scaleAccel   = 16.0 / 32768.0   // g per LSB
	scaleAngular = 2000.0 / 32768.0 // deg/s per LSB
	scaleMag     = 13.0 / 1000.0    // normalized field per LSB
	scaleAngle   = 180.0 / 32768.0  // degrees per LSB
	scaleGeneric = 1.0 / 32768.0    // normalized register value
)
