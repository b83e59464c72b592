// SPDX-License-Identifier: Apache-2.0

package wtvb

// Command builder functions produce wire-ready request frames. They are pure:
// sequencing and transmission belong to the Device layer.

// BuildReadRequest encodes a request to read count registers starting at reg.
func BuildReadRequest(address byte, reg, count uint16) []byte {
	return buildRequest(address, FuncReadRegisters, reg, count)
}

// BuildWriteRequest encodes a request to write value to a single register.
// The write only takes effect between an unlock and a save (see
// BuildUnlock and BuildSave).
func BuildWriteRequest(address byte, reg, value uint16) []byte {
	return buildRequest(address, FuncWriteRegister, reg, value)
}

// BuildUnlock encodes the write-enable command. Registers are write-protected
// until the vendor unlock key is written to the unlock register.
func BuildUnlock(address byte) []byte {
	return BuildWriteRequest(address, RegUnlock, UnlockKey)
}

// BuildSave encodes the persist command that commits prior writes to
// non-volatile storage.
func BuildSave(address byte) []byte {
	return BuildWriteRequest(address, RegSave, SaveValue)
}

// buildRequest assembles the fixed 8-byte request layout:
// [address][func][reg_hi][reg_lo][arg_hi][arg_lo][crc_hi][crc_lo],
// checksum over the first 6 bytes.
func buildRequest(address, function byte, reg, arg uint16) []byte {
	req := make([]byte, RequestSize)
	req[0] = address
	req[1] = function
	req[2] = byte(reg >> 8)
	req[3] = byte(reg)
	req[4] = byte(arg >> 8)
	req[5] = byte(arg)

	crc := Checksum(req[:6])
	req[6] = byte(crc >> 8)
	req[7] = byte(crc)
	return req
}
