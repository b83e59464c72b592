// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"fmt"
	"sort"
	"strings"
)

// FormatBytes renders a byte sequence as space-separated uppercase hex,
// matching the vendor manual's notation.
func FormatBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// FormatFrame renders a frame header and payload on one line.
func FormatFrame(f *Frame) string {
	return fmt.Sprintf("[%s] addr=0x%02X func=0x%02X len=%d crc=0x%04X payload=%s",
		f.Timestamp().Format("15:04:05.000"),
		f.Address(), f.Function(), len(f.Payload()), f.CRC(),
		FormatBytes(f.Payload()))
}

// FormatSnapshot renders a register snapshot as "key=value" pairs in stable
// order. IMU keys keep their payload order; numeric keys sort numerically.
func FormatSnapshot(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keyRank(keys[i]) < keyRank(keys[j])
	})

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%.3f", k, values[k])
	}
	return strings.Join(parts, " ")
}

// keyRank orders IMU keys by payload position and numeric keys after them
// by register address.
func keyRank(key string) int {
	for i, k := range imuKeys {
		if k == key {
			return i
		}
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 1 << 20 // non-numeric stragglers last
		}
		n = n*10 + int(c-'0')
	}
	return len(imuKeys) + n
}
