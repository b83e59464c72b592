// SPDX-License-Identifier: Apache-2.0

package wtvb

import "errors"

// Sentinel errors returned by the Device layer. Stream-level anomalies
// (garbage, CRC mismatches, truncated frames) are never errors; they are
// recovered by resynchronization and show up only in Statistics.
var (
	// ErrReadPending is returned when a read is issued while a previous
	// read's response is still outstanding on the same device.
	ErrReadPending = errors.New("wtvb: read already pending for device")

	// ErrUnknownAddress is returned for commands addressed to a device the
	// session was not configured with.
	ErrUnknownAddress = errors.New("wtvb: address not configured")

	// ErrVerifyMismatch is returned by verified writes when the read-back
	// value does not match the value written.
	ErrVerifyMismatch = errors.New("wtvb: write verification mismatch")

	// ErrVerifyTimeout is returned by verified writes when no read-back
	// response arrives within the verification window.
	ErrVerifyTimeout = errors.New("wtvb: write verification timed out")
)
