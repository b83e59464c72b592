// SPDX-License-Identifier: Apache-2.0
//
// RS485-WTVB02 - WitMotion WTVB02 vibration sensor tool
//
// Polls WTVB02-class RS485 vibration/IMU sensors over a Modbus-RTU-like
// protocol, decodes register frames into physical quantities, and provides
// monitoring, register access, capture, and a live dashboard.

package main

import (
	"os"

	"github.com/unrealex/RS485-WTVB02/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
