// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wtvb.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetFlags(t *testing.T) {
	t.Helper()
	origPort, origBaud, origAddrs, origDebug := portName, baudRate, addresses, debug
	t.Cleanup(func() {
		portName, baudRate, addresses, debug = origPort, origBaud, origAddrs, origDebug
		configPath = ""
	})
}

func TestApplyConfigFile(t *testing.T) {
	resetFlags(t)

	configPath = writeConfig(t, `
port = "/dev/ttyUSB1"
baud = 115200
addresses = [0x50, 0x51]
debug = true
`)

	if err := applyConfigFile(rootCmd); err != nil {
		t.Fatalf("applyConfigFile: %v", err)
	}
	if portName != "/dev/ttyUSB1" {
		t.Errorf("port = %q", portName)
	}
	if baudRate != 115200 {
		t.Errorf("baud = %d", baudRate)
	}
	if !reflect.DeepEqual(addresses, []int{0x50, 0x51}) {
		t.Errorf("addresses = %v", addresses)
	}
	if !debug {
		t.Error("debug not applied")
	}
}

func TestApplyConfigFile_PartialFileKeepsDefaults(t *testing.T) {
	resetFlags(t)
	baudRate = 230400

	configPath = writeConfig(t, `port = "/dev/ttyS0"`)

	if err := applyConfigFile(rootCmd); err != nil {
		t.Fatalf("applyConfigFile: %v", err)
	}
	if portName != "/dev/ttyS0" {
		t.Errorf("port = %q", portName)
	}
	if baudRate != 230400 {
		t.Errorf("baud overwritten to %d", baudRate)
	}
}

func TestApplyConfigFile_UnknownKey(t *testing.T) {
	resetFlags(t)
	configPath = writeConfig(t, `prot = "/dev/ttyUSB0"`)

	if err := applyConfigFile(rootCmd); err == nil {
		t.Error("misspelled config key silently accepted")
	}
}

func TestApplyConfigFile_InvalidBaud(t *testing.T) {
	resetFlags(t)
	configPath = writeConfig(t, `baud = -9600`)

	if err := applyConfigFile(rootCmd); err == nil {
		t.Error("negative baud accepted")
	}
}

func TestDeviceAddresses(t *testing.T) {
	resetFlags(t)

	addresses = []int{0x50, 0x51}
	got, err := deviceAddresses()
	if err != nil {
		t.Fatalf("deviceAddresses: %v", err)
	}
	if !reflect.DeepEqual(got, []byte{0x50, 0x51}) {
		t.Errorf("addresses = %v", got)
	}

	addresses = []int{300}
	if _, err := deviceAddresses(); err == nil {
		t.Error("out-of-range address accepted")
	}

	addresses = nil
	if _, err := deviceAddresses(); err == nil {
		t.Error("empty address list accepted")
	}
}
