// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// fileConfig mirrors the optional TOML config file. Every field maps to a
// persistent flag; explicitly set flags always win over the file.
type fileConfig struct {
	Port      string `toml:"port"`
	Baud      int    `toml:"baud"`
	URL       string `toml:"url"`
	Username  string `toml:"username"`
	Addresses []int  `toml:"addresses"`
	Debug     bool   `toml:"debug"`
}

// applyConfigFile overlays config file values under any flags the user did
// not set on the command line. Without --config it is a no-op.
func applyConfigFile(cmd *cobra.Command) error {
	if configPath == "" {
		return nil
	}

	var cfg fileConfig
	meta, err := toml.DecodeFile(configPath, &cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", configPath, undecoded[0].String())
	}

	flags := cmd.Root().PersistentFlags()

	if meta.IsDefined("port") && !flags.Changed("port") {
		portName = cfg.Port
	}
	if meta.IsDefined("baud") && !flags.Changed("baud") {
		if cfg.Baud <= 0 {
			return fmt.Errorf("config %s: baud must be positive", configPath)
		}
		baudRate = cfg.Baud
	}
	if meta.IsDefined("url") && !flags.Changed("url") {
		wsURL = cfg.URL
	}
	if meta.IsDefined("username") && !flags.Changed("username") {
		wsUsername = cfg.Username
	}
	if meta.IsDefined("addresses") && !flags.Changed("address") {
		addresses = cfg.Addresses
	}
	if meta.IsDefined("debug") && !flags.Changed("debug") {
		debug = cfg.Debug
	}
	return nil
}
