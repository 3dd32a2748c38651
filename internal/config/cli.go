// Package config defines the top-level kong command tree for the hidrelay
// CLI: global logging flags plus the run and config subcommands.
package config

import "github.com/hidrelay/bridge/internal/cmd"

// CLI is the root kong command structure for cmd/hidrelay.
type CLI struct {
	Log struct {
		Level   string `help:"Log level: trace, debug, info, warn, error" default:"info"`
		File    string `help:"Optional path to also write JSON logs to a file"`
		RawFile string `help:"Optional path to write a raw hex dump of every report to"`
	} `embed:"" prefix:"log-"`

	Config string `help:"Path to a config file (json/yaml/toml)" optional:""`

	Run       cmd.RunCmd        `cmd:"" help:"Attach a hidraw device and bridge it to a sink"`
	ConfigCmd cmd.ConfigCommand `cmd:"config" help:"Configuration file tools"`
}
