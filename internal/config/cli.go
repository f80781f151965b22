// Package config holds the root command line of gyromouse.
package config

import "github.com/gyromouse/gyromouse/internal/cmd"

// CLI is parsed by kong. Every field can also come from a config file or an
// environment variable.
type CLI struct {
	ConfigFile string `name:"config" help:"Config file (json, yaml or toml)" type:"path" env:"GYROMOUSE_CONFIG"`

	Log Log `embed:"" prefix:"log."`

	Serve   cmd.Serve          `cmd:"" default:"1" help:"Receive handheld events and synthesize input (default)"`
	Send    cmd.Send           `cmd:"" help:"Send test messages to a receiver"`
	Config  cmd.ConfigCommand  `cmd:"" help:"Manage configuration files"`
	Service cmd.ServiceCommand `cmd:"" help:"Manage the systemd service"`
}

// Log configures logging.
type Log struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"GYROMOUSE_LOG_LEVEL"`
	Format  string `help:"Log format; auto picks text on a terminal and json otherwise" enum:"auto,text,json" default:"auto" env:"GYROMOUSE_LOG_FORMAT"`
	File    string `help:"Also write logs to this file" env:"GYROMOUSE_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every datagram to this file" env:"GYROMOUSE_LOG_RAW_FILE"`
}
