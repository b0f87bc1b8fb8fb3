// Package config loads server configuration for the RESP request front
// end: bind address, connection limits, and the protocol size bounds the
// resp package enforces.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ServerProperties holds what a parser-fronting server actually needs:
// no persistence, no cluster, no ACL fields.
type ServerProperties struct {
	Bind       string `yaml:"bind"`
	Port       int    `yaml:"port"`
	MaxClients int    `yaml:"max-clients"`

	// Overrides for the resp package's protocol size bounds. A field the
	// file leaves unset stays zero, which downstream means "use the
	// package default".
	MaxInlineSize   int `yaml:"max-inline-size"`
	MaxMultiBulkLen int `yaml:"max-multibulk-len"`
	MaxBulkLen      int `yaml:"max-bulk-len"`
}

// Properties holds the active configuration, populated by Load or left
// at its zero value's caller-supplied default.
var Properties *ServerProperties

// Load reads a YAML configuration file into Properties.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	props := &ServerProperties{}
	if err := yaml.Unmarshal(data, props); err != nil {
		return err
	}
	Properties = props
	return nil
}
