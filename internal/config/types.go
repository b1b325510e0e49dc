// Package config resolves, parses, validates, and defaults lectern configuration.
package config

// Config is the fully materialized runtime configuration used by lectern.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Audio   AudioConfig   `yaml:"audio"`
	Library LibraryConfig `yaml:"library"`
	Export  ExportConfig  `yaml:"export"`
	Chat    ChatConfig    `yaml:"chat"`
}

// ServiceConfig locates the remote lecture-processing service.
type ServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `yaml:"input"`
	Fallback string `yaml:"fallback"`
}

// LibraryConfig controls where processed lectures are stored.
type LibraryConfig struct {
	Dir string `yaml:"dir"`
}

// ExportConfig controls the notes document output.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	PageLines int    `yaml:"page_lines"`
}

// ChatConfig controls the seeded assistant greeting.
type ChatConfig struct {
	Greeting string `yaml:"greeting"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
