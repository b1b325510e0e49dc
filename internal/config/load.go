package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Loaded{
				Path:   resolvedPath,
				Config: cfg,
				Warnings: []Warning{{
					Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
				}},
				Exists: false,
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	warnings, err := Validate(&cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("validate config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// Validate enforces config invariants, patching recoverable fields back to
// defaults and returning non-fatal warnings for them.
func Validate(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	base := strings.TrimSpace(cfg.Service.BaseURL)
	if base == "" {
		return nil, errors.New("service.base_url must not be empty")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("service.base_url %q is not an absolute URL", base)
	}
	cfg.Service.BaseURL = strings.TrimSuffix(base, "/")

	if cfg.Service.TimeoutSeconds <= 0 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("service.timeout_seconds %d is not positive; using default", cfg.Service.TimeoutSeconds),
		})
		cfg.Service.TimeoutSeconds = Default().Service.TimeoutSeconds
	}

	if cfg.Export.PageLines <= 0 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("export.page_lines %d is not positive; using default", cfg.Export.PageLines),
		})
		cfg.Export.PageLines = Default().Export.PageLines
	}

	if strings.TrimSpace(cfg.Chat.Greeting) == "" {
		cfg.Chat.Greeting = Default().Chat.Greeting
	}

	return warnings, nil
}
