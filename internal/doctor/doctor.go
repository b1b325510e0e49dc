// Package doctor runs runtime readiness diagnostics for config, storage,
// the processing service, and audio capture.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tmercer/lectern/internal/audio"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{
		checkConfig(cfg),
		checkStateDir(),
		checkLibraryDir(cfg.Config.Library),
		checkService(cfg.Config.Service),
		checkAudioSelection(cfg.Config.Audio),
	}
	return Report{Checks: checks}
}

// checkConfig reports the config source and any non-fatal warnings.
func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("no file at %q, using defaults", cfg.Path)
	}
	if len(cfg.Warnings) > 0 {
		message = fmt.Sprintf("%s (%d warning(s))", message, len(cfg.Warnings))
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkStateDir verifies the log/state location is writable.
func checkStateDir() Check {
	stateDir, err := config.ResolveStateDir()
	if err != nil {
		return Check{Name: "state.dir", Pass: false, Message: err.Error()}
	}
	dir := filepath.Join(stateDir, "lectern")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "state.dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	return Check{Name: "state.dir", Pass: true, Message: fmt.Sprintf("writable at %s", dir)}
}

// checkLibraryDir verifies the lecture library location is writable.
func checkLibraryDir(cfg config.LibraryConfig) Check {
	dir, err := store.DefaultDir(cfg)
	if err != nil {
		return Check{Name: "library.dir", Pass: false, Message: err.Error()}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "library.dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	return Check{Name: "library.dir", Pass: true, Message: fmt.Sprintf("writable at %s", dir)}
}

// checkService probes the processing service base URL.
func checkService(cfg config.ServiceConfig) Check {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return Check{Name: "service", Pass: false, Message: "service.base_url is empty"}
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(base, "/") + "/")
	if err != nil {
		return Check{Name: "service", Pass: false, Message: fmt.Sprintf("unreachable: %v", err)}
	}
	_ = resp.Body.Close()
	return Check{Name: "service", Pass: true, Message: fmt.Sprintf("reachable at %s (HTTP %d)", base, resp.StatusCode)}
}

// checkAudioSelection runs live device selection to surface capture issues.
func checkAudioSelection(cfg config.AudioConfig) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
