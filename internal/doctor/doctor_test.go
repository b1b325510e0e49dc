package doctor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "config", Pass: true, Message: "loaded"},
		{Name: "service", Pass: false, Message: "unreachable"},
	}}

	require.False(t, report.OK())
	require.Equal(t, "[OK] config: loaded\n[FAIL] service: unreachable", report.String())

	require.True(t, Report{Checks: []Check{{Name: "config", Pass: true}}}.OK())
}

func TestCheckConfigMessages(t *testing.T) {
	loaded := config.Loaded{Path: "/tmp/config.yaml", Exists: true}
	check := checkConfig(loaded)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, `loaded "/tmp/config.yaml"`)

	loaded.Exists = false
	loaded.Warnings = []config.Warning{{Message: "bad timeout"}}
	check = checkConfig(loaded)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "using defaults")
	require.Contains(t, check.Message, "1 warning(s)")
}

func TestCheckServiceReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	check := checkService(config.ServiceConfig{BaseURL: server.URL})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 404")
}

func TestCheckServiceFailures(t *testing.T) {
	check := checkService(config.ServiceConfig{BaseURL: ""})
	require.False(t, check.Pass)

	check = checkService(config.ServiceConfig{BaseURL: "http://127.0.0.1:1"})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "unreachable")
}

func TestCheckStateDirUsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	check := checkStateDir()
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "writable at")
}

func TestCheckLibraryDirUsesConfiguredOverride(t *testing.T) {
	dir := t.TempDir()

	check := checkLibraryDir(config.LibraryConfig{Dir: dir})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, dir)
}
