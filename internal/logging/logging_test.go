package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestNewTagsRunAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, run := New(&buf, "warn", nil)
	log.Info("hidden")
	log.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("level not applied:\n%s", out)
	}
	if run == "" || !strings.Contains(out, "run="+run) {
		t.Fatalf("run id missing:\n%s", out)
	}
}

func TestEnvOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	log, _ := New(&buf, "error", envOf(map[string]string{EnvLevel: "debug"}))
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("env level ignored:\n%s", buf.String())
	}
}

func TestProcessEnvIsNotConsulted(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	log, _ := New(&buf, "info", envOf(nil))
	log.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("process environment leaked into the level:\n%s", buf.String())
	}
}

func TestParseLevelFallback(t *testing.T) {
	if ParseLevel("nonsense") != slog.LevelInfo || ParseLevel("ERROR") != slog.LevelError {
		t.Fatalf("unexpected levels")
	}
}
