package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/deixis/glyphrun/internal/config"
)

func TestNew_RunIDAttached(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{}, &buf)

	ctx := WithRunID(context.Background(), "run-123")
	log.InfoContext(ctx, "run finished", "items", 2)

	out := buf.String()
	if !strings.Contains(out, "run_id=run-123") {
		t.Errorf("output = %q, want run_id=run-123", out)
	}
	if !strings.Contains(out, "items=2") {
		t.Errorf("output = %q, want items=2", out)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{Log: config.LogConfig{Format: "json"}}, &buf)
	log.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("output = %q, want JSON", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{Log: config.LogConfig{Level: "warn"}}, &buf)
	log.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}
	log.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestToJournalKey(t *testing.T) {
	if got := toJournalKey("run_id.x-y"); got != "RUN_ID_X_Y" {
		t.Errorf("toJournalKey = %q, want RUN_ID_X_Y", got)
	}
}
