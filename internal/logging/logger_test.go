package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("key", "value"), "key", "value"},
		{"Int", Int("count", 42), "count", 42},
		{"Uint64", Uint64("n", 7), "n", uint64(7)},
		{"Float64", Float64("error", 0.75), "error", 0.75},
		{"Bool", Bool("step_mode", true), "step_mode", true},
		{"Duration", Duration("delay", time.Second), "delay", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.key)
			}
			if tt.field.Value != tt.value {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.value)
			}
		})
	}

	t.Run("Err uses error key", func(t *testing.T) {
		e := errors.New("boom")
		f := Err(e)
		if f.Key != "error" || f.Value != e {
			t.Errorf("Err() = %+v", f)
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "engine")

	logger.Info("configured", Float64("low", 0), Float64("high", 3))
	out := buf.String()

	for _, want := range []string{"engine", "configured", `"high":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.Debug("dbg", String("k", "v"))
	logger.Warn("careful", Int("iteration", 3))
	logger.Error("failed", errors.New("timeout"), Bool("retry", false))

	out := buf.String()
	for _, want := range []string{"dbg", "debug", "careful", "warn", "failed", "timeout", `"retry":false`} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", true)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test").With(String("run", "r1"))

	logger.Info("step")
	if !strings.Contains(buf.String(), "r1") {
		t.Errorf("child logger should carry fields, got: %s", buf.String())
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")

	logger.Printf("iteration %d of %d", 3, 10)
	logger.Println("root", 2.0)

	out := buf.String()
	if !strings.Contains(out, "iteration 3 of 10") {
		t.Errorf("Printf should format message, got: %s", out)
	}
	if !strings.Contains(out, "root 2") {
		t.Errorf("Println should join arguments, got: %s", out)
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("nothing")
	logger.Error("nothing", errors.New("x"))
}
