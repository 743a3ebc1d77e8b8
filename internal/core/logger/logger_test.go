package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with default options", func(t *testing.T) {
		logger := New()
		if logger == nil {
			t.Fatal("expected logger, got nil")
		}
	})

	t.Run("creates logger with custom options", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(
			WithOutput(&buf),
			WithLevel(slog.LevelDebug),
			WithFormat(FormatText),
		)

		logger.Debug("merge started", "tool", "spork")
		output := buf.String()

		if !strings.Contains(output, "merge started") {
			t.Errorf("expected output to contain 'merge started', got: %s", output)
		}
		if !strings.Contains(output, "tool=spork") {
			t.Errorf("expected output to contain 'tool=spork', got: %s", output)
		}
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(
			WithOutput(&buf),
			WithLevel(slog.LevelWarn),
		)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("debug message should not appear with warn level")
		}
		if strings.Contains(output, "info message") {
			t.Error("info message should not appear with warn level")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("warn message should appear with warn level")
		}
		if !strings.Contains(output, "error message") {
			t.Error("error message should appear with warn level")
		}
	})

	t.Run("JSON format produces JSON output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(
			WithOutput(&buf),
			WithFormat(FormatJSON),
		)

		logger.Info("overlay applied", "files", 3)
		output := buf.String()

		if !strings.Contains(output, `"msg":"overlay applied"`) {
			t.Errorf("expected JSON output, got: %s", output)
		}
	})
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}

	// Should not panic
	logger.Debug("discarded")
	logger.Info("discarded")
	logger.Warn("discarded")
	logger.Error("discarded")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf))

	child := logger.With("repo", "example/project")
	child.Info("checkout")

	output := buf.String()
	if !strings.Contains(output, "repo=example/project") {
		t.Errorf("expected field from With, got: %s", output)
	}
}

func TestContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(WithOutput(&buf))

		ctx := WithContext(context.Background(), logger)
		got := FromContext(ctx)

		got.Info("from context")
		if !strings.Contains(buf.String(), "from context") {
			t.Error("expected logger from context to write to buffer")
		}
	})

	t.Run("returns nop logger when absent", func(t *testing.T) {
		got := FromContext(context.Background())
		if got == nil {
			t.Fatal("expected logger, got nil")
		}
		got.Info("discarded")
	})
}
