package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, level := range Levels {
		t.Run(level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := InitLogger(level, "text", &buf); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			logger := GetLogger()
			if logger == nil {
				t.Fatal("GetLogger() returned nil")
			}
		})
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := InitLogger("invalid", "text", nil); err == nil {
		t.Error("expected error for invalid log level, got nil")
	}
}

func TestInitLogger_InvalidFormat(t *testing.T) {
	if err := InitLogger("info", "xml", nil); err == nil {
		t.Error("expected error for invalid log format, got nil")
	}
}

func TestInitLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := InitLogger("warn", "text", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	GetLogger().Info("hidden")
	GetLogger().Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestInitLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitLogger("debug", "json", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	GetLogger().Debug("calling function", "name", "f")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "calling function" || record["name"] != "f" {
		t.Errorf("unexpected record %v", record)
	}
}

func TestGetLogger_BeforeInit(t *testing.T) {
	// globalLoggerをリセット
	globalLogger = nil

	logger := GetLogger()
	if logger == nil {
		t.Error("GetLogger() should return default logger when not initialized")
	}

	// デフォルトロガーが返されることを確認
	if logger != slog.Default() {
		t.Error("GetLogger() should return slog.Default() when not initialized")
	}
}

func TestGetLogger_AfterInit(t *testing.T) {
	if err := InitLogger("info", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := GetLogger()
	if logger != globalLogger {
		t.Error("GetLogger() should return the initialized logger")
	}
}
