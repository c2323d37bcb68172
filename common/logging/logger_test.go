package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/telhawk-systems/opsboard/common/middleware"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		format    string
		wantJSON  bool
		logAtInfo bool
	}{
		{
			name:      "json format with info level",
			level:     slog.LevelInfo,
			format:    "json",
			wantJSON:  true,
			logAtInfo: true,
		},
		{
			name:      "text format with debug level",
			level:     slog.LevelDebug,
			format:    "text",
			wantJSON:  false,
			logAtInfo: true,
		},
		{
			name:      "default format with error level",
			level:     slog.LevelError,
			format:    "",
			wantJSON:  true,
			logAtInfo: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf, tt.level, tt.format)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected non-nil logger")
			}

			logger.Info("poll complete", slog.String("endpoint", "/stats/overview"))

			if !tt.logAtInfo {
				if buf.Len() != 0 {
					t.Fatalf("expected info record to be filtered, got %q", buf.String())
				}
				return
			}

			out := buf.String()
			if !strings.Contains(out, "poll complete") {
				t.Fatalf("expected message in output, got %q", out)
			}
			var decoded map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &decoded) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v (%q)", isJSON, tt.wantJSON, out)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	logger.InfoContext(ctx, "dashboard served")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}
	if record[FieldRequestID] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", record[FieldRequestID])
	}

	buf.Reset()
	logger.InfoContext(context.Background(), "no request")
	if strings.Contains(buf.String(), FieldRequestID) {
		t.Errorf("did not expect request_id in %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Error("dropped")
}
