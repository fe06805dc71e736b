package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	Reset()

	// Must not panic before Init.
	Debug("before init", zap.Int("parts", 9))
	Warn("before init")
	Sugar.Infof("before init %d", 1)
	Sync()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()
	defer Reset()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(tempDir, tt.level+".log")

			cfg := FileConfig{
				Path:       logFile,
				MaxSizeMB:  10,
				MaxBackups: 1,
				MaxAgeDays: 1,
			}
			if err := Setup(Options{Level: tt.level, File: cfg}); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("part built", zap.String("part", "head0"))
			Info("army ready", zap.Int("instances", 1000))
			Warn("part draw rejected")
			Error("device lost")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestStructuredFieldsReachFile(t *testing.T) {
	defer Reset()

	logFile := filepath.Join(t.TempDir(), "fields.log")
	if err := Setup(Options{Level: "info", File: FileConfig{Path: logFile, MaxSizeMB: 1}}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("frame", zap.Int("visible", 412))
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, `"visible":412`) || !strings.Contains(line, `"msg":"frame"`) {
		t.Errorf("field missing from log line: %s", content)
	}
	if !strings.Contains(line, "logger_test.go") {
		t.Errorf("caller should point at the logging call site: %s", content)
	}
}

func TestFileConfigDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   FileConfig
		want FileConfig
	}{
		{
			name: "unset limits",
			in:   FileConfig{Path: "horde.log"},
			want: FileConfig{Path: "horde.log", MaxSizeMB: 20, MaxBackups: 5, MaxAgeDays: 14},
		},
		{
			name: "explicit limits kept",
			in:   FileConfig{Path: "horde.log", MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 3, Compress: true},
			want: FileConfig{Path: "horde.log", MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 3, Compress: true},
		},
		{
			name: "negative limits replaced",
			in:   FileConfig{MaxSizeMB: -1, MaxBackups: -1, MaxAgeDays: -1},
			want: FileConfig{MaxSizeMB: 20, MaxBackups: 5, MaxAgeDays: 14},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetupWithoutSinksStaysSilent(t *testing.T) {
	defer Reset()

	if err := Setup(Options{Level: "debug"}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without sinks should discard everything")
	}
}
