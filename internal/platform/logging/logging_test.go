package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "debug", Dir: dir, Filename: "test.log"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.InfoTag("boot", "service starting on port %d", 8080)
	logger.Warn("plain warning")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "service starting on port 8080") {
		t.Errorf("tagged message missing from log: %s", content)
	}
	if !strings.Contains(content, "plain warning") {
		t.Errorf("plain message missing from log: %s", content)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "error", Dir: dir, Filename: "test.log"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	logger.Debug("should be filtered")
	logger.Error("should appear")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "should be filtered") {
		t.Error("debug message leaked past error level")
	}
	if !strings.Contains(content, "should appear") {
		t.Error("error message missing")
	}
}

func TestFormatLog(t *testing.T) {
	got := FormatLog("http", "request done")
	if !strings.Contains(got, "[http]") || !strings.Contains(got, "request done") {
		t.Errorf("FormatLog = %q", got)
	}
}

func TestNilLoggerTagMethodsAreSafe(t *testing.T) {
	var logger *Logger
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.DebugTag("x", "ok")
		logger.InfoTag("x", "ok")
		logger.WarnTag("x", "ok")
		logger.ErrorTag("x", "ok")
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nil logger calls hung")
	}
}
