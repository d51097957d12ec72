package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestNewTestLogger(t *testing.T) {
	// Test with a buffer
	buf := &bytes.Buffer{}
	logger := NewTestLogger(buf)
	if logger == nil {
		t.Error("NewTestLogger returned nil")
	}

	// Test logging
	logger.Info("test message", "key", "value")
	if buf.Len() == 0 {
		t.Error("Logger did not write to buffer")
	}

	// Test with nil writer (should use io.Discard)
	logger = NewTestLogger(nil)
	if logger == nil {
		t.Error("NewTestLogger returned nil with nil writer")
	}
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	if logger == nil {
		t.Error("DiscardLogger returned nil")
	}

	// Test that it doesn't panic
	logger.Info("test message", "key", "value")
	logger.Debug("debug message", "key", "value")
	logger.Warn("warning message", "key", "value")
	logger.Error("error message", "key", "value")
}

func TestNewTLogger(t *testing.T) {
	logger := NewTLogger(t)
	logger.Debug("routed through t.Log", "session_id", "journey_abc")
}

func TestSafeBufferConcurrentWrites(t *testing.T) {
	var buf SafeBuffer
	logger := NewTestLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("alert sent")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "alert sent"); got != 8 {
		t.Errorf("found %d log lines, want 8", got)
	}
}
