package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.MockMode || cfg.Transport != TransportStdio || cfg.SessionStore != StoreMemory || cfg.Notifier != NotifierMock {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.NotifyTimeout != 5*time.Second {
		t.Errorf("durations = %v, %v", cfg.SessionTTL, cfg.NotifyTimeout)
	}
	if cfg.NeedsRedis() {
		t.Error("default config should not need redis")
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MOCK_MODE", "false")
	t.Setenv("TRANSPORT", "sse")
	t.Setenv("SSE_ADDR", ":9090")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("NOTIFY_TIMEOUT", "750ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MockMode || cfg.Transport != TransportSSE || cfg.SSEAddr != ":9090" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.NotifyTimeout != 750*time.Millisecond {
		t.Errorf("durations = %v, %v", cfg.SessionTTL, cfg.NotifyTimeout)
	}
	if !cfg.NeedsRedis() {
		t.Error("redis session store should need redis")
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sydneymcp.yaml")
	content := "NOTIFIER: redis\nREDIS_ADDR: cache:6379\nUSER_AGENT: guide-test/1.0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDIS_ADDR", "override:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifier != NotifierRedis || cfg.UserAgent != "guide-test/1.0" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RedisAddr != "override:6380" {
		t.Errorf("REDIS_ADDR = %q, want the environment value", cfg.RedisAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Transport:     TransportStdio,
		SessionStore:  StoreMemory,
		Notifier:      NotifierMock,
		SessionTTL:    time.Hour,
		NotifyTimeout: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "websocket" }, wantErr: "TRANSPORT"},
		{name: "unknown store", mutate: func(c *Config) { c.SessionStore = "postgres" }, wantErr: "SESSION_STORE"},
		{name: "fcm without key", mutate: func(c *Config) { c.Notifier = NotifierFCM }, wantErr: "FIREBASE_SERVER_KEY"},
		{name: "fcm with key", mutate: func(c *Config) { c.Notifier = NotifierFCM; c.FirebaseServerKey = "k" }},
		{name: "sse without addr", mutate: func(c *Config) { c.Transport = TransportSSE }, wantErr: "SSE_ADDR"},
		{name: "zero ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: "SESSION_TTL"},
		{name: "zero timeout", mutate: func(c *Config) { c.NotifyTimeout = 0 }, wantErr: "NOTIFY_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestWriteYAMLRedactsSecrets(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.FirebaseServerKey = "secret-key"
	cfg.RedisPassword = "hunter2"

	var buf bytes.Buffer
	if err := cfg.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "secret-key") || strings.Contains(out, "hunter2") {
		t.Errorf("secrets leaked:\n%s", out)
	}
	if !strings.Contains(out, "TRANSPORT: stdio") || !strings.Contains(out, "SESSION_TTL: 24h0m0s") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// The rendered file loads back.
	path := filepath.Join(t.TempDir(), "rendered.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load(rendered) error = %v", err)
	}
	if back.SessionTTL != cfg.SessionTTL || back.Transport != cfg.Transport {
		t.Errorf("round trip = %+v", back)
	}
}
