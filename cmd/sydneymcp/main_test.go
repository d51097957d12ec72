package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateClientConfig(t *testing.T) {
	tmpDir := t.TempDir()

	// Change to temp directory for relative path tests
	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	defer os.Chdir(oldDir)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	tests := []struct {
		name         string
		path         string
		serverConfig string
		existing     map[string]any
		wantErr      bool
	}{
		{name: "valid path", path: "config.json"},
		{name: "nested directory", path: filepath.Join("claude", "config.json")},
		{name: "empty path", path: "", wantErr: true},
		{name: "non-json extension", path: "config.txt", wantErr: true},
		{name: "path with ..", path: filepath.Join("..", "config.json"), wantErr: true},
		{name: "server config flag", path: "with-config.json", serverConfig: "sydneymcp.yaml"},
		{
			name: "merge with existing",
			path: "merge.json",
			existing: map[string]any{
				"existing_key": "existing_value",
				"mcpServers":   map[string]any{"Other": map[string]any{"command": "other"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.existing != nil {
				data, err := json.Marshal(tt.existing)
				if err != nil {
					t.Fatalf("Failed to marshal existing config: %v", err)
				}
				if err := os.WriteFile(tt.path, data, 0o644); err != nil {
					t.Fatalf("Failed to write existing config: %v", err)
				}
			}

			err := generateClientConfig(tt.path, tt.serverConfig)
			if (err != nil) != tt.wantErr {
				t.Fatalf("generateClientConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			info, err := os.Stat(tt.path)
			if err != nil {
				t.Fatalf("Failed to stat config file: %v", err)
			}
			if mode := info.Mode().Perm(); mode != 0o600 {
				t.Errorf("Config file has wrong permissions: %v, want 0600", mode)
			}

			data, err := os.ReadFile(tt.path)
			if err != nil {
				t.Fatalf("Failed to read config file: %v", err)
			}
			var config struct {
				ExistingKey string `json:"existing_key"`
				MCPServers  map[string]struct {
					Command string   `json:"command"`
					Args    []string `json:"args"`
				} `json:"mcpServers"`
			}
			if err := json.Unmarshal(data, &config); err != nil {
				t.Fatalf("Failed to parse config JSON: %v", err)
			}

			entry, ok := config.MCPServers[clientConfigKey]
			if !ok || entry.Command == "" {
				t.Fatalf("Config missing %s server: %s", clientConfigKey, data)
			}
			if tt.serverConfig != "" {
				if len(entry.Args) != 2 || entry.Args[0] != "-config" || !filepath.IsAbs(entry.Args[1]) {
					t.Errorf("args = %v", entry.Args)
				}
			} else if len(entry.Args) != 0 {
				t.Errorf("args = %v, want none", entry.Args)
			}

			if tt.existing != nil {
				if config.ExistingKey != "existing_value" {
					t.Error("Merge failed to preserve existing content")
				}
				if _, ok := config.MCPServers["Other"]; !ok {
					t.Error("Merge dropped other servers")
				}
			}
		})
	}
}
