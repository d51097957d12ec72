package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sydneyguide/sydneymcp/pkg/config"
	"github.com/sydneyguide/sydneymcp/pkg/server"
	"github.com/sydneyguide/sydneymcp/pkg/version"
)

// clientConfigKey names this server in the Claude Desktop mcpServers map.
const clientConfigKey = "SydneyGuide"

var (
	showVersion    bool
	debug          bool
	configFile     string
	generateConfig string
	printConfig    bool
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configFile, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
	flag.BoolVar(&printConfig, "print-config", false, "Print the effective configuration as YAML and exit")
}

func main() {
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersion {
		fmt.Println(version.String())
		return
	}

	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, configFile); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if printConfig {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			logger.Error("failed to print config", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting Sydney Guide MCP server",
		"version", version.BuildVersion,
		"transport", cfg.Transport,
		"log_level", logLevel.String())

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server initialized, waiting for requests")
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		srv.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, keeping any other servers already listed in it.
func generateClientConfig(outputPath, serverConfig string) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("output path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("output path %q must have a .json extension", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("output path %q must not contain '..'", outputPath)
		}
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	args := []string{}
	if serverConfig != "" {
		absConfig, err := filepath.Abs(serverConfig)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		args = append(args, "-config", absConfig)
	}
	entry := map[string]any{
		"command": absExecPath,
		"args":    args,
	}

	clientCfg := map[string]any{}
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &clientCfg); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			clientCfg = map[string]any{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	mcpServers, ok := clientCfg["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = map[string]any{}
		clientCfg["mcpServers"] = mcpServers
	}
	mcpServers[clientConfigKey] = entry

	data, err := json.MarshalIndent(clientCfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(outputPath, 0o600)
}
