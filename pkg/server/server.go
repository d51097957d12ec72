// Package server assembles the Sydney Guide MCP server from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"

	"github.com/sydneyguide/sydneymcp/pkg/config"
	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/notify"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
	"github.com/sydneyguide/sydneymcp/pkg/tools"
	"github.com/sydneyguide/sydneymcp/pkg/tools/prompts"
	"github.com/sydneyguide/sydneymcp/pkg/version"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "sydney-guide-mcp-server"

	redisPingTimeout = 3 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// Server encapsulates the MCP server with the Sydney Guide tools.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	srv     *server.MCPServer
	closers []func() error
}

// NewServer wires the session store, notification sink, tracking engine,
// tool registry and prompts described by cfg.
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Info("initializing Sydney Guide MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"mock_mode", cfg.MockMode,
		"session_store", cfg.SessionStore,
		"notifier", cfg.Notifier)

	s := &Server{cfg: cfg, logger: logger}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		s.closers = append(s.closers, rdb.Close)

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
	}

	var dir journey.Directory
	switch cfg.SessionStore {
	case config.StoreRedis:
		dir = journey.NewRedisDirectory(rdb, cfg.SessionTTL)
	default:
		mem := journey.NewMemoryDirectory(cfg.SessionTTL)
		s.closers = append(s.closers, mem.Close)
		dir = mem
	}

	var sink notify.Sink
	switch cfg.Notifier {
	case config.NotifierFCM:
		opts := []notify.FCMOption{notify.WithLogger(logger)}
		if cfg.FCMEndpoint != "" {
			opts = append(opts, notify.WithEndpoint(cfg.FCMEndpoint))
		}
		fcm, err := notify.NewFCMSink(cfg.FirebaseServerKey, opts...)
		if err != nil {
			s.Close()
			return nil, err
		}
		sink = fcm
	case config.NotifierRedis:
		sink = notify.NewRedisSink(rdb, logger)
	default:
		sink = notify.NewMockSink(logger)
	}

	engine := journey.NewEngine(dir, sink,
		journey.WithLogger(logger),
		journey.WithSendTimeout(cfg.NotifyTimeout),
	)

	regOpts := []tools.RegistryOption{tools.WithNotifyTimeout(cfg.NotifyTimeout)}
	if !cfg.MockMode {
		if cfg.UserAgent != "" {
			osm.SetUserAgent(cfg.UserAgent)
		}
		client := osm.NewOSMClient(osm.WithLogger(logger))
		s.closers = append(s.closers, func() error {
			client.Close()
			return nil
		})
		regOpts = append(regOpts, tools.WithOSMClient(client))
	}

	s.srv = server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	registry := tools.NewRegistry(logger, engine, sink, regOpts...)
	registry.RegisterTools(s.srv)
	prompts.RegisterGuidePrompts(s.srv)

	return s, nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Run serves the configured transport until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return s.RunSSE(ctx, s.cfg.SSEAddr)
	default:
		return s.RunStdio(ctx, os.Stdin, os.Stdout)
	}
}

// RunStdio serves newline-delimited JSON-RPC over in and out.
func (s *Server) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(log.New(io.Discard, "", 0))
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	}

	s.logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// RunSSE serves MCP over server-sent events on addr until ctx is done.
func (s *Server) RunSSE(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.serveSSE(ctx, ln)
}

func (s *Server) serveSSE(ctx context.Context, ln net.Listener) error {
	var opts []server.SSEOption
	if s.cfg.SSEBaseURL != "" {
		opts = append(opts, server.WithBaseURL(s.cfg.SSEBaseURL))
	}
	sse := server.NewSSEServer(s.srv, opts...)
	httpSrv := &http.Server{Handler: sse, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over SSE", "addr", ln.Addr().String())
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSE server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Ends open event streams so the HTTP server can drain.
	if err := sse.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("closing SSE sessions", "error", err)
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown sse server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases stores and clients in reverse order of creation.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
