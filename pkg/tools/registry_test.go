package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/notify"
	"github.com/sydneyguide/sydneymcp/pkg/testutil"
)

var testNow = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

type fixture struct {
	registry *Registry
	sink     *notify.MockSink
}

func newFixture(t *testing.T, opts ...RegistryOption) *fixture {
	t.Helper()
	dir := journey.NewMemoryDirectory(time.Hour)
	t.Cleanup(func() { _ = dir.Close() })

	logger := testutil.NewTLogger(t)
	sink := notify.NewMockSink(testutil.DiscardLogger())
	clock := func() time.Time { return testNow }
	engine := journey.NewEngine(dir, sink, journey.WithLogger(logger), journey.WithClock(clock))

	opts = append([]RegistryOption{WithClock(clock)}, opts...)
	return &fixture{
		registry: NewRegistry(logger, engine, sink, opts...),
		sink:     sink,
	}
}

type testEnvelope struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
}

type handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call invokes h with args and decodes the envelope.
func call(t *testing.T, h handler, args map[string]any) (*mcp.CallToolResult, testEnvelope) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned a Go error: %v", err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var env testEnvelope
	if err := json.Unmarshal([]byte(text.Text), &env); err != nil {
		t.Fatalf("result is not an envelope: %v\n%s", err, text.Text)
	}
	if env.Timestamp != testNow.Format(time.RFC3339) {
		t.Errorf("timestamp = %q", env.Timestamp)
	}
	return result, env
}

// mustSucceed calls h and decodes the data payload into out.
func mustSucceed(t *testing.T, h handler, args map[string]any, out any) {
	t.Helper()
	result, env := call(t, h, args)
	if result.IsError || env.Status != StatusSuccess {
		t.Fatalf("expected success, got %s: %s (%s)", env.Status, env.Message, env.ErrorCode)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v\n%s", err, env.Data)
		}
	}
}

// mustFail calls h and checks the error code.
func mustFail(t *testing.T, h handler, args map[string]any, code string) testEnvelope {
	t.Helper()
	result, env := call(t, h, args)
	if !result.IsError {
		t.Fatalf("expected an error result, got %s", env.Data)
	}
	if env.Status != StatusError {
		t.Errorf("status = %q, want error", env.Status)
	}
	if env.ErrorCode != code {
		t.Errorf("error_code = %q, want %q (message %q)", env.ErrorCode, code, env.Message)
	}
	if env.Message == "" {
		t.Error("error envelope has no message")
	}
	return env
}

func TestGetToolDefinitions(t *testing.T) {
	f := newFixture(t)
	defs := f.registry.GetToolDefinitions()

	if len(defs) != 16 {
		t.Errorf("expected 16 tools, got %d", len(defs))
	}

	seen := map[string]bool{}
	for _, def := range defs {
		if seen[def.Name] {
			t.Errorf("duplicate tool %s", def.Name)
		}
		seen[def.Name] = true
		if def.Tool.Name != def.Name {
			t.Errorf("definition %s wraps tool %s", def.Name, def.Tool.Name)
		}
		if def.Handler == nil {
			t.Errorf("tool %s has no handler", def.Name)
		}
		if def.Tool.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
	}

	for _, name := range []string{
		"start_journey_tracking", "update_journey_location",
		"stop_journey_tracking", "get_journey_status",
	} {
		if !seen[name] {
			t.Errorf("missing tool %s", name)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	result := ErrorResponse(testNow, CodeSessionNotFound, "gone")
	if !result.IsError {
		t.Fatal("ErrorResponse must be flagged as an error")
	}
	var env testEnvelope
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &env); err != nil {
		t.Fatal(err)
	}
	if env.Status != StatusError || env.ErrorCode != CodeSessionNotFound || env.Message != "gone" {
		t.Errorf("envelope = %+v", env)
	}
	if len(env.Data) != 0 {
		t.Errorf("error envelope carries data: %s", env.Data)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x    float64
		n    int
		want float64
	}{
		{x: 1.23456, n: 2, want: 1.23},
		{x: -33.8688123, n: 4, want: -33.8688},
		{x: 151.20935, n: 2, want: 151.21},
		{x: 0.005, n: 0, want: 0},
	}
	for _, tt := range tests {
		if got := round(tt.x, tt.n); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.x, tt.n, got, tt.want)
		}
	}
}
