package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the JSON body of every tool result.
type Envelope struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// successResponse wraps data in a success envelope.
func successResponse(now time.Time, data any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(Envelope{
		Status:    StatusSuccess,
		Timestamp: now.Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return ErrorResponse(now, CodeInternal, "Failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// ErrorResponse is used for consistent error reporting. The envelope is
// returned as an MCP tool error so the agent sees it as a failed call.
func ErrorResponse(now time.Time, code, message string) *mcp.CallToolResult {
	body, _ := json.Marshal(Envelope{
		Status:    StatusError,
		Timestamp: now.Format(time.RFC3339),
		Message:   message,
		ErrorCode: code,
	})
	return mcp.NewToolResultError(string(body))
}

// argument returns the raw value of key and whether it was supplied.
func argument(req mcp.CallToolRequest, key string) (any, bool) {
	v, ok := req.Params.Arguments[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// firstArgument returns the first supplied key; later keys are legacy aliases.
func firstArgument(req mcp.CallToolRequest, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := argument(req, k); ok {
			return v, true
		}
	}
	return nil, false
}

// requireNumber reads a required numeric argument.
func requireNumber(req mcp.CallToolRequest, key string) (float64, error) {
	v, ok := argument(req, key)
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

// decodeArgument re-encodes a structured argument into out so typed
// decoders (and their aliases) apply.
func decodeArgument(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// stringSlice reads an array of strings, falling back to def.
func stringSlice(req mcp.CallToolRequest, key string, def []string) []string {
	v, ok := argument(req, key)
	if !ok {
		return def
	}
	items, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// intSlice reads an array of whole numbers, falling back to def.
func intSlice(req mcp.CallToolRequest, key string, def []int) []int {
	v, ok := argument(req, key)
	if !ok {
		return def
	}
	items, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok && f > 0 {
			out = append(out, int(f))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// round rounds x to n decimals.
func round(x float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(x*p) / p
}
