// Package mcptools exposes the task-tracking backend as MCP tools.
//
// Each tool addresses its project by NAME, resolves it to an id via the
// backend, and forwards the call over HTTP. Backend responses are
// returned to the model as JSON text.
package mcptools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	alicesdk "alice/sdk/go"
)

// jsonResult marshals a backend response for the model.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// backendError turns API errors into soft tool errors the model can
// read and act on. Transport failures stay hard errors.
func backendError(err error) (*mcp.CallToolResult, error) {
	var apiErr *alicesdk.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError(fmt.Sprintf("backend rejected the request (status %d): %s", apiErr.StatusCode, apiErr.Body)), nil
	}
	return nil, err
}

func optString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
