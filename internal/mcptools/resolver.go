package mcptools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	alicesdk "alice/sdk/go"
)

// Resolver translates project names into backend project records. MCP
// tools address projects by name; the HTTP API addresses them by id.
type Resolver struct {
	client *alicesdk.Client
}

// NewResolver creates a Resolver backed by the given API client.
func NewResolver(client *alicesdk.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve looks up a project by its unique name. Every tool call
// resolves fresh so renames are picked up immediately.
func (r *Resolver) Resolve(ctx context.Context, name string) (alicesdk.Project, error) {
	p, err := r.client.GetProjectByName(ctx, name)
	if err != nil {
		var apiErr *alicesdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return alicesdk.Project{}, fmt.Errorf("project %q not found: create it first or check the name", name)
		}
		return alicesdk.Project{}, err
	}
	return p, nil
}
