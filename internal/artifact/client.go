package artifact

import (
	"context"
	"fmt"
)

// Remote service methods.
const (
	methodList    = "artifact_manager.list"
	methodRead    = "artifact_manager.read"
	methodEdit    = "artifact_manager.edit"
	methodApprove = "artifact_manager.approve"
	methodReject  = "artifact_manager.reject"
	methodDelete  = "artifact_manager.delete"
)

// VersionStaged selects staged (uncommitted) content in list, read, edit and
// delete calls.
const VersionStaged = "staged"

// Caller issues one RPC call. *hypha.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params any, out any) error
}

// Client wraps the artifact-manager service methods.
type Client struct {
	rpc Caller
}

// NewClient builds a client over an established RPC connection.
func NewClient(rpc Caller) *Client {
	return &Client{rpc: rpc}
}

// ListQuery scopes a List call. Zero Limit asks the server for its default
// page size.
type ListQuery struct {
	Parent   string
	Version  string         // VersionStaged selects staged artifacts
	Manifest map[string]any // equality filters on manifest fields
	Limit    int
	Offset   int
}

// Page is one page of a filtered listing plus the total match count.
type Page struct {
	Items []Artifact
	Total int
}

// List fetches one page of children of q.Parent matching the filters.
func (c *Client) List(ctx context.Context, q ListQuery) (Page, error) {
	filters := map[string]any{}
	if q.Version != "" {
		filters["version"] = q.Version
	}
	if len(q.Manifest) > 0 {
		filters["manifest"] = q.Manifest
	}

	params := map[string]any{
		"parent_id":  q.Parent,
		"filters":    filters,
		"limit":      q.Limit,
		"offset":     q.Offset,
		"pagination": true,
	}

	var out struct {
		Items []Artifact `json:"items"`
		Total int        `json:"total"`
	}
	if err := c.rpc.Call(ctx, methodList, params, &out); err != nil {
		return Page{}, fmt.Errorf("list %s: %w", q.Parent, err)
	}
	return Page{Items: out.Items, Total: out.Total}, nil
}

// Read fetches one artifact. A non-empty version selects that version's
// manifest; VersionStaged reads staged content.
func (c *Client) Read(ctx context.Context, id, version string) (Artifact, error) {
	params := map[string]any{"artifact_id": id}
	if version != "" {
		params["version"] = version
	}
	var a Artifact
	if err := c.rpc.Call(ctx, methodRead, params, &a); err != nil {
		return Artifact{}, fmt.Errorf("read %s: %w", id, err)
	}
	return a, nil
}

// Approve accepts the staged submission.
func (c *Client) Approve(ctx context.Context, id string) error {
	params := map[string]any{"artifact_id": id}
	if err := c.rpc.Call(ctx, methodApprove, params, nil); err != nil {
		return fmt.Errorf("approve %s: %w", id, err)
	}
	return nil
}

// Reject declines the staged submission with a reviewer-facing reason.
func (c *Client) Reject(ctx context.Context, id, reason string) error {
	params := map[string]any{"artifact_id": id, "reason": reason}
	if err := c.rpc.Call(ctx, methodReject, params, nil); err != nil {
		return fmt.Errorf("reject %s: %w", id, err)
	}
	return nil
}

// DeleteOptions scopes a Delete call. An empty Version deletes the whole
// artifact; VersionStaged removes only staged content.
type DeleteOptions struct {
	Version     string
	DeleteFiles bool
	Recursive   bool
}

// Delete removes an artifact or one of its versions.
func (c *Client) Delete(ctx context.Context, id string, opts DeleteOptions) error {
	params := map[string]any{
		"artifact_id":  id,
		"delete_files": opts.DeleteFiles,
		"recursive":    opts.Recursive,
	}
	if opts.Version != "" {
		params["version"] = opts.Version
	}
	if err := c.rpc.Call(ctx, methodDelete, params, nil); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Edit submits a full manifest for the given version. Callers mutate a copy
// of a freshly read manifest, never a constructed one.
func (c *Client) Edit(ctx context.Context, id string, m Manifest, version string) error {
	params := map[string]any{
		"artifact_id": id,
		"manifest":    m,
		"version":     version,
	}
	if err := c.rpc.Call(ctx, methodEdit, params, nil); err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}
	return nil
}
