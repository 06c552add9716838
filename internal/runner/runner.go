// Package runner launches artifacts in remote runtime windows. Each launch
// creates a fresh window under a caller-fabricated identifier; a reload
// fabricates a new identifier and reuses the window name, so the runtime
// replaces the surface instead of stacking a second one.
package runner

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

const methodCreateWindow = "window_manager.create_window"

// Caller issues one RPC call. *hypha.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params any, out any) error
}

// Window is a handle to a created runtime window.
type Window struct {
	ID  string
	URL string
}

// Launcher creates runtime windows that embed the model-runner web app.
type Launcher struct {
	rpc     Caller
	baseURL string
	log     *zap.Logger
}

// NewLauncher builds a launcher. baseURL is the runner web app the windows
// embed; the artifact is addressed through its query string.
func NewLauncher(rpc Caller, baseURL string, log *zap.Logger) *Launcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Launcher{rpc: rpc, baseURL: baseURL, log: log.Named("runner")}
}

// NewWindowID fabricates an identifier for a fresh window surface.
func NewWindowID() string {
	return "zooreview-" + uuid.NewString()
}

// Launch asks the runtime for a window named windowName showing artifactID.
// windowID must be fresh per call; reusing a name with a new id replaces
// the surface in place.
func (l *Launcher) Launch(ctx context.Context, artifactID, windowName, windowID string) (Window, error) {
	src := l.srcFor(artifactID)
	params := map[string]any{
		"name":      windowName,
		"src":       src,
		"window_id": windowID,
	}

	var out struct {
		WindowID string `json:"window_id"`
		URL      string `json:"url"`
	}
	if err := l.rpc.Call(ctx, methodCreateWindow, params, &out); err != nil {
		return Window{}, fmt.Errorf("create window for %s: %w", artifactID, err)
	}
	if out.WindowID == "" {
		out.WindowID = windowID
	}
	if out.URL == "" {
		out.URL = src
	}

	l.log.Info("window created",
		zap.String("artifact", artifactID),
		zap.String("window", out.WindowID))
	return Window{ID: out.WindowID, URL: out.URL}, nil
}

func (l *Launcher) srcFor(artifactID string) string {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return l.baseURL
	}
	q := u.Query()
	q.Set("model", artifact.TrailingSegment(artifactID))
	u.RawQuery = q.Encode()
	return u.String()
}
