// Package artifact defines the records served by the artifact manager and a
// thin client for its remote operations. Manifests are externally owned:
// this code reads them, and the only field it ever writes is status.
package artifact

import (
	"strings"
	"time"
)

// Workflow status labels. The set is open; these are the ones the review
// workflow assigns.
const (
	StatusRequestReview = "request-review"
	StatusInReview      = "in-review"
	StatusRevision      = "revision"
	StatusAccepted      = "accepted"
)

// Manifest is a free-form artifact manifest. Unknown keys round-trip
// untouched through read-modify-write edits.
type Manifest map[string]any

func (m Manifest) Name() string        { return m.stringField("name") }
func (m Manifest) Description() string { return m.stringField("description") }
func (m Manifest) Status() string      { return m.stringField("status") }
func (m Manifest) Icon() string        { return m.stringField("icon") }
func (m Manifest) IDEmoji() string     { return m.stringField("id_emoji") }

func (m Manifest) Tags() []string   { return m.stringSlice("tags") }
func (m Manifest) Covers() []string { return m.stringSlice("covers") }

// SetStatus writes the status field, the one manifest mutation this client
// performs.
func (m Manifest) SetStatus(status string) {
	m["status"] = status
}

// Badge is a decorated external link in a manifest.
type Badge struct {
	Label string
	Icon  string
	URL   string
}

func (m Manifest) Badges() []Badge {
	raw, ok := m["badges"].([]any)
	if !ok {
		return nil
	}
	out := make([]Badge, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		b := Badge{}
		if s, ok := fields["label"].(string); ok {
			b.Label = s
		}
		if s, ok := fields["icon"].(string); ok {
			b.Icon = s
		}
		if s, ok := fields["url"].(string); ok {
			b.URL = s
		}
		out = append(out, b)
	}
	return out
}

// Clone returns a shallow copy safe to mutate at the top level.
func (m Manifest) Clone() Manifest {
	if m == nil {
		return nil
	}
	out := make(Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Manifest) stringField(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m Manifest) stringSlice(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Version is one entry in an artifact's version history.
type Version struct {
	Version   string `json:"version"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Time returns the creation timestamp, zero when the server omitted it.
func (v Version) Time() time.Time {
	if v.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(v.CreatedAt, 0)
}

// Artifact is one record in a collection. Owned by the remote service; this
// code reads it and requests mutations by id.
type Artifact struct {
	ID            string    `json:"id"`
	Alias         string    `json:"alias,omitempty"`
	Type          string    `json:"type,omitempty"`
	Workspace     string    `json:"workspace,omitempty"`
	ParentID      string    `json:"parent_id,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     int64     `json:"created_at,omitempty"`
	LastModified  int64     `json:"last_modified,omitempty"`
	Manifest      Manifest  `json:"manifest"`
	Versions      []Version `json:"versions,omitempty"`
	Staging       []any     `json:"staging,omitempty"`
	DownloadCount int64     `json:"download_count,omitempty"`
	ViewCount     int64     `json:"view_count,omitempty"`
}

// DisplayID returns the trailing segment of the hierarchical id, the form
// shown everywhere in the UI.
func (a Artifact) DisplayID() string {
	return TrailingSegment(a.ID)
}

// Name returns the manifest name, falling back to the display id.
func (a Artifact) Name() string {
	if n := a.Manifest.Name(); n != "" {
		return n
	}
	return a.DisplayID()
}

// HasStaged reports whether the artifact carries staged content.
func (a Artifact) HasStaged() bool {
	return len(a.Staging) > 0
}

// TrailingSegment returns the part of a slash-delimited id after the last
// slash. Ids without a slash are returned unchanged.
func TrailingSegment(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
