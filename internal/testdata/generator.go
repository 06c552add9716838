package testdata

import (
	"fmt"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

// Deterministic artifact fixtures for list and review tests. No randomness:
// the i-th call always produces the same record.

var names = []string{
	"affable-shark", "nuclei-unet", "membrane-seg", "chatty-frog",
	"mito-classifier", "polite-pig", "organoid-counter", "hiding-tiger",
}

var statuses = []string{
	artifact.StatusRequestReview,
	artifact.StatusInReview,
	artifact.StatusRevision,
	artifact.StatusAccepted,
}

// Staged returns n staged submissions with a spread of workflow statuses,
// covers and tags.
func Staged(n int) []artifact.Artifact {
	out := make([]artifact.Artifact, n)
	for i := range out {
		name := names[i%len(names)]
		alias := fmt.Sprintf("%s-%03d", name, i)
		covers := make([]any, i%3)
		for c := range covers {
			covers[c] = fmt.Sprintf("covers/%s-%d.png", alias, c)
		}
		out[i] = artifact.Artifact{
			ID:        "bioimage-io/" + alias,
			Alias:     alias,
			Type:      "model",
			CreatedBy: fmt.Sprintf("uploader-%d", i%3),
			Manifest: artifact.Manifest{
				"name":        fmt.Sprintf("Model %03d (%s)", i, name),
				"description": "A staged model submission used in tests.",
				"status":      statuses[i%len(statuses)],
				"tags":        []any{"segmentation", name},
				"covers":      covers,
			},
			Versions: []artifact.Version{},
			Staging:  []any{map[string]any{"path": "rdf.yaml"}},
		}
	}
	return out
}

// Pending filters Staged output the way the server-side pending filter
// would.
func Pending(items []artifact.Artifact) []artifact.Artifact {
	var out []artifact.Artifact
	for _, a := range items {
		if a.Manifest.Status() == artifact.StatusRequestReview {
			out = append(out, a)
		}
	}
	return out
}

// Published returns n committed catalog entries with covers and a version
// history.
func Published(n int) []artifact.Artifact {
	out := make([]artifact.Artifact, n)
	for i := range out {
		name := names[i%len(names)]
		alias := fmt.Sprintf("%s-%03d", name, i)
		covers := make([]any, 1+i%3)
		for c := range covers {
			covers[c] = fmt.Sprintf("covers/%s-%d.png", alias, c)
		}
		out[i] = artifact.Artifact{
			ID:        "bioimage-io/" + alias,
			Alias:     alias,
			Type:      "model",
			CreatedBy: fmt.Sprintf("uploader-%d", i%3),
			Manifest: artifact.Manifest{
				"name":        fmt.Sprintf("Model %03d (%s)", i, name),
				"description": "A published model.",
				"status":      artifact.StatusAccepted,
				"tags":        []any{"segmentation", name},
				"covers":      covers,
			},
			Versions: []artifact.Version{
				{Version: "v0", Comment: "initial release", CreatedAt: 1700000000 + int64(i)},
			},
			DownloadCount: int64(100 * (i + 1)),
		}
	}
	return out
}
