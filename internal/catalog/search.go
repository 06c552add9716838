package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

// Search ranks loaded entries against a query. Substring matches on name,
// display id or tags come first, then near matches by edit distance. An
// empty query returns the input unchanged.
func Search(entries []artifact.Artifact, query string) []artifact.Artifact {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}

	type scored struct {
		entry artifact.Artifact
		score float64
	}
	var matches []scored
	for _, a := range entries {
		if s := scoreEntry(a, q); s > 0 {
			matches = append(matches, scored{entry: a, score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]artifact.Artifact, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}

// Scoring bands: name and id substring hits land above 2, tag substring
// hits above 1, fuzzy hits below 1. Within a band, query coverage of the
// field breaks ties.
func scoreEntry(a artifact.Artifact, q string) float64 {
	best := 0.0
	consider := func(field string, band float64) {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" {
			return
		}
		if strings.Contains(field, q) {
			if s := band + float64(len(q))/float64(len(field)); s > best {
				best = s
			}
			return
		}
		if s := similarity(field, q); s > 0.6 && s > best {
			best = s
		}
	}

	consider(a.Manifest.Name(), 2)
	consider(a.DisplayID(), 2)
	for _, tag := range a.Manifest.Tags() {
		consider(tag, 1)
	}
	return best
}

func similarity(a, b string) float64 {
	dist := levenshtein.ComputeDistance(a, b)
	maxlen := len(a)
	if len(b) > maxlen {
		maxlen = len(b)
	}
	if maxlen == 0 {
		return 0
	}
	return 1 - float64(dist)/float64(maxlen)
}
