package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

func TestCoverCyclingWrapsForward(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 3, 5} {
		covers := make([]string, n)
		for i := range covers {
			covers[i] = string(rune('a' + i))
		}
		c := NewCoverCycler(covers)
		for i := 0; i < n; i++ {
			c.Next()
		}
		require.Equal(t, 0, c.Index(), "%d steps over %d covers must return to the start", n, n)
	}
}

func TestCoverCyclingReverseInvertsForward(t *testing.T) {
	t.Parallel()

	c := NewCoverCycler([]string{"a", "b", "c", "d"})
	c.Next()
	c.Next()
	c.Prev()
	c.Prev()
	require.Equal(t, 0, c.Index())

	c.Prev()
	require.Equal(t, 3, c.Index(), "reverse from the first cover wraps to the last")
	require.Equal(t, "d", c.Current())
	require.Equal(t, "4/4", c.Position())
}

func TestCoverCyclerWithoutCovers(t *testing.T) {
	t.Parallel()

	c := NewCoverCycler(nil)
	require.Equal(t, Placeholder, c.Current())
	c.Next()
	c.Prev()
	require.Equal(t, Placeholder, c.Current())
	require.Empty(t, c.Position())
	require.Zero(t, c.Len())
}

func entry(id, name string, tags ...string) artifact.Artifact {
	m := artifact.Manifest{"name": name}
	if len(tags) > 0 {
		anyTags := make([]any, len(tags))
		for i, tag := range tags {
			anyTags[i] = tag
		}
		m["tags"] = anyTags
	}
	return artifact.Artifact{ID: "bioimage-io/" + id, Manifest: m}
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	t.Parallel()

	entries := []artifact.Artifact{entry("a", "Alpha"), entry("b", "Beta")}
	require.Equal(t, entries, Search(entries, "   "))
}

func TestSearchSubstringOutranksFuzzy(t *testing.T) {
	t.Parallel()

	entries := []artifact.Artifact{
		entry("segment-anything", "Segment Anything"),
		entry("nuclei-unet", "Nuclei UNet", "segmentation"),
		entry("classifier", "Cell Classifier"),
	}

	got := Search(entries, "segment")
	require.Len(t, got, 2, "the classifier does not match")
	require.Equal(t, "segment-anything", got[0].DisplayID(),
		"a direct name hit outranks a tag hit with lower coverage")
}

func TestSearchCatchesTypos(t *testing.T) {
	t.Parallel()

	entries := []artifact.Artifact{
		entry("nuclei-unet", "Nuclei UNet", "nuclei"),
		entry("membrane-net", "Membrane Net"),
	}

	got := Search(entries, "nucli")
	require.NotEmpty(t, got)
	require.Equal(t, "nuclei-unet", got[0].DisplayID())
}

func TestSearchExcludesUnrelated(t *testing.T) {
	t.Parallel()

	entries := []artifact.Artifact{entry("a", "Mitochondria Segmentation")}
	require.Empty(t, Search(entries, "zzzzqqqq"))
}
