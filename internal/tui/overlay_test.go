package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestPadRightANSI(t *testing.T) {
	if got := padRightANSI("ab", 5); got != "ab   " {
		t.Fatalf("padRightANSI(ab, 5) = %q", got)
	}
	if got := padRightANSI("abcdef", 3); got != "abc" {
		t.Fatalf("padRightANSI(abcdef, 3) = %q", got)
	}
	styled := "\x1b[31mab\x1b[0m"
	got := padRightANSI(styled, 5)
	if ansi.StringWidth(got) != 5 {
		t.Fatalf("styled pad width = %d, want 5", ansi.StringWidth(got))
	}
	if !strings.HasPrefix(got, "\x1b[31m") {
		t.Fatalf("padding stripped the escape sequence: %q", got)
	}
	if got := padRightANSI("••", 4); got != "••  " {
		t.Fatalf("padRightANSI(••, 4) = %q, bullets are one column each", got)
	}
}

func TestOverlaySegmentBoundsCountsColumnsNotBytes(t *testing.T) {
	cases := []struct {
		name string
		line string
		s, e int
		ok   bool
	}{
		{"empty", "", 0, 0, false},
		{"blank", "     ", 0, 0, false},
		{"plain", "  hi", 2, 4, true},
		{"trailing spaces", "  hi  ", 2, 4, true},
		{"ansi styled", "\x1b[31m  hi\x1b[0m  ", 2, 4, true},
		{"multi-byte runes", "  •• ", 2, 4, true},
	}
	for _, c := range cases {
		s, e, ok := overlaySegmentBounds(c.line, 10)
		if s != c.s || e != c.e || ok != c.ok {
			t.Fatalf("%s: bounds = (%d, %d, %v), want (%d, %d, %v)", c.name, s, e, ok, c.s, c.e, c.ok)
		}
	}
}

func TestOverlayOntoBaseSplicesSegmentIntoRow(t *testing.T) {
	base := strings.Repeat("·", 11)
	got := overlayOntoBase(base, "   •••", 11, 1)
	if got != "···•••·····" {
		t.Fatalf("spliced row = %q, want ···•••·····", got)
	}
}

func TestOverlayOntoBaseKeepsRowsWithoutOverlayContent(t *testing.T) {
	base := strings.Repeat("·", 11) + "\n" + strings.Repeat("x", 11)
	got := overlayOntoBase(base, "   •••", 11, 2)
	rows := strings.Split(got, "\n")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1] != strings.Repeat("x", 11) {
		t.Fatalf("untouched row = %q, want the base row back", rows[1])
	}
}

func TestRenderPopupStacksWhenUnmeasured(t *testing.T) {
	got := renderPopup("base screen", "hello", 0, 0)
	if !strings.Contains(got, "base screen") || !strings.Contains(got, "hello") {
		t.Fatalf("fallback lost content: %q", got)
	}
}

func TestRenderPopupCentersCardOverBase(t *testing.T) {
	const width, height = 30, 9
	row := strings.Repeat("x", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	out := renderPopup(strings.Join(rows, "\n"), "hi", width, height)

	got := strings.Split(out, "\n")
	if len(got) != height {
		t.Fatalf("rows = %d, want %d", len(got), height)
	}
	if got[0] != row || got[height-1] != row {
		t.Fatal("the card must not reach the edge rows")
	}
	popupRow := -1
	for i, line := range got {
		if ansi.StringWidth(line) != width {
			t.Fatalf("row %d width = %d, want %d", i, ansi.StringWidth(line), width)
		}
		if strings.Contains(line, "hi") {
			popupRow = i
		}
	}
	if popupRow < 0 {
		t.Fatal("popup text missing from the composite")
	}
	line := got[popupRow]
	if !strings.HasPrefix(line, "x") || !strings.HasSuffix(line, "x") {
		t.Fatalf("base content lost around the card: %q", line)
	}
}
