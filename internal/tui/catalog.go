package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/aicell-lab/zooreview/internal/artifact"
	"github.com/aicell-lab/zooreview/internal/catalog"
)

const cardHeight = 6

func (a *App) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.catalogCursor > 0 {
			a.catalogCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.catalogCursor < len(a.visible)-1 {
			a.catalogCursor++
		}
	case key.Matches(msg, a.keys.PrevCover):
		if c := a.focusedCycler(); c != nil {
			c.Prev()
		}
	case key.Matches(msg, a.keys.NextCover):
		if c := a.focusedCycler(); c != nil {
			c.Next()
		}
	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.searchInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, a.keys.Enter):
		if a.catalogCursor < len(a.visible) {
			a.detailFrom = viewCatalog
			return a, a.openDetailCmd(a.visible[a.catalogCursor].ID, false)
		}
	default:
		return a.handleGlobalKey(msg)
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searching = false
		a.searchInput.Blur()
		a.searchInput.Reset()
		a.applySearch()
		return a, nil
	case tea.KeyEnter:
		// keep the filter, hand the keys back to the list
		a.searching = false
		a.searchInput.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.applySearch()
	return a, cmd
}

// applySearch recomputes the visible slice from the current query and makes
// sure every visible entry has a cover cycler. Cyclers are keyed by artifact
// id so a narrowed search keeps each card's cover position.
func (a *App) applySearch() {
	a.visible = catalog.Search(a.entries, a.searchInput.Value())
	for i := range a.visible {
		art := &a.visible[i]
		if _, ok := a.cyclers[art.ID]; !ok {
			a.cyclers[art.ID] = catalog.NewCoverCycler(art.Manifest.Covers())
		}
	}
	if a.catalogCursor >= len(a.visible) {
		a.catalogCursor = max(0, len(a.visible)-1)
	}
}

func (a *App) focusedCycler() *catalog.CoverCycler {
	if a.catalogCursor >= len(a.visible) {
		return nil
	}
	return a.cyclers[a.visible[a.catalogCursor].ID]
}

func (a *App) renderCatalog() string {
	var b strings.Builder

	if a.searching || a.searchInput.Value() != "" {
		b.WriteString("search: " + a.searchInput.View())
		b.WriteString("\n\n")
	}

	switch {
	case !a.conn.Ready() && a.entries == nil:
		b.WriteString(dimStyle.Render("not connected, press [3] to open settings"))
		return b.String()
	case a.entries == nil:
		b.WriteString(dimStyle.Render("loading catalog…"))
		return b.String()
	case len(a.visible) == 0:
		if q := a.searchInput.Value(); q != "" {
			b.WriteString(dimStyle.Render("no models match " + strconv.Quote(q)))
		} else {
			b.WriteString(dimStyle.Render("the collection is empty"))
		}
		return b.String()
	}

	rows := max(1, (a.height-8)/cardHeight)
	start := 0
	if a.catalogCursor >= rows {
		start = a.catalogCursor - rows + 1
	}
	end := min(len(a.visible), start+rows)

	for i := start; i < end; i++ {
		b.WriteString(a.renderCard(a.visible[i], i == a.catalogCursor))
		b.WriteString("\n")
	}
	if end < len(a.visible) {
		b.WriteString(dimStyle.Render("… and more below"))
	}
	return b.String()
}

func (a *App) renderCard(art artifact.Artifact, focused bool) string {
	m := art.Manifest
	w := max(40, a.width-6)
	inner := w - 4

	name := m.Name()
	if name == "" {
		name = art.DisplayID()
	}
	head := m.IDEmoji()
	if head != "" {
		head += " "
	}
	head += name

	var b strings.Builder
	b.WriteString(ansi.Truncate(lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(head)+
		"  "+dimStyle.Render(art.DisplayID()), inner, "…"))
	b.WriteString("\n")

	if desc := strings.TrimSpace(m.Description()); desc != "" {
		desc = strings.ReplaceAll(desc, "\n", " ")
		b.WriteString(ansi.Truncate(desc, inner, "…"))
		b.WriteString("\n")
	}

	cyc := a.cyclers[art.ID]
	if cyc == nil {
		cyc = catalog.NewCoverCycler(m.Covers())
	}
	cover := "cover " + cyc.Position() + "  " + cyc.Current()
	if cyc.Len() == 0 {
		cover = "cover " + cyc.Current()
	}
	b.WriteString(dimStyle.Render(ansi.Truncate(cover, inner, "…")))

	if tags := m.Tags(); len(tags) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(ansi.Truncate("#"+strings.Join(tags, " #"), inner, "…")))
	}

	style := cardStyle
	if focused {
		style = cardFocusStyle
	}
	return style.Width(w).Render(b.String())
}
