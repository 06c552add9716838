package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aicell-lab/zooreview/internal/artifact"
	"github.com/aicell-lab/zooreview/internal/runner"
)

const manifestPreviewLines = 14

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Launch):
		return a.handleLaunch()
	case key.Matches(msg, a.keys.OpenBrowser):
		if a.window != nil {
			return a, a.openURLCmd(a.window.URL)
		}
	case key.Matches(msg, a.keys.Copy):
		if a.detail != nil {
			return a, a.copyCmd(a.detail.ID, artifact.TrailingSegment(a.detail.ID))
		}
	case key.Matches(msg, a.keys.Back):
		a.state = a.detailFrom
	default:
		return a.handleGlobalKey(msg)
	}
	return a, nil
}

// handleLaunch drives the run control. The first press creates a window and
// opens it in the browser; while the window lives, the same key reloads it
// by fabricating a new window id under the old window name. Without a ready,
// signed-in session the press does nothing beyond a debug log entry.
func (a *App) handleLaunch() (tea.Model, tea.Cmd) {
	if a.detail == nil {
		return a, nil
	}
	if a.runPhase == runLaunching || a.runPhase == runReloading {
		return a, nil
	}
	if !a.conn.Ready() || !a.conn.LoggedIn() {
		a.log.Debug("launch skipped",
			zap.String("artifact", a.detail.ID),
			zap.Bool("ready", a.conn.Ready()),
			zap.Bool("logged_in", a.conn.LoggedIn()))
		return a, nil
	}

	reload := a.runPhase == runRunning
	if reload {
		a.runPhase = runReloading
	} else {
		a.runPhase = runLaunching
		a.windowName = "runner-" + a.detail.DisplayID()
	}
	a.windowID = runner.NewWindowID()
	return a, a.launchCmd(a.detail.ID, a.windowName, a.windowID, reload)
}

func (a *App) launchCmd(artifactID, windowName, windowID string, reload bool) tea.Cmd {
	ctx, launcher := a.ctx, a.svc.Launcher
	return func() tea.Msg {
		win, err := launcher.Launch(ctx, artifactID, windowName, windowID)
		if err != nil {
			return windowErrMsg{reload: reload, err: err}
		}
		return windowMsg{win: win, reload: reload}
	}
}

func (a *App) openDetailCmd(id string, staged bool) tea.Cmd {
	a.busy = true
	ctx, client := a.ctx, a.svc.Artifacts
	version := ""
	if staged {
		version = artifact.VersionStaged
	}
	width := a.width
	return func() tea.Msg {
		art, err := client.Read(ctx, id, version)
		if err != nil {
			return errMsg{err: err}
		}
		return detailMsg{
			item:         art,
			description:  renderMarkdown(art.Manifest.Description(), width),
			manifestYAML: renderManifestYAML(art.Manifest),
		}
	}
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	wrap := width - 8
	if wrap < 40 {
		wrap = 40
	}
	if wrap > 100 {
		wrap = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func renderManifestYAML(m artifact.Manifest) string {
	b, err := yaml.Marshal(map[string]any(m))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\n")
}

// ---- view ----

func (a *App) renderDetail() string {
	if a.detail == nil {
		return dimStyle.Render("nothing selected")
	}
	art, m := a.detail, a.detail.Manifest

	var b strings.Builder

	head := m.IDEmoji()
	if head != "" {
		head += " "
	}
	head += art.Name()
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(head))
	if st := m.Status(); st != "" {
		b.WriteString("  " + statusBadge(st))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(art.ID))
	if a.justCopied(art.ID) {
		b.WriteString("  " + flashStyle.Render("copied!"))
	}
	b.WriteString("\n")
	if art.DownloadCount > 0 || art.ViewCount > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d downloads   %d views", art.DownloadCount, art.ViewCount)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderLaunchControl())
	b.WriteString("\n")

	if a.description != "" {
		b.WriteString("\n")
		b.WriteString(a.description)
		b.WriteString("\n")
	}

	if badges := m.Badges(); len(badges) > 0 {
		parts := make([]string, 0, len(badges))
		for _, bd := range badges {
			parts = append(parts, "["+bd.Label+"]")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(strings.Join(parts, " ")))
		b.WriteString("\n")
	}

	if len(art.Versions) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorSubtext0).Render("versions"))
		b.WriteString("\n")
		for _, v := range art.Versions {
			line := "  " + v.Version
			if v.Comment != "" {
				line += "  " + v.Comment
			}
			if t := v.Time(); !t.IsZero() {
				line += "  " + t.Format("2006-01-02")
			}
			b.WriteString(dimStyle.Render(ansi.Truncate(line, max(40, a.width-6), "…")))
			b.WriteString("\n")
		}
	}

	if a.manifestYAML != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorSubtext0).Render("manifest"))
		b.WriteString("\n")
		lines := strings.Split(a.manifestYAML, "\n")
		shown := lines
		if len(lines) > manifestPreviewLines {
			shown = lines[:manifestPreviewLines]
		}
		for _, ln := range shown {
			b.WriteString(dimStyle.Render(ansi.Truncate("  "+ln, max(40, a.width-6), "…")))
			b.WriteString("\n")
		}
		if rest := len(lines) - len(shown); rest > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more lines", rest)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (a *App) renderLaunchControl() string {
	if !a.conn.Ready() || !a.conn.LoggedIn() {
		return dimStyle.Render("[r] Run Model (sign in to launch)")
	}
	switch a.runPhase {
	case runLaunching:
		return a.spin.View() + " " + statusLineStyle.Render("launching…")
	case runReloading:
		return a.spin.View() + " " + statusLineStyle.Render("reloading…")
	case runRunning:
		line := lipgloss.NewStyle().Foreground(colorSuccess).Render("[r] Reload App")
		if a.window != nil {
			line += "  " + dimStyle.Render(ansi.Truncate("[o] "+a.window.URL, max(30, a.width-24), "…"))
		}
		return line
	default:
		return lipgloss.NewStyle().Foreground(colorAccent).Render("[r] Run Model")
	}
}
