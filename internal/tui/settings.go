package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aicell-lab/zooreview/internal/config"
)

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Token):
		a.modal = modalToken
		a.tokenInput.EchoMode = textinput.EchoPassword
		a.showToken = false
		a.tokenInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, a.keys.Connect):
		return a, a.connectCmd()
	case key.Matches(msg, a.keys.Disconnect):
		if err := a.conn.Close(); err != nil {
			a.errText = err.Error()
			return a, nil
		}
		a.pendingTotal = 0
		a.status = "disconnected"
	case key.Matches(msg, a.keys.SaveConfig):
		if err := config.Save(a.cfg); err != nil {
			a.errText = err.Error()
			return a, nil
		}
		a.status = "config saved"
	case key.Matches(msg, a.keys.Back):
		a.state = viewCatalog
	default:
		return a.handleGlobalKey(msg)
	}
	return a, nil
}

func (a *App) handleTokenModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		token := strings.TrimSpace(a.tokenInput.Value())
		if token == "" {
			return a, nil
		}
		a.closeModal()
		a.tokenSet = true
		return a, a.saveTokenCmd(token)
	case "ctrl+s":
		// plain "v" must stay typeable, so visibility gets a chord
		a.showToken = !a.showToken
		if a.showToken {
			a.tokenInput.EchoMode = textinput.EchoNormal
		} else {
			a.tokenInput.EchoMode = textinput.EchoPassword
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.tokenInput, cmd = a.tokenInput.Update(msg)
	return a, cmd
}

// saveTokenCmd persists the token, points the connection at it and redials.
// The connected message that follows reloads both views under the new
// identity.
func (a *App) saveTokenCmd(token string) tea.Cmd {
	a.busy = true
	a.status = "signing in"
	ctx, conn, store, server := a.ctx, a.conn, a.svc.Tokens, a.cfg.Server.URL
	return func() tea.Msg {
		if store != nil {
			if err := store.StoreToken(server, token); err != nil {
				return errMsg{err: err}
			}
		}
		conn.SetToken(token)
		if err := conn.Connect(ctx); err != nil {
			return connectErrMsg{err: err}
		}
		return connectedMsg{}
	}
}

func (a *App) renderSettings() string {
	var b strings.Builder
	label := lipgloss.NewStyle().Foreground(colorSubtext0)

	row := func(name, value string) {
		b.WriteString(label.Render(padRightANSI(name, 14)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row("server", a.cfg.Server.URL)
	row("workspace", a.cfg.Server.Workspace)
	row("collection", a.cfg.Zoo.Collection)
	row("runner", a.cfg.Zoo.RunnerURL)
	row("log file", a.cfg.Log.File)

	token := "not set"
	if a.tokenSet {
		token = "set, encrypted at rest"
	}
	row("token", token)

	b.WriteString("\n")
	b.WriteString(a.connBadge())
	if a.conn.LoggedIn() {
		u := a.conn.User()
		if u.Email != "" && u.Email != u.ID {
			b.WriteString(dimStyle.Render("  " + u.ID))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderTokenModal() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Workspace token"))
	b.WriteString("\n\n")
	b.WriteString(a.tokenInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("stored encrypted, never written to the config file"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[enter] sign in   [ctrl+s] show/hide   [esc] cancel"))
	return b.String()
}
