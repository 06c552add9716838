package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/aicell-lab/zooreview/internal/artifact"
	"github.com/aicell-lab/zooreview/internal/review"
)

var statusChoices = []string{
	artifact.StatusRequestReview,
	artifact.StatusInReview,
	artifact.StatusRevision,
	artifact.StatusAccepted,
}

func statusIndex(status string) int {
	for i, s := range statusChoices {
		if s == status {
			return i
		}
	}
	return 0
}

func (a *App) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.reviewCursor > 0 {
			a.reviewCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.reviewCursor < len(a.items)-1 {
			a.reviewCursor++
		}
	case key.Matches(msg, a.keys.PrevPage):
		if a.page.Prev() {
			a.syncPager()
			return a, a.startReviewLoad()
		}
	case key.Matches(msg, a.keys.NextPage):
		if a.page.Next() {
			a.syncPager()
			return a, a.startReviewLoad()
		}
	case key.Matches(msg, a.keys.TogglePending):
		a.pendingOnly = !a.pendingOnly
		a.page.Reset()
		a.syncPager()
		return a, a.startReviewLoad()
	case key.Matches(msg, a.keys.Approve):
		if it, ok := a.currentReviewItem(); ok {
			a.openActionModal(modalApprove, it)
		}
	case key.Matches(msg, a.keys.Reject):
		if it, ok := a.currentReviewItem(); ok {
			a.openActionModal(modalReject, it)
			a.reasonInput.Focus()
			return a, textinput.Blink
		}
	case key.Matches(msg, a.keys.Delete):
		if it, ok := a.currentReviewItem(); ok {
			a.openActionModal(modalDelete, it)
		}
	case key.Matches(msg, a.keys.Status):
		if it, ok := a.currentReviewItem(); ok {
			a.openActionModal(modalStatusPick, it)
			a.statusCursor = statusIndex(it.Manifest.Status())
		}
	case key.Matches(msg, a.keys.InReview):
		if it, ok := a.currentReviewItem(); ok {
			return a, a.statusCmd(it.ID, it.Manifest.Status(), artifact.StatusInReview)
		}
	case key.Matches(msg, a.keys.Revision):
		if it, ok := a.currentReviewItem(); ok {
			return a, a.statusCmd(it.ID, it.Manifest.Status(), artifact.StatusRevision)
		}
	case key.Matches(msg, a.keys.Copy):
		if it, ok := a.currentReviewItem(); ok {
			return a, a.copyCmd(it.ID, artifact.TrailingSegment(it.ID))
		}
	case key.Matches(msg, a.keys.Enter):
		if it, ok := a.currentReviewItem(); ok {
			a.detailFrom = viewReview
			return a, a.openDetailCmd(it.ID, true)
		}
	default:
		return a.handleGlobalKey(msg)
	}
	return a, nil
}

func (a *App) currentReviewItem() (artifact.Artifact, bool) {
	if a.reviewCursor >= len(a.items) {
		return artifact.Artifact{}, false
	}
	return a.items[a.reviewCursor], true
}

func (a *App) openActionModal(m modalState, it artifact.Artifact) {
	a.modal = m
	a.actingID = it.ID
	a.actingSeen = it.Manifest.Status()
}

func (a *App) actingItem() (artifact.Artifact, bool) {
	for _, it := range a.items {
		if it.ID == a.actingID {
			return it, true
		}
	}
	return artifact.Artifact{}, false
}

func (a *App) actionPending(id string) bool {
	for _, act := range []review.Action{review.ActionApprove, review.ActionReject, review.ActionDelete, review.ActionStatus} {
		if _, ok := a.inflight[review.Key(id, act)]; ok {
			return true
		}
	}
	return false
}

// ---- modal keys ----

func (a *App) handleApproveModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := a.actingID
		a.closeModal()
		return a, a.approveCmd(id)
	case "n":
		a.closeModal()
	}
	return a, nil
}

func (a *App) handleDeleteModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := a.actingID
		a.closeModal()
		return a, a.deleteCmd(id)
	case "n":
		a.closeModal()
	}
	return a, nil
}

// Enter confirms only once the reason survives trimming; every other key
// goes to the input.
func (a *App) handleRejectModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		reason := a.reasonInput.Value()
		if !review.ValidReason(reason) {
			return a, nil
		}
		id := a.actingID
		a.closeModal()
		return a, a.rejectCmd(id, reason)
	}
	var cmd tea.Cmd
	a.reasonInput, cmd = a.reasonInput.Update(msg)
	return a, cmd
}

func (a *App) handleStatusModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.statusCursor > 0 {
			a.statusCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.statusCursor < len(statusChoices)-1 {
			a.statusCursor++
		}
	case msg.Type == tea.KeyEnter:
		id, seen := a.actingID, a.actingSeen
		next := statusChoices[a.statusCursor]
		a.closeModal()
		if next == seen {
			return a, nil
		}
		return a, a.statusCmd(id, seen, next)
	}
	return a, nil
}

// ---- commands ----

func (a *App) approveCmd(id string) tea.Cmd {
	k := review.Key(id, review.ActionApprove)
	if !a.beginAction(k) {
		return nil
	}
	ctx, svc := a.ctx, a.svc.Review
	return func() tea.Msg {
		if err := svc.Approve(ctx, id); err != nil {
			return actionErrMsg{key: k, err: err}
		}
		return actionDoneMsg{key: k, status: "approved " + id}
	}
}

func (a *App) rejectCmd(id, reason string) tea.Cmd {
	k := review.Key(id, review.ActionReject)
	if !a.beginAction(k) {
		return nil
	}
	ctx, svc := a.ctx, a.svc.Review
	return func() tea.Msg {
		if err := svc.Reject(ctx, id, reason); err != nil {
			return actionErrMsg{key: k, err: err}
		}
		return actionDoneMsg{key: k, status: "rejected " + id}
	}
}

func (a *App) deleteCmd(id string) tea.Cmd {
	k := review.Key(id, review.ActionDelete)
	if !a.beginAction(k) {
		return nil
	}
	ctx, svc := a.ctx, a.svc.Review
	return func() tea.Msg {
		if err := svc.DeleteStaged(ctx, id); err != nil {
			return actionErrMsg{key: k, err: err}
		}
		return actionDoneMsg{key: k, status: "deleted staged version of " + id}
	}
}

func (a *App) statusCmd(id, seen, next string) tea.Cmd {
	k := review.Key(id, review.ActionStatus)
	if !a.beginAction(k) {
		return nil
	}
	ctx, svc := a.ctx, a.svc.Review
	return func() tea.Msg {
		if err := svc.SetStatus(ctx, id, seen, next); err != nil {
			return actionErrMsg{key: k, err: err}
		}
		return actionDoneMsg{key: k, status: "status of " + id + " set to " + next}
	}
}

// ---- view ----

func (a *App) renderReview() string {
	if !a.canReview() {
		return dimStyle.Render("reviewing needs a signed-in session, add a workspace token under [3] Settings")
	}

	var b strings.Builder
	filter := "all staged"
	if a.pendingOnly {
		filter = "pending review"
	}
	line := fmt.Sprintf("filter: %s   page %s   %d staged", filter, a.pager.View(), a.page.Total())
	if a.pendingTotal > 0 {
		line += fmt.Sprintf("   %d pending", a.pendingTotal)
	}
	b.WriteString(dimStyle.Render(line))
	b.WriteString("\n\n")

	switch {
	case a.errText != "" && len(a.items) == 0:
		b.WriteString(errorStyle.Render(a.errText))
	case a.items == nil:
		b.WriteString(dimStyle.Render("loading staged submissions…"))
	case len(a.items) == 0 && a.pendingOnly:
		b.WriteString(dimStyle.Render("no submissions waiting for review"))
	case len(a.items) == 0:
		b.WriteString(dimStyle.Render("no staged submissions"))
	default:
		for i, it := range a.items {
			b.WriteString(a.renderReviewRow(it, i == a.reviewCursor))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) renderReviewRow(it artifact.Artifact, focused bool) string {
	marker := "  "
	if focused {
		marker = cursorMarker + " "
	}
	name := ansi.Truncate(it.Name(), 34, "…")
	line := marker + statusBadge(it.Manifest.Status()) + " " +
		padRightANSI(name, 36) + dimStyle.Render(it.DisplayID())
	switch {
	case a.actionPending(it.ID):
		line += "  " + a.spin.View()
	case a.justCopied(it.ID):
		line += "  " + flashStyle.Render("copied!")
	}
	return line
}

// ---- modal views ----

func (a *App) actingTitle() string {
	if it, ok := a.actingItem(); ok {
		return it.Name()
	}
	return a.actingID
}

func (a *App) renderApproveModal() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).Render("Approve submission"))
	b.WriteString("\n\n")
	b.WriteString(a.actingTitle() + "\n" + dimStyle.Render(a.actingID))
	b.WriteString("\n\n")
	b.WriteString("publishes the staged version")
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("[y] approve   [n] cancel"))
	return b.String()
}

func (a *App) renderDeleteModal() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorError).Render("Delete staged version"))
	b.WriteString("\n\n")
	b.WriteString(a.actingTitle() + "\n" + dimStyle.Render(a.actingID))
	b.WriteString("\n\n")
	b.WriteString("removes the staged files, this cannot be undone")
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("[y] delete   [n] cancel"))
	return b.String()
}

func (a *App) renderRejectModal() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorError).Render("Reject submission"))
	b.WriteString("\n\n")
	b.WriteString(a.actingTitle() + "\n" + dimStyle.Render(a.actingID))
	b.WriteString("\n\n")
	b.WriteString(a.reasonInput.View())
	b.WriteString("\n\n")
	if review.ValidReason(a.reasonInput.Value()) {
		b.WriteString(dimStyle.Render("[enter] send   [esc] cancel"))
	} else {
		b.WriteString(dimStyle.Render("a reason is required   [esc] cancel"))
	}
	return b.String()
}

func (a *App) renderStatusModal() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Set review status"))
	b.WriteString("\n\n")
	for i, s := range statusChoices {
		marker := "  "
		if i == a.statusCursor {
			marker = cursorMarker + " "
		}
		row := marker + statusBadge(s)
		if s == a.actingSeen {
			row += dimStyle.Render("  current")
		}
		b.WriteString(row + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[enter] apply   [esc] cancel"))
	return b.String()
}
