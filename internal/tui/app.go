// Package tui renders the model zoo as a terminal application. One App
// model owns all four views; remote work happens in tea.Cmd closures that
// report back through the messages declared at the bottom of this file.
package tui

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/aicell-lab/zooreview/internal/artifact"
	"github.com/aicell-lab/zooreview/internal/catalog"
	"github.com/aicell-lab/zooreview/internal/config"
	"github.com/aicell-lab/zooreview/internal/hypha"
	"github.com/aicell-lab/zooreview/internal/review"
	"github.com/aicell-lab/zooreview/internal/runner"
	"github.com/aicell-lab/zooreview/internal/secrets"
)

const (
	catalogLimit      = 100
	copyFlashDuration = 2 * time.Second
)

// Conn is the slice of the hypha client the UI needs. *hypha.Client
// satisfies it; tests substitute a fake.
type Conn interface {
	Connect(ctx context.Context) error
	Close() error
	Ready() bool
	LoggedIn() bool
	User() hypha.UserInfo
	SetToken(token string)
}

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// TokenStore persists workspace tokens between runs.
type TokenStore interface {
	StoreToken(server, token string) error
	FetchToken(server string) (string, error)
	DeleteToken(server string) error
}

// DiskTokens backs TokenStore with the encrypted secrets file.
type DiskTokens struct{}

func (DiskTokens) StoreToken(server, token string) error    { return secrets.StoreToken(server, token) }
func (DiskTokens) FetchToken(server string) (string, error) { return secrets.FetchToken(server) }
func (DiskTokens) DeleteToken(server string) error          { return secrets.DeleteToken(server) }

// Services bundles the remote-facing dependencies of the UI.
type Services struct {
	Review    *review.Service
	Artifacts *artifact.Client
	Launcher  *runner.Launcher
	Tokens    TokenStore
}

type appState string

const (
	viewCatalog  appState = "catalog"
	viewReview   appState = "review"
	viewDetail   appState = "detail"
	viewSettings appState = "settings"
)

type modalState string

const (
	modalNone       modalState = "none"
	modalApprove    modalState = "approve"
	modalReject     modalState = "reject"
	modalDelete     modalState = "delete"
	modalStatusPick modalState = "status"
	modalToken      modalState = "token"
)

type runPhase string

const (
	runIdle      runPhase = "idle"
	runLaunching runPhase = "launching"
	runRunning   runPhase = "running"
	runReloading runPhase = "reloading"
)

type App struct {
	ctx  context.Context
	cfg  config.Config
	conn Conn
	svc  Services
	log  *zap.Logger
	clip ClipboardWriter

	// chrome
	state   appState
	modal   modalState
	width   int
	height  int
	keys    keyMap
	help    help.Model
	spin    spinner.Model
	busy    bool
	status  string
	errText string

	// catalog
	entries       []artifact.Artifact
	visible       []artifact.Artifact
	catalogCursor int
	cyclers       map[string]*catalog.CoverCycler
	searchInput   textinput.Model
	searching     bool

	// review
	page         *review.PageState
	items        []artifact.Artifact
	pendingTotal int
	pendingOnly  bool
	reviewCursor int
	pager        paginator.Model
	loadSeq      int
	inflight     map[string]struct{}
	copied       map[string]int
	reasonInput  textinput.Model
	statusCursor int
	actingID     string
	actingSeen   string

	// detail
	detail       *artifact.Artifact
	detailFrom   appState
	runPhase     runPhase
	windowID     string
	windowName   string
	window       *runner.Window
	ranOnce      bool
	description  string
	manifestYAML string

	// settings
	tokenInput textinput.Model
	showToken  bool
	tokenSet   bool
}

func New(ctx context.Context, cfg config.Config, conn Conn, svc Services, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	search := textinput.New()
	search.Placeholder = "name, id or tag"
	search.CharLimit = 64
	search.Width = 32

	reason := textinput.New()
	reason.Placeholder = "reason sent to the uploader"
	reason.CharLimit = 240
	reason.Width = 46

	token := textinput.New()
	token.Placeholder = "workspace token"
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	token.CharLimit = 512
	token.Width = 46

	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.PerPage = svc.Review.PerPage()

	tokenSet := false
	if svc.Tokens != nil {
		if tok, err := svc.Tokens.FetchToken(cfg.Server.URL); err == nil && tok != "" {
			tokenSet = true
		}
	}

	return &App{
		ctx:  ctx,
		cfg:  cfg,
		conn: conn,
		svc:  svc,
		log:  log.Named("tui"),
		clip: realClipboard{},

		state: viewCatalog,
		modal: modalNone,
		keys:  defaultKeyMap(),
		help:  help.New(),
		spin:  sp,

		cyclers:     make(map[string]*catalog.CoverCycler),
		searchInput: search,

		page:        review.NewPageState(svc.Review.PerPage()),
		pager:       pg,
		inflight:    make(map[string]struct{}),
		copied:      make(map[string]int),
		reasonInput: reason,

		runPhase: runIdle,

		tokenInput: token,
		tokenSet:   tokenSet,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.connectCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case connectedMsg:
		a.busy = false
		a.errText = ""
		a.status = "connected to " + a.cfg.Server.URL
		cmds := []tea.Cmd{a.loadCatalogCmd()}
		if a.conn.LoggedIn() {
			cmds = append(cmds, a.startReviewLoad())
		}
		return a, tea.Batch(cmds...)

	case connectErrMsg:
		a.busy = false
		a.errText = msg.err.Error()
		return a, nil

	case catalogMsg:
		a.busy = false
		a.errText = ""
		a.entries = msg.items
		if a.entries == nil {
			a.entries = []artifact.Artifact{}
		}
		a.applySearch()
		return a, nil

	case reviewPageMsg:
		if msg.seq < a.loadSeq {
			return a, nil
		}
		a.busy = false
		a.errText = ""
		// nil marks "never loaded"; a loaded empty page must render as empty
		a.items = msg.res.Items
		if a.items == nil {
			a.items = []artifact.Artifact{}
		}
		before := a.page.Page()
		a.page.SetTotal(msg.res.Total)
		a.pendingTotal = msg.res.PendingTotal
		a.syncPager()
		if a.reviewCursor >= len(a.items) {
			a.reviewCursor = max(0, len(a.items)-1)
		}
		if a.page.Page() != before {
			// the total shrank under us and the page was clamped, so the
			// fetched rows belong to a page that no longer exists
			return a, a.startReviewLoad()
		}
		return a, nil

	case reviewErrMsg:
		if msg.seq < a.loadSeq {
			return a, nil
		}
		a.busy = false
		a.errText = msg.err.Error()
		a.items = []artifact.Artifact{}
		a.reviewCursor = 0
		return a, nil

	case actionDoneMsg:
		delete(a.inflight, msg.key)
		a.errText = ""
		a.status = msg.status
		return a, a.startReviewLoad()

	case actionErrMsg:
		delete(a.inflight, msg.key)
		a.busy = false
		if errors.Is(msg.err, review.ErrStatusChanged) {
			a.status = "status changed remotely, reloading"
			return a, a.startReviewLoad()
		}
		a.errText = msg.err.Error()
		return a, nil

	case copiedMsg:
		gen := a.copied[msg.id] + 1
		a.copied[msg.id] = gen
		return a, tea.Tick(copyFlashDuration, func(time.Time) tea.Msg {
			return copyExpiredMsg{id: msg.id, gen: gen}
		})

	case copyExpiredMsg:
		// a re-copy renews the flash, only the newest timer may clear it
		if a.copied[msg.id] == msg.gen {
			delete(a.copied, msg.id)
		}
		return a, nil

	case detailMsg:
		a.busy = false
		if a.detail == nil || a.detail.ID != msg.item.ID {
			a.resetRunState()
		}
		item := msg.item
		a.detail = &item
		a.description = msg.description
		a.manifestYAML = msg.manifestYAML
		a.state = viewDetail
		return a, nil

	case windowMsg:
		a.runPhase = runRunning
		win := msg.win
		a.window = &win
		if msg.reload {
			a.status = "model reloaded"
		} else {
			a.status = "model running"
		}
		if a.ranOnce {
			return a, nil
		}
		// one browser hand-off per model, later windows replace the
		// surface in place under the same name
		a.ranOnce = true
		return a, a.openURLCmd(win.URL)

	case windowErrMsg:
		if msg.reload {
			a.runPhase = runRunning
		} else {
			a.runPhase = runIdle
		}
		a.log.Warn("launch failed", zap.Error(msg.err))
		a.status = "launch failed, see log"
		return a, nil

	case statusMsg:
		a.busy = false
		a.status = string(msg)
		return a, nil

	case errMsg:
		a.busy = false
		a.errText = msg.err.Error()
		return a, nil
	}

	return a, nil
}

// handleKey routes a keypress. Modals capture everything first, then the
// search box, then the active view; unclaimed keys fall through to the
// global bindings inside each view handler.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal != modalNone {
		return a.handleModalKey(msg)
	}
	if a.state == viewCatalog && a.searching {
		return a.handleSearchKey(msg)
	}
	switch a.state {
	case viewCatalog:
		return a.handleCatalogKey(msg)
	case viewReview:
		return a.handleReviewKey(msg)
	case viewDetail:
		return a.handleDetailKey(msg)
	case viewSettings:
		return a.handleSettingsKey(msg)
	}
	return a.handleGlobalKey(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, a.keys.Catalog):
		return a, a.switchTo(viewCatalog)
	case key.Matches(msg, a.keys.Review):
		return a, a.switchTo(viewReview)
	case key.Matches(msg, a.keys.Settings):
		return a, a.switchTo(viewSettings)
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()
	}
	return a, nil
}

func (a *App) switchTo(state appState) tea.Cmd {
	if a.state == state {
		return nil
	}
	a.state = state
	a.errText = ""
	switch state {
	case viewCatalog:
		if a.entries == nil && a.conn.Ready() {
			return a.loadCatalogCmd()
		}
	case viewReview:
		if a.items == nil && a.canReview() {
			return a.startReviewLoad()
		}
	}
	return nil
}

func (a *App) refresh() tea.Cmd {
	switch a.state {
	case viewCatalog:
		if a.conn.Ready() {
			return a.loadCatalogCmd()
		}
	case viewReview, viewDetail:
		if a.canReview() {
			return a.startReviewLoad()
		}
	}
	return nil
}

func (a *App) canReview() bool {
	return a.conn.Ready() && a.conn.LoggedIn()
}

func (a *App) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.closeModal()
		return a, nil
	}
	switch a.modal {
	case modalApprove:
		return a.handleApproveModalKey(msg)
	case modalReject:
		return a.handleRejectModalKey(msg)
	case modalDelete:
		return a.handleDeleteModalKey(msg)
	case modalStatusPick:
		return a.handleStatusModalKey(msg)
	case modalToken:
		return a.handleTokenModalKey(msg)
	}
	return a, nil
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.actingID = ""
	a.actingSeen = ""
	a.statusCursor = 0
	a.reasonInput.Blur()
	a.reasonInput.Reset()
	a.tokenInput.Blur()
	a.tokenInput.Reset()
}

// beginAction registers key as in flight. A second trigger for the same
// artifact and action while the first is unresolved is dropped.
func (a *App) beginAction(key string) bool {
	if _, dup := a.inflight[key]; dup {
		return false
	}
	a.inflight[key] = struct{}{}
	a.busy = true
	a.errText = ""
	return true
}

// justCopied reports whether id still carries its copy flash. Flashes are
// tracked per row so copying a second id does not cut the first one short.
func (a *App) justCopied(id string) bool {
	_, ok := a.copied[id]
	return ok
}

func (a *App) resetRunState() {
	a.runPhase = runIdle
	a.windowID = ""
	a.windowName = ""
	a.window = nil
	a.ranOnce = false
}

func (a *App) syncPager() {
	a.pager.PerPage = a.page.PerPage()
	a.pager.SetTotalPages(max(a.page.Total(), 1))
	a.pager.Page = a.page.Page() - 1
}

// ---- commands ----

func (a *App) connectCmd() tea.Cmd {
	a.busy = true
	a.status = "connecting"
	conn, ctx := a.conn, a.ctx
	return func() tea.Msg {
		if err := conn.Connect(ctx); err != nil {
			return connectErrMsg{err: err}
		}
		return connectedMsg{}
	}
}

func (a *App) loadCatalogCmd() tea.Cmd {
	a.busy = true
	ctx, client, parent := a.ctx, a.svc.Artifacts, a.cfg.Zoo.Collection
	return func() tea.Msg {
		page, err := client.List(ctx, artifact.ListQuery{Parent: parent, Limit: catalogLimit})
		if err != nil {
			return errMsg{err: err}
		}
		return catalogMsg{items: page.Items}
	}
}

// startReviewLoad snapshots the page and filter, bumps the sequence number
// and returns the fetch. Responses carrying an older sequence are dropped
// in Update, so a toggle during a slow fetch cannot paint stale rows.
func (a *App) startReviewLoad() tea.Cmd {
	a.busy = true
	a.loadSeq++
	seq := a.loadSeq
	ctx, svc := a.ctx, a.svc.Review
	page, pendingOnly := a.page.Page(), a.pendingOnly
	return func() tea.Msg {
		res, err := svc.LoadPage(ctx, page, pendingOnly)
		if err != nil {
			return reviewErrMsg{seq: seq, err: err}
		}
		return reviewPageMsg{seq: seq, res: res}
	}
}

func (a *App) copyCmd(id, text string) tea.Cmd {
	clip := a.clip
	return func() tea.Msg {
		if err := clip.WriteAll(text); err != nil {
			return errMsg{err: err}
		}
		return copiedMsg{id: id}
	}
}

func (a *App) openURLCmd(rawURL string) tea.Cmd {
	log := a.log
	return func() tea.Msg {
		var c *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			c = exec.Command("open", rawURL)
		case "windows":
			c = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
		default:
			c = exec.Command("xdg-open", rawURL)
		}
		if err := c.Start(); err != nil {
			log.Warn("open browser", zap.String("url", rawURL), zap.Error(err))
			return statusMsg("open " + rawURL + " in your browser")
		}
		return nil
	}
}

// ---- view ----

func (a *App) View() string {
	if a.width == 0 {
		return "starting…"
	}
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")
	switch a.state {
	case viewCatalog:
		b.WriteString(a.renderCatalog())
	case viewReview:
		b.WriteString(a.renderReview())
	case viewDetail:
		b.WriteString(a.renderDetail())
	case viewSettings:
		b.WriteString(a.renderSettings())
	}
	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	screen := b.String()
	if a.modal != modalNone {
		return renderPopup(screen, a.renderModal(), a.width, a.height)
	}
	return screen
}

func (a *App) renderHeader() string {
	title := titleStyle.Render("zooreview")
	badge := a.connBadge()
	line := title + " " + badge
	if gap := a.width - lipgloss.Width(title) - lipgloss.Width(badge); gap > 1 {
		line = title + strings.Repeat(" ", gap) + badge
	}
	return line + "\n" + a.renderTabs()
}

func (a *App) renderTabs() string {
	tabs := []struct {
		label string
		state appState
	}{
		{"Catalog", viewCatalog},
		{"Review", viewReview},
		{"Settings", viewSettings},
	}
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := "[" + strconv.Itoa(i+1) + "] " + t.label
		if t.state == viewReview && a.pendingTotal > 0 {
			label += " " + pendingBadgeStyle.Render(strconv.Itoa(a.pendingTotal))
		}
		style := tabStyle
		if a.state == t.state || (a.state == viewDetail && a.detailFrom == t.state) {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) connBadge() string {
	switch {
	case !a.conn.Ready():
		return disconnectedBadge.Render("● offline")
	case !a.conn.LoggedIn():
		return anonymousBadge.Render("● anonymous")
	default:
		u := a.conn.User()
		who := u.Email
		if who == "" {
			who = u.ID
		}
		return connectedBadge.Render("● " + who)
	}
}

func (a *App) renderFooter() string {
	var line string
	switch {
	case a.errText != "":
		line = errorStyle.Render(a.errText)
	case a.busy:
		text := a.status
		if text == "" {
			text = "working"
		}
		line = a.spin.View() + " " + statusLineStyle.Render(text)
	case a.status != "":
		line = statusLineStyle.Render(a.status)
	}
	helpLine := a.help.ShortHelpView(a.helpBindings())
	if line == "" {
		return helpLine
	}
	return line + "\n" + helpLine
}

func (a *App) helpBindings() []key.Binding {
	switch a.state {
	case viewReview:
		return a.keys.reviewHelp()
	case viewDetail:
		return a.keys.detailHelp()
	case viewSettings:
		return a.keys.settingsHelp()
	default:
		return a.keys.catalogHelp()
	}
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalApprove:
		return a.renderApproveModal()
	case modalReject:
		return a.renderRejectModal()
	case modalDelete:
		return a.renderDeleteModal()
	case modalStatusPick:
		return a.renderStatusModal()
	case modalToken:
		return a.renderTokenModal()
	}
	return ""
}

type realClipboard struct{}

func (realClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ---- messages ----

type connectedMsg struct{}

type connectErrMsg struct{ err error }

type catalogMsg struct{ items []artifact.Artifact }

type reviewPageMsg struct {
	seq int
	res review.Result
}

type reviewErrMsg struct {
	seq int
	err error
}

type actionDoneMsg struct {
	key    string
	status string
}

type actionErrMsg struct {
	key string
	err error
}

type copiedMsg struct{ id string }

type copyExpiredMsg struct {
	id  string
	gen int
}

type detailMsg struct {
	item         artifact.Artifact
	description  string
	manifestYAML string
}

type windowMsg struct {
	win    runner.Window
	reload bool
}

type windowErrMsg struct {
	reload bool
	err    error
}

type statusMsg string

type errMsg struct{ err error }
