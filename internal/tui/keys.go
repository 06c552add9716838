package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap declares every binding once. Handlers match against these instead
// of raw strings; the footer renders them through bubbles/help.
type keyMap struct {
	Quit key.Binding
	Help key.Binding

	Catalog  key.Binding
	Review   key.Binding
	Settings key.Binding

	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding

	PrevCover key.Binding
	NextCover key.Binding
	Search    key.Binding

	PrevPage      key.Binding
	NextPage      key.Binding
	TogglePending key.Binding
	Refresh       key.Binding

	Approve  key.Binding
	Reject   key.Binding
	Delete   key.Binding
	Status   key.Binding
	InReview key.Binding
	Revision key.Binding
	Copy     key.Binding

	Launch      key.Binding
	OpenBrowser key.Binding

	Token      key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	SaveConfig key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		Catalog:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "catalog")),
		Review:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "review")),
		Settings: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "settings")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		PrevCover: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev cover")),
		NextCover: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next cover")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),

		PrevPage:      key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←/[", "prev page")),
		NextPage:      key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→/]", "next page")),
		TogglePending: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pending only")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),

		Approve:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
		Reject:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete staged")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set status")),
		InReview: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "mark in-review")),
		Revision: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "request revision")),
		Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy id")),

		Launch:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run model")),
		OpenBrowser: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open window")),

		Token:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set token")),
		Connect:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
		Disconnect: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "disconnect")),
		SaveConfig: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save config")),
	}
}

func (k keyMap) catalogHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PrevCover, k.NextCover, k.Search, k.Enter, k.Review, k.Quit}
}

func (k keyMap) reviewHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Approve, k.Reject, k.Delete, k.Status, k.TogglePending, k.Copy, k.Enter, k.Quit}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Launch, k.OpenBrowser, k.Copy, k.Back, k.Quit}
}

func (k keyMap) settingsHelp() []key.Binding {
	return []key.Binding{k.Token, k.Connect, k.Disconnect, k.SaveConfig, k.Back, k.Quit}
}
