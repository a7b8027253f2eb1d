package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jlbmaritime/hotspotctl/internal/reconcile"
	"github.com/jlbmaritime/hotspotctl/internal/workflow"
	"github.com/jlbmaritime/hotspotctl/wifi"
)

const ssidColumnWidth = 30

// itemDelegate renders a network row.
type itemDelegate struct {
	list.DefaultDelegate
	model *NetworksModel
}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(networkItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, listItem)
		return
	}

	title := truncate(i.icon()+i.SSID, ssidColumnWidth)
	padding := strings.Repeat(" ", max(ssidColumnWidth-lipgloss.Width(title), 0))

	var titleStyle lipgloss.Style
	switch {
	case d.model.state.IsCurrent(i.SSID):
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true)
	case i.IsSaved && i.Signal == 0:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Disabled)
	case i.IsSaved:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success)
	default:
		titleStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	}
	title = titleStyle.Render(title)

	connectedPart := ""
	if d.model.state.IsCurrent(i.SSID) {
		connectedPart = " (Connected)"
	}
	var desc string
	if i.Signal > 0 {
		desc = lipgloss.NewStyle().Foreground(signalColor(i.Signal)).Render(i.Description()) + connectedPart
	} else {
		desc = lipgloss.NewStyle().Foreground(CurrentTheme.Subtle).Render(i.Description() + connectedPart)
	}

	if index == m.Index() {
		fmt.Fprint(w, lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render("▶ ")+title+padding+" "+desc)
		return
	}
	fmt.Fprint(w, "  "+title+padding+" "+desc)
}

// NetworksModel is the main screen: the connection header, saved and
// available networks, and the key bindings that start workflow actions.
type NetworksModel struct {
	list  list.Model
	state reconcile.State
}

// NewNetworksModel returns the network list screen.
func NewNetworksModel() *NetworksModel {
	m := &NetworksModel{}
	l := list.New([]list.Item{}, itemDelegate{DefaultDelegate: list.NewDefaultDelegate(), model: m}, 0, 0)
	l.Title = fmt.Sprintf("%-29s %s", "WiFi Network", "Signal")
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
			key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forget")),
			key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "rescan")),
		}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return append([]key.Binding{
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new network")),
			key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "ping")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "diagnostics")),
			key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
		}, l.AdditionalShortHelpKeys()...)
	}
	l.Styles.Title = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(CurrentTheme.Normal)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(CurrentTheme.Primary)
	m.list = l
	return m
}

func (m *NetworksModel) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted network, if any.
func (m *NetworksModel) Selected() (networkItem, bool) {
	i, ok := m.list.SelectedItem().(networkItem)
	return i, ok
}

func (m *NetworksModel) setState(s reconcile.State) tea.Cmd {
	var selected string
	if i, ok := m.Selected(); ok {
		selected = i.SSID
	}
	m.state = s

	saved := append([]wifi.Network(nil), s.Saved...)
	available := append([]wifi.Network(nil), s.Available...)
	wifi.SortNetworks(saved)
	wifi.SortNetworks(available)
	networks := append(saved, available...)
	items := make([]list.Item, len(networks))
	index := 0
	for i, n := range networks {
		items[i] = networkItem{n}
		if n.SSID == selected {
			index = i
		}
	}
	cmd := m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(index)
	}
	return cmd
}

func (m *NetworksModel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
		// header, placeholders, actions and status lines
		m.list.SetSize(msg.Width-h, msg.Height-v-8)
		return m, nil
	case StateMsg:
		return m, m.setState(msg.State)
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *NetworksModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "s":
		return dispatch(workflow.Rescan{}), true
	case "n":
		return push(NewPasswordModel("", true)), true
	case "p":
		return push(NewPingModel()), true
	case "d":
		return tea.Batch(push(NewDiagnosticsModel()), dispatch(workflow.Diagnose{})), true
	case "l":
		return push(NewLogViewModel()), true
	case "f":
		selected, ok := m.Selected()
		if !ok || !m.state.CanForget(selected.SSID) {
			return nil, true
		}
		return dispatch(workflow.Forget{SSID: selected.SSID}), true
	case "c", "enter":
		selected, ok := m.Selected()
		if !ok {
			return nil, true
		}
		return m.connect(selected), true
	}
	return nil, false
}

// connect picks the path for the selected row. Saved networks reconnect
// with stored credentials; scan results open the join dialog, where a blank
// passphrase is accepted for open networks.
func (m *NetworksModel) connect(n networkItem) tea.Cmd {
	switch {
	case m.state.IsCurrent(n.SSID):
		return nil
	case m.state.IsSaved(n.SSID):
		return dispatch(workflow.ConnectSaved{SSID: n.SSID})
	}
	return push(NewPasswordModel(n.SSID, false).WithSecurity(n.Security))
}

func (m *NetworksModel) View() string {
	var b strings.Builder
	b.WriteString(renderConnection(m.state))
	b.WriteString("\n\n")

	subtle := lipgloss.NewStyle().Foreground(CurrentTheme.Subtle)
	var placeholders []string
	if msg := m.state.SavedMessage(); msg != "" {
		placeholders = append(placeholders, msg)
	}
	if msg := m.state.ScanMessage(); msg != "" {
		placeholders = append(placeholders, msg)
	}

	body := m.list.View()
	if len(placeholders) > 0 {
		body += "\n" + subtle.Render(strings.Join(placeholders, "\n"))
	}
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(CurrentTheme.Border)
	b.WriteString(border.Render(body))

	if selected, ok := m.Selected(); ok {
		if actions := rowActions(m.state, selected.Network); len(actions) > 0 {
			b.WriteString("\n" + subtle.Render(strings.Join(actions, " · ")))
		}
	}
	b.WriteString("\n" + m.list.Help.View(m))
	return lipgloss.NewStyle().Margin(1, 0, 0, 0).Render(b.String())
}

func (m *NetworksModel) FullHelp() [][]key.Binding {
	return m.list.FullHelp()
}

func (m *NetworksModel) ShortHelp() []key.Binding {
	return m.list.AdditionalShortHelpKeys()
}
