// Package ui renders tracked connections in a terminal view, consuming
// summaries pushed over a websocket connection to a running daemon.
package ui

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nettap/tcpreasm-view/internal/models"
	"github.com/nettap/tcpreasm-view/internal/wsclient"
)

const maxTracked = 2000

// ViewMode selects what the main pane renders.
type ViewMode int

const (
	ViewModeList ViewMode = iota
	ViewModeDetail
)

// Model is the Bubble Tea model for the viewer.
type Model struct {
	client *wsclient.Client

	summaries map[uint32]models.ConnectionSummary
	ordered   []uint32 // flow keys, insertion order

	width, height int
	scrollOffset  int
	selectedIndex int

	connected        bool
	connectionStatus string

	viewMode ViewMode
	showHelp bool
}

// New creates a model bound to client, ready to Init.
func New(client *wsclient.Client) Model {
	return Model{
		client:           client,
		summaries:        make(map[uint32]models.ConnectionSummary, maxTracked),
		connectionStatus: "connecting to daemon...",
		viewMode:         ViewModeList,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.client.Connect(), tea.EnterAltScreen, tickCmd())
}

type tickMsg time.Time
type reconnectMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.client.WaitForSummary())

	case reconnectMsg:
		m.connectionStatus = "reconnecting..."
		return m, m.client.Reconnect()

	case wsclient.ConnectionStatusMsg:
		m.connected = msg.Connected
		if msg.Connected {
			m.connectionStatus = "connected"
			return m, nil
		}
		if msg.Error != nil {
			m.connectionStatus = fmt.Sprintf("connection failed: %s", msg.Error)
		}
		return m, tea.Tick(2*time.Second, func(t time.Time) tea.Msg { return reconnectMsg{} })

	case wsclient.SummaryMsg:
		m.applySummary(models.ConnectionSummary(msg))
		return m, nil
	}
	return m, nil
}

func (m *Model) applySummary(s models.ConnectionSummary) {
	if _, seen := m.summaries[s.FlowKey]; !seen {
		if len(m.ordered) >= maxTracked {
			oldest := m.ordered[0]
			m.ordered = m.ordered[1:]
			delete(m.summaries, oldest)
		}
		m.ordered = append(m.ordered, s.FlowKey)
	}
	m.summaries[s.FlowKey] = s
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = true
		return m, nil
	case "j", "down":
		m.moveSelection(1)
	case "k", "up":
		m.moveSelection(-1)
	case "g":
		m.selectedIndex = 0
		m.scrollOffset = 0
	case "G":
		m.selectedIndex = len(m.ordered) - 1
	case "ctrl+d":
		m.moveSelection(m.viewportHeight())
	case "ctrl+u":
		m.moveSelection(-m.viewportHeight())
	case "enter":
		if m.viewMode == ViewModeList && len(m.ordered) > 0 {
			m.viewMode = ViewModeDetail
		}
	case "esc":
		m.viewMode = ViewModeList
	}
	return m, nil
}

func (m *Model) moveSelection(delta int) {
	n := len(m.ordered)
	if n == 0 {
		return
	}
	m.selectedIndex += delta
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	if m.selectedIndex >= n {
		m.selectedIndex = n - 1
	}

	viewHeight := m.viewportHeight()
	if m.selectedIndex < m.scrollOffset {
		m.scrollOffset = m.selectedIndex
	}
	if m.selectedIndex >= m.scrollOffset+viewHeight {
		m.scrollOffset = m.selectedIndex - viewHeight + 1
	}
}

func (m Model) viewportHeight() int {
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	return h
}

// sortedSummaries returns the tracked summaries, most recently started
// connections first.
func (m Model) sortedSummaries() []models.ConnectionSummary {
	out := make([]models.ConnectionSummary, 0, len(m.ordered))
	for _, key := range m.ordered {
		out = append(out, m.summaries[key])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	switch m.viewMode {
	case ViewModeDetail:
		body = m.renderDetail()
	default:
		body = m.renderList()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(m.connectionStatus)
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Render("tcpreasm-view")
	return lipgloss.NewStyle().
		Width(m.width).
		Background(lipgloss.Color("235")).
		Render(fmt.Sprintf(" %s  %s  tracked=%d", title, status, len(m.ordered)))
}

func (m Model) renderFooter() string {
	help := " q:quit | ?:help | j/k:navigate | enter:details | esc:back "
	if m.viewMode == ViewModeDetail {
		help = " esc:back | q:quit "
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		Align(lipgloss.Center).
		Render(help)
}

func (m Model) renderHelp() string {
	text := `
 tcpreasm-view - Help

 Navigation:
   j/k     Move down/up
   g/G     Go to top/bottom
   Ctrl+d  Page down
   Ctrl+u  Page up

 Actions:
   enter   Open connection detail
   esc     Back to list
   ?/h     Toggle this help
   q       Quit

 Press any key to return...`
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(text)
}

func (m Model) renderList() string {
	summaries := m.sortedSummaries()
	viewHeight := m.viewportHeight()

	if len(summaries) == 0 {
		message := "no tracked connections yet"
		if !m.connected {
			message = "not connected to daemon"
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Align(lipgloss.Center).
			Width(m.width).
			Height(viewHeight).
			Render(message)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	selectedStyle := lipgloss.NewStyle().Background(lipgloss.Color("237"))

	lines := []string{headerStyle.Render(fmt.Sprintf("%-22s %-22s %-6s %-8s %-10s %-8s %-20s",
		"Source", "Destination", "Open", "Msgs", "Bytes", "Missing", "Server name"))}

	end := m.scrollOffset + viewHeight - 1
	if end > len(summaries) {
		end = len(summaries)
	}
	for i := m.scrollOffset; i < end; i++ {
		s := summaries[i]
		row := fmt.Sprintf("%-22s %-22s %-6s %-8d %-10s %-8d %-20s",
			truncate(s.SrcEndpoint(), 22), truncate(s.DstEndpoint(), 22),
			openLabel(s.Open), s.MessageCount, formatBytes(int(s.BytesDelivered)), s.MissingCount,
			truncate(s.ServerName, 20))
		if i == m.selectedIndex {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	return lipgloss.NewStyle().Height(viewHeight).Render(joinLines(lines))
}

func (m Model) renderDetail() string {
	summaries := m.sortedSummaries()
	if m.selectedIndex >= len(summaries) {
		return "no connection selected"
	}
	s := summaries[m.selectedIndex]

	end := "(open)"
	if !s.Open {
		end = s.EndTime.Format(time.RFC3339)
	}

	lines := []string{
		fmt.Sprintf("Flow key:    %d", s.FlowKey),
		fmt.Sprintf("Source:      %s", s.SrcEndpoint()),
		fmt.Sprintf("Destination: %s", s.DstEndpoint()),
		fmt.Sprintf("Started:     %s", s.StartTime.Format(time.RFC3339)),
		fmt.Sprintf("Ended:       %s", end),
		fmt.Sprintf("Messages:    %d", s.MessageCount),
		fmt.Sprintf("Bytes:       %s", formatBytes(int(s.BytesDelivered))),
		fmt.Sprintf("Missing:     %d gaps", s.MissingCount),
	}
	if s.ServerName != "" {
		lines = append(lines, fmt.Sprintf("Server name: %s", s.ServerName))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.viewportHeight()).
		Padding(1, 2).
		Render(joinLines(lines))
}

func openLabel(open bool) string {
	if open {
		return "yes"
	}
	return "no"
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, l := range lines[1:] {
		out += "\n" + l
	}
	return out
}
