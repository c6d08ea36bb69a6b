package preview

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/frostwall/internal/pairing/match"
	"github.com/runger/frostwall/internal/wallpaper"
)

// tickInterval drives the undo countdown.
const tickInterval = time.Second

type tickMsg time.Time

// appliedMsg is sent when an Apply finishes.
type appliedMsg struct {
	assignment map[string]string
	err        error
}

// undoneMsg is sent when an Undo finishes.
type undoneMsg struct {
	restored map[string]string
	err      error
}

// Controller is what the model drives. *Session implements it.
type Controller interface {
	Apply(ctx context.Context, assignment map[string]string, manual bool) error
	Undo(ctx context.Context) (map[string]string, error)
	ClearExpiredUndo() bool
	UndoStatus() (string, time.Duration, bool)
}

var _ Controller = (*Session)(nil)

// Model is the Bubble Tea model of the pairing preview.
type Model struct {
	ctrl           Controller
	selected       wallpaper.Wallpaper
	selectedScreen string
	mode           match.Mode

	screens []string
	matches map[string][]match.Match
	idx     int

	status string
	err    error
	busy   bool

	// applied holds the last assignment that reached the setter.
	applied map[string]string

	help   help.Model
	width  int
	height int
}

// NewModel creates a preview of matches for every screen other than
// selectedScreen, which shows selected.
func NewModel(ctrl Controller, selectedScreen string, selected wallpaper.Wallpaper, matches map[string][]match.Match, mode match.Mode) Model {
	screens := make([]string, 0, len(matches))
	for screen, ms := range matches {
		if screen != selectedScreen && len(ms) > 0 {
			screens = append(screens, screen)
		}
	}
	sort.Strings(screens)

	return Model{
		ctrl:           ctrl,
		selected:       selected,
		selectedScreen: selectedScreen,
		mode:           mode,
		screens:        screens,
		matches:        matches,
		help:           help.New(),
	}
}

// Applied returns the last applied assignment, or nil.
func (m Model) Applied() map[string]string { return m.applied }

// Index returns the alternative currently shown.
func (m Model) Index() int { return m.idx }

// Alternatives returns the longest candidate list across screens.
func (m Model) Alternatives() int {
	n := 0
	for _, screen := range m.screens {
		n = max(n, len(m.matches[screen]))
	}
	return n
}

// Assignment returns what applying now would show: the selected wallpaper
// on its screen and the current alternative, or the last candidate when a
// screen has fewer, everywhere else.
func (m Model) Assignment() map[string]string {
	out := make(map[string]string, len(m.screens)+1)
	out[m.selectedScreen] = m.selected.Path
	for _, screen := range m.screens {
		ms := m.matches[screen]
		out[screen] = ms[min(m.idx, len(ms)-1)].Path
	}
	return out
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.ctrl.ClearExpiredUndo() {
			m.status = ""
		}
		return m, tick()

	case appliedMsg:
		m.busy = false
		m.err = msg.err
		m.applied = msg.assignment
		if msg.err == nil {
			m.status = fmt.Sprintf("Applied to %d screens", len(msg.assignment))
		}
		return m, nil

	case undoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.restored != nil {
			m.applied = msg.restored
			m.status = "Restored previous wallpapers"
		}
		return m, nil
	}

	return m, nil
}

// keyMap holds the preview key bindings.
type keyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Jump  key.Binding
	Apply key.Binding
	Undo  key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Jump, k.Apply, k.Undo, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Jump}, {k.Apply, k.Undo, k.Quit}}
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("right", "l", "n"),
		key.WithHelp("←/→", "cycle"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "N"),
		key.WithHelp("←", "previous"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "jump"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		m.next()

	case key.Matches(msg, keys.Prev):
		m.prev()

	case key.Matches(msg, keys.Jump):
		if i := int(msg.Runes[0] - '1'); i < m.Alternatives() {
			m.idx = i
		}

	case key.Matches(msg, keys.Apply):
		if m.busy || len(m.screens) == 0 {
			return m, nil
		}
		m.busy = true
		return m, m.applyCmd()

	case key.Matches(msg, keys.Undo):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.undoCmd()
	}

	return m, nil
}

func (m *Model) next() {
	if n := m.Alternatives(); n > 0 {
		m.idx = (m.idx + 1) % n
	}
}

func (m *Model) prev() {
	if n := m.Alternatives(); n > 0 {
		m.idx = (m.idx + n - 1) % n
	}
}

func (m Model) applyCmd() tea.Cmd {
	ctrl := m.ctrl
	assignment := m.Assignment()
	return func() tea.Msg {
		err := ctrl.Apply(context.Background(), assignment, true)
		return appliedMsg{assignment: assignment, err: err}
	}
}

func (m Model) undoCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		restored, err := ctrl.Undo(context.Background())
		return undoneMsg{restored: restored, err: err}
	}
}

// --- View rendering ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	screenStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	nameWidth := 40
	if m.width > 40 {
		nameWidth = m.width - 36
	}

	title := fmt.Sprintf(" Pairing preview · %s on %s · %s ",
		DisplayName(m.selected.Path, nameWidth), m.selectedScreen, m.mode.DisplayName())
	b.WriteString(titleStyle.Render(title))
	b.WriteRune('\n')

	if len(m.screens) == 0 {
		b.WriteString(dimStyle.Render("No matches for other screens"))
		b.WriteRune('\n')
	}

	for _, screen := range m.screens {
		ms := m.matches[screen]
		i := min(m.idx, len(ms)-1)
		cur := ms[i]

		b.WriteString(screenStyle.Render(screen))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d/%d]", i+1, len(ms))))
		b.WriteRune('\n')

		line := fmt.Sprintf("  %s  score %.2f  conf %.2f", DisplayName(cur.Path, nameWidth), cur.Score, cur.Confidence())
		if cur.Harmony.Bonus() > 0 {
			line += "  " + cur.Harmony.Name()
		}
		if cur.SharedTags > 0 {
			line += fmt.Sprintf("  %d shared tags", cur.SharedTags)
		}
		if i == m.idx {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteRune('\n')
	}

	b.WriteString(m.viewStatus())
	b.WriteRune('\n')
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %s", m.err))
	}
	if msg, remaining, ok := m.ctrl.UndoStatus(); ok {
		secs := int((remaining + time.Second - 1) / time.Second)
		return statusStyle.Render(fmt.Sprintf("%s · press u to undo (%ds)", msg, secs))
	}
	if m.busy {
		return dimStyle.Render("Working...")
	}
	return statusStyle.Render(m.status)
}
