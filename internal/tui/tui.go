// Package tui implements the interactive incremental-search session: a
// single-threaded bubbletea loop that reads key events, updates the query,
// re-ranks the candidates and renders the result list. Raw terminal mode and
// the alternate screen are acquired by the bubbletea program and restored on
// every exit path, including errors and signals.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termsearch/termsearch/internal/history"
	"github.com/termsearch/termsearch/internal/logger"
	"github.com/termsearch/termsearch/internal/search"
)

// Options configures the interactive session.
type Options struct {
	// InitialQuery pre-seeds the query before the first redraw
	InitialQuery string

	// MaxResults bounds the displayed candidate list
	MaxResults int

	// Weights for the recency/frequency blend
	Weights search.Weights

	// Prompt shown before the query line
	Prompt string

	// Highlight matched query characters in candidate rows
	Highlight bool
}

// Result is the terminal outcome of a session: the selected command when the
// user committed, or Accepted=false when the session was cancelled.
type Result struct {
	Command  string
	Accepted bool
}

// keyMap defines key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "shift+tab"),
		key.WithHelp("↑/shift+tab", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "tab"),
		key.WithHelp("↓/tab", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c", "ctrl+d"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15"))
	matchStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	selectedMatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Background(lipgloss.Color("15")).Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// model is the session state: the query input, the ranked candidates and the
// selected index. It is mutated only inside Update, one key event at a time.
type model struct {
	agg  *history.Aggregate
	opts Options

	input      textinput.Model
	candidates []search.Candidate
	selected   int

	width  int
	height int

	result Result
	keys   keyMap
}

func newModel(agg *history.Aggregate, opts Options) model {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.CharLimit = 256
	ti.Focus()
	ti.SetValue(opts.InitialQuery)

	m := model{
		agg:   agg,
		opts:  opts,
		input: ti,
		keys:  keys,
	}
	m.candidates = search.Rank(agg, opts.InitialQuery, opts.Weights, opts.MaxResults)
	return m
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.result = Result{}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Enter):
			if len(m.candidates) > 0 {
				m.result = Result{
					Command:  m.candidates[m.selected].Entry.Command,
					Accepted: true,
				}
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Up):
			// Clamp at the top, no wraparound
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			// Clamp at the bottom, no wraparound
			if m.selected < len(m.candidates)-1 {
				m.selected++
			}
			return m, nil
		}

		// Everything else edits the query
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.candidates = search.Rank(m.agg, m.input.Value(), m.opts.Weights, m.opts.MaxResults)
			m.selected = 0
		}
		return m, cmd
	}

	// Forward everything else (cursor blink and friends) to the input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.candidates) == 0 {
		b.WriteString(statusStyle.Render("  no matching commands"))
		b.WriteString("\n")
	}

	for i, cand := range m.candidates {
		b.WriteString(m.renderCandidate(cand, i == m.selected))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render("↑/↓: navigate • enter: select • esc: cancel"))

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

// renderCandidate renders one candidate row, marking the selected row and
// highlighting the matched query characters.
func (m model) renderCandidate(cand search.Candidate, selected bool) string {
	cursor := "  "
	base := lipgloss.NewStyle()
	match := matchStyle
	if selected {
		cursor = "> "
		base = selectedStyle
		match = selectedMatchStyle
	}

	text := cand.Entry.Command
	if !m.opts.Highlight || len(cand.Matched) == 0 {
		return cursor + base.Render(text)
	}

	matched := make(map[int]bool, len(cand.Matched))
	for _, idx := range cand.Matched {
		matched[idx] = true
	}

	// Group consecutive runs with the same style to keep the escape
	// sequences short.
	var out strings.Builder
	var run strings.Builder
	var runMatched bool
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			out.WriteString(match.Render(run.String()))
		} else {
			out.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}
	for bi, r := range text {
		if matched[bi] != runMatched {
			flush()
			runMatched = matched[bi]
		}
		run.WriteRune(r)
	}
	flush()

	return cursor + out.String()
}

// Run drives one interactive session over the aggregate and returns its
// terminal outcome. Rendering goes to stderr so stdout stays untouched for
// the invoking shell widget.
func Run(agg *history.Aggregate, opts Options) (Result, error) {
	log := logger.GetLogger().TUI()

	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}

	log.Debug().
		Str("initial_query", opts.InitialQuery).
		Int("max_results", opts.MaxResults).
		Int("entries", agg.Len()).
		Msg("starting interactive session")

	program := tea.NewProgram(newModel(agg, opts), tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		return Result{}, fmt.Errorf("interactive session failed: %w", err)
	}

	result := final.(model).result
	log.Debug().Bool("accepted", result.Accepted).Msg("interactive session finished")
	return result, nil
}
