// Package tui is an interactive terminal search front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
)

// Searcher is the part of service.Service the UI needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) (*search.Response, error)
	Stats() service.Stats
}

// Options configures the UI.
type Options struct {
	PageSize      int
	HighlightPre  string // markers the service wraps matches in
	HighlightPost string
	Colors        Colors
}

// Colors are lipgloss color strings.
type Colors struct {
	Highlight string
	Ref       string
	Text      string
	Dim       string
}

// DefaultColors returns the default palette.
func DefaultColors() Colors {
	return Colors{
		Highlight: "#cba6f7",
		Ref:       "#89b4fa",
		Text:      "#cdd6f4",
		Dim:       "#6c7086",
	}
}

type mode int

const (
	inputMode mode = iota
	resultsMode
)

type searchResultMsg struct {
	resp *search.Response
	err  error
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	searcher Searcher
	opts     Options

	mode     mode
	query    string
	scope    int
	offset   int
	selected int
	expanded bool
	resp     *search.Response
	err      error
	loading  bool

	width, height int

	refStyle   lipgloss.Style
	textStyle  lipgloss.Style
	matchStyle lipgloss.Style
	dimStyle   lipgloss.Style
	titleStyle lipgloss.Style
}

// New returns a model ready for tea.NewProgram.
func New(ctx context.Context, s Searcher, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.HighlightPre == "" && opts.HighlightPost == "" {
		opts.HighlightPre, opts.HighlightPost = "<mark>", "</mark>"
	}
	if opts.Colors == (Colors{}) {
		opts.Colors = DefaultColors()
	}
	c := opts.Colors
	return Model{
		ctx:        ctx,
		searcher:   s,
		opts:       opts,
		width:      80,
		height:     24,
		refStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Ref)),
		textStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		matchStyle: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(c.Highlight)),
		dimStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Dim)),
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Highlight)),
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, s Searcher, opts Options) error {
	p := tea.NewProgram(New(ctx, s, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) search() tea.Cmd {
	query := m.query
	opts := search.Options{
		Scope:  search.Scopes[m.scope],
		Limit:  m.opts.PageSize,
		Offset: m.offset,
	}
	return func() tea.Msg {
		resp, err := m.searcher.Search(m.ctx, query, opts)
		return searchResultMsg{resp: resp, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case searchResultMsg:
		m.loading = false
		m.resp, m.err = msg.resp, msg.err
		m.selected = 0
		m.expanded = false
		if msg.err == nil {
			m.mode = resultsMode
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == inputMode {
			return m.updateInput(msg)
		}
		return m.updateResults(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.query == "" {
			return m, tea.Quit
		}
		m.query = ""
	case tea.KeyEnter:
		if strings.TrimSpace(m.query) == "" {
			return m, nil
		}
		m.offset = 0
		m.loading = true
		return m, m.search()
	case tea.KeyTab:
		m.scope = (m.scope + 1) % len(search.Scopes)
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.expanded {
			m.expanded = false
			return m, nil
		}
		m.mode = inputMode
		return m, nil
	case tea.KeyEnter:
		m.expanded = !m.expanded
		return m, nil
	case tea.KeyUp:
		m.move(-1)
		return m, nil
	case tea.KeyDown:
		m.move(1)
		return m, nil
	case tea.KeyRunes:
	default:
		return m, nil
	}

	switch string(msg.Runes) {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = inputMode
		m.query = ""
	case "k":
		m.move(-1)
	case "j":
		m.move(1)
	case "n":
		if m.resp != nil && m.offset+m.opts.PageSize < m.resp.Total {
			m.offset += m.opts.PageSize
			m.loading = true
			return m, m.search()
		}
	case "p":
		if m.offset > 0 {
			m.offset = max(0, m.offset-m.opts.PageSize)
			m.loading = true
			return m, m.search()
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if m.resp == nil || len(m.resp.Results) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.resp.Results)-1)
	m.expanded = false
}

func (m Model) View() string {
	var b strings.Builder

	st := m.searcher.Stats()
	status := "index not built"
	if st.IndexBuilt {
		status = fmt.Sprintf("%s verses in %d books", humanize.Comma(int64(st.TotalVerses)), st.TotalBooks)
	}
	b.WriteString(m.titleStyle.Render("Juniper Search"))
	b.WriteString("  ")
	b.WriteString(m.dimStyle.Render(status))
	b.WriteString("\n\n")

	cursor := ""
	if m.mode == inputMode {
		cursor = "█"
	}
	fmt.Fprintf(&b, "Search: %s%s  %s\n\n", m.query, cursor, m.dimStyle.Render("["+string(search.Scopes[m.scope])+"]"))

	switch {
	case m.loading:
		b.WriteString(m.dimStyle.Render("searching..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(m.matchStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.resp != nil:
		m.renderResults(&b)
	}

	b.WriteString("\n")
	b.WriteString(m.dimStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderResults(b *strings.Builder) {
	if m.resp.Total == 0 {
		b.WriteString(m.dimStyle.Render(fmt.Sprintf("no matches for %q", m.resp.Query)))
		b.WriteString("\n")
		return
	}
	last := m.resp.Offset + len(m.resp.Results)
	fmt.Fprintf(b, "%s\n\n", m.dimStyle.Render(fmt.Sprintf("%d-%d of %s matches",
		m.resp.Offset+1, last, humanize.Comma(int64(m.resp.Total)))))

	width := max(m.width-4, 20)
	for i, r := range m.resp.Results {
		marker := "  "
		if i == m.selected && m.mode == resultsMode {
			marker = m.titleStyle.Render("> ")
		}
		b.WriteString(marker)
		b.WriteString(m.refStyle.Render(r.Ref))
		b.WriteString("\n")
		text := r.Snippet
		if m.expanded && i == m.selected {
			text = r.Text
		}
		for _, line := range wrap(text, width) {
			b.WriteString("  ")
			b.WriteString(m.highlight(line))
			b.WriteString("\n")
		}
	}
}

func (m Model) highlight(s string) string {
	return Highlight(s, m.opts.HighlightPre, m.opts.HighlightPost, m.textStyle, m.matchStyle)
}

// Highlight renders text between pre and post with match and the rest with
// plain. An unclosed pre runs to the end of s, and a stray post is dropped,
// so lines of a wrapped snippet can be rendered one at a time.
func Highlight(s, pre, post string, plain, match lipgloss.Style) string {
	var b strings.Builder
	for {
		i := strings.Index(s, pre)
		if i < 0 || pre == "" {
			b.WriteString(plain.Render(strings.ReplaceAll(s, post, "")))
			return b.String()
		}
		b.WriteString(plain.Render(strings.ReplaceAll(s[:i], post, "")))
		s = s[i+len(pre):]
		j := strings.Index(s, post)
		if j < 0 || post == "" {
			b.WriteString(match.Render(s))
			return b.String()
		}
		b.WriteString(match.Render(s[:j]))
		s = s[j+len(post):]
	}
}

func (m Model) help() string {
	if m.mode == inputMode {
		return "enter: search • tab: scope • esc: clear/quit"
	}
	return "j/k: move • enter: full verse • n/p: next/prev page • /: new search • esc: edit • q: quit"
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
