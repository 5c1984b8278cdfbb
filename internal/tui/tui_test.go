package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus/corpustest"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
)

func newModel(t *testing.T, pageSize int) Model {
	t.Helper()
	cfg := service.DefaultConfig()
	cfg.Source = "test"
	svc := service.New(corpus.Static(corpustest.Mixed()), cfg)
	return New(context.Background(), svc, Options{PageSize: pageSize})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// send applies msg and runs any returned command once, feeding its result back.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	out := cmd()
	if res, ok := out.(searchResultMsg); ok {
		next, _ = m.Update(res)
		return next.(Model), nil
	}
	return m, cmd
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	for _, word := range strings.Split(q, " ") {
		if m.query != "" {
			m, _ = send(t, m, key(tea.KeySpace))
		}
		m, _ = send(t, m, runes(word))
	}
	return m
}

func TestSearchFlow(t *testing.T) {
	m := newModel(t, 10)
	m = typeQuery(t, m, "in the beginning")
	if m.query != "in the beginning" {
		t.Fatalf("query = %q", m.query)
	}

	m, _ = send(t, m, key(tea.KeyEnter))
	if m.mode != resultsMode {
		t.Fatalf("mode = %v, want results", m.mode)
	}
	if m.resp == nil || m.resp.Total == 0 {
		t.Fatal("no results")
	}

	view := m.View()
	for _, want := range []string{"Genesis 1:1", "John 1:1", "11 verses in 4 books"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "<mark>") {
		t.Error("raw highlight markers in view")
	}
}

func TestNavigationAndExpand(t *testing.T) {
	m := newModel(t, 10)
	m = typeQuery(t, m, "God")
	m, _ = send(t, m, key(tea.KeyEnter))
	n := len(m.resp.Results)
	if n < 2 {
		t.Fatalf("need at least 2 results, got %d", n)
	}

	m, _ = send(t, m, runes("j"))
	if m.selected != 1 {
		t.Errorf("selected after j = %d, want 1", m.selected)
	}
	m, _ = send(t, m, runes("k"))
	m, _ = send(t, m, runes("k"))
	if m.selected != 0 {
		t.Errorf("selected after kk = %d, want 0", m.selected)
	}
	for range n + 3 {
		m, _ = send(t, m, key(tea.KeyDown))
	}
	if m.selected != n-1 {
		t.Errorf("selected = %d, want clamp to %d", m.selected, n-1)
	}

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 400, Height: 40})
	m, _ = send(t, m, key(tea.KeyEnter))
	if !m.expanded {
		t.Fatal("enter did not expand")
	}
	if !strings.Contains(m.View(), m.resp.Results[n-1].Text) {
		t.Error("expanded view does not show full verse text")
	}
	m, _ = send(t, m, key(tea.KeyEsc))
	if m.expanded || m.mode != resultsMode {
		t.Errorf("esc from expanded: expanded=%v mode=%v", m.expanded, m.mode)
	}
	m, _ = send(t, m, key(tea.KeyEsc))
	if m.mode != inputMode {
		t.Error("esc did not return to input")
	}
}

func TestPaging(t *testing.T) {
	m := newModel(t, 2)
	m = typeQuery(t, m, "God")
	m, _ = send(t, m, key(tea.KeyEnter))
	total := m.resp.Total
	if total <= 2 {
		t.Fatalf("total = %d, need more than one page", total)
	}

	m, _ = send(t, m, runes("n"))
	if m.offset != 2 || m.resp.Offset != 2 {
		t.Errorf("offset after n = %d/%d, want 2", m.offset, m.resp.Offset)
	}
	m, _ = send(t, m, runes("p"))
	if m.offset != 0 {
		t.Errorf("offset after p = %d, want 0", m.offset)
	}
	// p on the first page is a no-op.
	if _, cmd := m.Update(runes("p")); cmd != nil {
		t.Error("p on first page issued a search")
	}
}

func TestScopeCycle(t *testing.T) {
	m := newModel(t, 10)
	for i := range len(search.Scopes) {
		if got := search.Scopes[m.scope]; got != search.Scopes[i] {
			t.Errorf("scope = %s, want %s", got, search.Scopes[i])
		}
		m, _ = send(t, m, key(tea.KeyTab))
	}
	if m.scope != 0 {
		t.Errorf("scope did not wrap, got %d", m.scope)
	}

	m, _ = send(t, m, key(tea.KeyTab)) // canon
	m = typeQuery(t, m, "God")
	m, _ = send(t, m, key(tea.KeyEnter))
	for _, r := range m.resp.Results {
		if r.Book == "Tobit" || r.Book == "1 Enoch" {
			t.Errorf("canon scope returned %s", r.Ref)
		}
	}
}

func TestInputEditing(t *testing.T) {
	m := newModel(t, 10)
	m, _ = send(t, m, runes("lové"))
	m, _ = send(t, m, key(tea.KeyBackspace))
	if m.query != "lov" {
		t.Errorf("query after backspace = %q", m.query)
	}

	// Blank queries are not submitted.
	m.query = "   "
	if _, cmd := m.Update(key(tea.KeyEnter)); cmd != nil {
		t.Error("blank query issued a search")
	}

	next, _ := m.Update(key(tea.KeyEsc))
	m = next.(Model)
	if m.query != "" {
		t.Errorf("esc did not clear query: %q", m.query)
	}
	if _, cmd := m.Update(key(tea.KeyEsc)); cmd == nil {
		t.Error("esc on empty query should quit")
	}
}

func TestNoMatches(t *testing.T) {
	m := newModel(t, 10)
	m = typeQuery(t, m, "zzyzx")
	m, _ = send(t, m, key(tea.KeyEnter))
	if !strings.Contains(m.View(), `no matches for "zzyzx"`) {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestSearchErrorShown(t *testing.T) {
	m := newModel(t, 10)
	next, _ := m.Update(searchResultMsg{err: context.Canceled})
	m = next.(Model)
	if m.mode != inputMode {
		t.Error("error moved to results mode")
	}
	if !strings.Contains(m.View(), "error: context canceled") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestHighlight(t *testing.T) {
	m := newModel(t, 10)
	tests := []string{
		"plain text",
		"a <mark>match</mark> here",
		"<mark>split across",
		"tail</mark> of a split",
	}
	for _, in := range tests {
		got := m.highlight(in)
		if strings.Contains(got, "<mark>") || strings.Contains(got, "</mark>") {
			t.Errorf("highlight(%q) kept markers: %q", in, got)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("In the beginning God created the heaven and the earth.", 20)
	for _, line := range got {
		if len([]rune(line)) > 20 {
			t.Errorf("line %q longer than 20", line)
		}
	}
	if strings.Join(got, " ") != "In the beginning God created the heaven and the earth." {
		t.Errorf("wrap lost words: %q", got)
	}
	if wrap("   ", 10) != nil {
		t.Error("blank text should wrap to nil")
	}
}
