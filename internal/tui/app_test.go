package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"versefinder/internal/bibleapi"
	"versefinder/internal/model"
	"versefinder/internal/viewstate"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string
	rec   *model.VerseRecord
	err   error
}

func (f *fakeSource) GetVerse(_ context.Context, passage string) (*model.VerseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, passage)
	return f.rec, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func john316() *model.VerseRecord {
	return &model.VerseRecord{
		Reference: "John 3:16",
		Verses: []model.VerseLine{
			{BookID: "JHN", BookName: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world...\n"},
		},
		Text:            "For God so loved the world...\n",
		TranslationName: "World English Bible",
	}
}

func newScreen(t *testing.T, src *fakeSource) (Model, *viewstate.Holder) {
	t.Helper()
	h := viewstate.New(context.Background(), src, viewstate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(h.Close)

	m := New(h)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model), h
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// settle runs cmd (the fetch), waits for the holder and feeds its final
// state back into the model.
func settle(t *testing.T, m Model, h *viewstate.Holder, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	cmd()
	h.Wait()
	updated, _ := m.Update(stateMsg{state: h.State(), ok: true})
	return updated.(Model)
}

func TestBlankInputIsSuppressed(t *testing.T) {
	src := &fakeSource{rec: john316()}
	m, _ := newScreen(t, src)
	m.input.SetValue("   ")

	updated, cmd := m.Update(enter())
	m = updated.(Model)

	if cmd != nil {
		t.Error("blank input should not produce a command")
	}
	if m.inputErr == "" {
		t.Error("expected an inline hint for blank input")
	}
	if !strings.Contains(m.View(), "enter a passage first") {
		t.Error("hint not rendered")
	}
	if src.callCount() != 0 {
		t.Errorf("source called %d times", src.callCount())
	}
}

func TestEnterFetchesAndRendersVerses(t *testing.T) {
	src := &fakeSource{rec: john316()}
	m, h := newScreen(t, src)
	m.input.SetValue(" john 3:16 ")

	updated, cmd := m.Update(enter())
	m = settle(t, updated.(Model), h, cmd)

	if got := src.calls; len(got) != 1 || got[0] != "john 3:16" {
		t.Errorf("source calls = %q, want [\"john 3:16\"]", got)
	}
	view := m.View()
	for _, want := range []string{"John 3:16", "World English Bible", "For God so loved the world..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLoadingView(t *testing.T) {
	m, _ := newScreen(t, &fakeSource{})
	updated, cmd := m.Update(stateMsg{
		state: viewstate.State{Phase: viewstate.PhaseLoading, Passage: "john 3:16", Seq: 1},
		ok:    true,
	})
	m = updated.(Model)

	if cmd == nil {
		t.Error("expected wait and spinner commands while loading")
	}
	if !strings.Contains(m.View(), "Fetching john 3:16") {
		t.Errorf("loading view missing progress line:\n%s", m.View())
	}
}

func TestFailedView(t *testing.T) {
	src := &fakeSource{err: &bibleapi.TransportError{Kind: bibleapi.KindStatus, StatusCode: 404, Detail: "not found"}}
	m, h := newScreen(t, src)
	m.input.SetValue("nowhere 1:1")

	updated, cmd := m.Update(enter())
	m = settle(t, updated.(Model), h, cmd)

	view := m.View()
	if !strings.Contains(view, "Error: Passage not found.") {
		t.Errorf("view missing error:\n%s", view)
	}
	if strings.Contains(view, "John 3:16") {
		t.Error("failed view should not show a record")
	}
}

func TestFailureThenSuccessClearsError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	m, h := newScreen(t, src)
	m.input.SetValue("john 3:16")

	updated, cmd := m.Update(enter())
	m = settle(t, updated.(Model), h, cmd)
	if !strings.Contains(m.View(), "Error: boom") {
		t.Fatalf("expected error view:\n%s", m.View())
	}

	src.mu.Lock()
	src.err, src.rec = nil, john316()
	src.mu.Unlock()

	updated, cmd = m.Update(enter())
	m = settle(t, updated.(Model), h, cmd)
	view := m.View()
	if strings.Contains(view, "Error:") {
		t.Errorf("stale error still shown:\n%s", view)
	}
	if !strings.Contains(view, "John 3:16") {
		t.Errorf("record not shown:\n%s", view)
	}
}

func TestClosedSubscriptionStopsWaiting(t *testing.T) {
	m, _ := newScreen(t, &fakeSource{})
	_, cmd := m.Update(stateMsg{ok: false})
	if cmd != nil {
		t.Error("expected no further commands once the holder is closed")
	}
}

func TestWaitForStateReadsChannel(t *testing.T) {
	ch := make(chan viewstate.State, 1)
	ch <- viewstate.State{Phase: viewstate.PhaseFailed, Message: "x"}
	msg := waitForState(ch)().(stateMsg)
	if !msg.ok || msg.state.Message != "x" {
		t.Errorf("unexpected msg %+v", msg)
	}
	close(ch)
	if msg := waitForState(ch)().(stateMsg); msg.ok {
		t.Error("expected ok=false on closed channel")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newScreen(t, &fakeSource{})
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestTabTogglesFocus(t *testing.T) {
	m, _ := newScreen(t, &fakeSource{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.focus != focusResults || m.input.Focused() {
		t.Fatal("expected results focus")
	}

	// q quits only while the results have focus
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.focus != focusInput || !m.input.Focused() {
		t.Error("expected input focus")
	}
}

func TestRenderRecord(t *testing.T) {
	rec := &model.VerseRecord{
		Reference: "Genesis 1:1-2",
		Verses: []model.VerseLine{
			{BookName: "Genesis", Chapter: 1, Verse: 1, Text: "In the beginning\n"},
			{BookName: "Genesis", Chapter: 1, Verse: 2, Text: "The earth was formless\n"},
		},
	}
	out := renderRecord(rec, 60)

	i1 := strings.Index(out, "Genesis 1:1")
	i2 := strings.Index(out, "Genesis 1:2")
	if i1 < 0 || i2 < 0 || i1 > i2 {
		t.Errorf("verse headings missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "In the beginning") || !strings.Contains(out, "The earth was formless") {
		t.Errorf("verse text missing:\n%s", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("trailing newlines should be trimmed")
	}
}

func TestViewEmptyBeforeSize(t *testing.T) {
	h := viewstate.New(context.Background(), &fakeSource{})
	defer h.Close()
	if got := New(h).View(); got != "" {
		t.Errorf("View() before WindowSizeMsg = %q, want empty", got)
	}
}
