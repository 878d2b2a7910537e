package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"versefinder/internal/model"
	"versefinder/internal/viewstate"
)

// — focus ———————————————————————————————————————————————————————————————————

type focus int

const (
	focusInput focus = iota
	focusResults
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	referenceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle   = lipgloss.NewStyle().Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	bodyStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

const (
	headerLines = 6 // title, blank, label, input, hint, blank
	footerLines = 2 // separator, help
)

// — messages ————————————————————————————————————————————————————————————————

// stateMsg carries a new snapshot from the holder. ok is false once the
// holder has closed the subscription.
type stateMsg struct {
	state viewstate.State
	ok    bool
}

// — holder ——————————————————————————————————————————————————————————————————

// Holder is the view state the screen renders. *viewstate.Holder satisfies it.
type Holder interface {
	FetchVerse(passage string)
	State() viewstate.State
	Subscribe() (<-chan viewstate.State, func())
}

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	holder  Holder
	updates <-chan viewstate.State
	state   viewstate.State

	input    textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	focus    focus
	inputErr string

	width  int
	height int
}

// New returns a screen bound to h. The subscription it opens ends when h
// is closed.
func New(h Holder) Model {
	updates, _ := h.Subscribe()

	ti := textinput.New()
	ti.Placeholder = "e.g. john 3:16"
	ti.CharLimit = 100
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Line), spinner.WithStyle(spinnerStyle))

	return Model{
		holder:  h,
		updates: updates,
		state:   h.State(),
		input:   ti,
		spinner: sp,
		results: viewport.New(0, 0),
		focus:   focusInput,
	}
}

// — commands ————————————————————————————————————————————————————————————————

func waitForState(ch <-chan viewstate.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		return stateMsg{state: s, ok: ok}
	}
}

func fetchCmd(h Holder, passage string) tea.Cmd {
	return func() tea.Msg {
		h.FetchVerse(passage)
		return nil
	}
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.results.Width = max(msg.Width-2, 0)
		m.results.Height = max(msg.Height-headerLines-footerLines, 1)
		m.results.SetContent(m.renderResults())
		return m, nil

	case stateMsg:
		if !msg.ok {
			return m, nil
		}
		m.state = msg.state
		m.results.SetContent(m.renderResults())
		m.results.GotoTop()
		cmds := []tea.Cmd{waitForState(m.updates)}
		if m.state.Loading() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m.toggleFocus()
		}
	}

	if m.focus == focusResults {
		return m.updateResults(msg)
	}
	return m.updateInput(msg)
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusResults
		m.input.Blur()
		return m, nil
	}
	m.focus = focusInput
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		passage := strings.TrimSpace(m.input.Value())
		if passage == "" {
			m.inputErr = "enter a passage first, e.g. john 3:16"
			return m, nil
		}
		m.inputErr = ""
		return m, fetchCmd(m.holder, passage)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			return m, tea.Quit
		case "/", "i":
			m.focus = focusInput
			return m, m.input.Focus()
		}
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Bible Verses") + "\n\n")
	b.WriteString(bodyStyle.Render(labelStyle.Render("Passage")) + "\n")
	b.WriteString(bodyStyle.Render(m.input.View()) + "\n")
	if m.inputErr != "" {
		b.WriteString(bodyStyle.Render(errStyle.Render(m.inputErr)) + "\n\n")
	} else {
		b.WriteString("\n\n")
	}

	switch m.state.Phase {
	case viewstate.PhaseLoading:
		b.WriteString(bodyStyle.Render(m.spinner.View()+" Fetching "+m.state.Passage+"…") + "\n")
	case viewstate.PhaseFailed:
		b.WriteString(bodyStyle.Render(errStyle.Render("Error: "+m.state.Message)) + "\n")
	case viewstate.PhaseSuccess:
		b.WriteString(m.results.View() + "\n")
	default:
		b.WriteString(bodyStyle.Render(dimStyle.Render("Type a passage and press Enter.")) + "\n")
	}

	body := lipgloss.NewStyle().Height(m.height - footerLines).MaxHeight(m.height - footerLines).Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderHelp())
}

// — layout helpers ——————————————————————————————————————————————————————————

func (m Model) renderResults() string {
	if m.state.Phase != viewstate.PhaseSuccess || m.state.Record == nil {
		return ""
	}
	return bodyStyle.Render(renderRecord(m.state.Record, max(m.results.Width-4, 20)))
}

// renderRecord lays out a passage: reference heading, then a "Book C:V"
// heading and wrapped text for each verse.
func renderRecord(rec *model.VerseRecord, width int) string {
	var b strings.Builder

	b.WriteString(referenceStyle.Render(rec.Reference))
	if rec.TranslationName != "" {
		b.WriteString(dimStyle.Render("  " + rec.TranslationName))
	}
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(width)
	for _, v := range rec.Verses {
		b.WriteString(boldStyle.Render(v.Heading()) + "\n")
		b.WriteString(wrap.Render(strings.TrimSpace(v.Text)) + "\n\n")
	}
	if len(rec.Verses) == 0 && rec.Text != "" {
		b.WriteString(wrap.Render(strings.TrimSpace(rec.Text)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHelp() string {
	var text string
	switch {
	case m.focus == focusResults:
		text = "↑/↓ scroll   / edit passage   Tab focus input   q quit"
	case m.state.Phase == viewstate.PhaseSuccess:
		text = "Enter search   Tab scroll results   Esc quit"
	default:
		text = "Enter search   Esc quit"
	}
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	return sep + "\n" + helpStyle.Render(text)
}
