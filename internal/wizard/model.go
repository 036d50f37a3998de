// Package wizard collects answers interactively.
package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/theme"
)

// Model asks every catalog question in order. Questions already answered
// in the seed and questions whose gate is false are skipped.
type Model struct {
	catalog []answers.Question
	seed    answers.Set
	theme   theme.Theme
	keys    keyMap

	idx     int
	answers answers.Set
	input   textinput.Model
	cursor  int
	checked map[string]bool
	errMsg  string
	history []string
	width   int

	done    bool
	aborted bool
}

func NewModel(catalog []answers.Question, seed answers.Set, th theme.Theme) Model {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 0
	m := Model{
		catalog: catalog,
		seed:    seed,
		theme:   th,
		keys:    defaultKeys(),
		idx:     -1,
		answers: answers.New(nil),
		input:   in,
	}
	m.advance()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Done() bool    { return m.done }
func (m Model) Aborted() bool { return m.aborted }

// Answers returns what was collected, including seeded values.
func (m Model) Answers() answers.Set { return m.answers }

func (m Model) current() (answers.Question, bool) {
	if m.idx < 0 || m.idx >= len(m.catalog) {
		return answers.Question{}, false
	}
	return m.catalog[m.idx], true
}

// advance moves to the next question that must be asked, copying seeded
// answers on the way.
func (m *Model) advance() {
	m.errMsg = ""
	for m.idx++; m.idx < len(m.catalog); m.idx++ {
		q := m.catalog[m.idx]
		if !q.Asked(m.answers) {
			continue
		}
		if v, ok := m.seed.Get(q.Key); ok {
			m.answers = m.answers.With(q.Key, v)
			continue
		}
		m.enter(q)
		return
	}
	m.done = true
}

func (m *Model) enter(q answers.Question) {
	def := q.DefaultFor(m.answers)
	m.cursor = 0
	m.checked = nil
	switch q.Kind {
	case answers.KindText:
		m.input.Reset()
		m.input.Placeholder = def.String()
		m.input.Focus()
	case answers.KindSingle:
		m.input.Blur()
		for i, tok := range q.Tokens() {
			if tok == def.String() {
				m.cursor = i
			}
		}
	case answers.KindMulti:
		m.input.Blur()
		m.checked = make(map[string]bool, len(q.Options))
		for _, tok := range def.Items() {
			m.checked[tok] = true
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.aborted = true
			return m, tea.Quit
		}
		q, ok := m.current()
		if !ok {
			return m, tea.Quit
		}
		switch q.Kind {
		case answers.KindText:
			return m.updateText(q, msg)
		default:
			return m.updateChoice(q, msg)
		}
	}
	return m, nil
}

func (m Model) updateText(q answers.Question, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Submit) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		val = q.DefaultFor(m.answers).String()
	}
	if q.Validate != nil {
		if err := q.Validate(val); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}
	return m.record(q, answers.Scalar(val))
}

func (m Model) updateChoice(q answers.Question, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(q.Options)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor - 1 + n) % n
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % n
	case key.Matches(msg, m.keys.Toggle) && q.Kind == answers.KindMulti:
		tok := q.Options[m.cursor].Value
		m.checked[tok] = !m.checked[tok]
	case key.Matches(msg, m.keys.Submit):
		if q.Kind == answers.KindSingle {
			return m.record(q, answers.Scalar(q.Options[m.cursor].Value))
		}
		var picked []string
		for _, tok := range q.Tokens() {
			if m.checked[tok] {
				picked = append(picked, tok)
			}
		}
		return m.record(q, answers.List(picked...))
	}
	return m, nil
}

func (m Model) record(q answers.Question, v answers.Value) (tea.Model, tea.Cmd) {
	m.answers = m.answers.With(q.Key, v)
	m.history = append(m.history, m.summary(q, v))
	m.advance()
	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) summary(q answers.Question, v answers.Value) string {
	shown := v.String()
	if q.Kind != answers.KindText {
		shown = optionNames(q, v.Items())
	}
	if shown == "" {
		shown = "(none)"
	}
	return m.theme.Success.Render("✔") + " " + m.theme.Question.Render(q.Message) + " " + m.theme.Answer.Render(shown)
}

func optionNames(q answers.Question, tokens []string) string {
	names := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		for _, o := range q.Options {
			if o.Value == tok {
				names = append(names, o.Name)
			}
		}
	}
	return strings.Join(names, ", ")
}

func (m Model) View() string {
	lines := []string{m.theme.Brand.Render("assembly") + " " + m.theme.Muted.Render("new project"), ""}
	lines = append(lines, m.history...)
	if q, ok := m.current(); ok && !m.done && !m.aborted {
		lines = append(lines, m.theme.Cursor.Render("?")+" "+m.theme.Question.Render(q.Message))
		lines = append(lines, m.body(q)...)
		if m.errMsg != "" {
			lines = append(lines, m.theme.Error.Render("✘ "+m.errMsg))
		}
		lines = append(lines, m.theme.Hint.Render(m.help(q)))
	}
	if m.width > 0 {
		for i, l := range lines {
			lines[i] = ansi.Truncate(l, m.width, "…")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) body(q answers.Question) []string {
	if q.Kind == answers.KindText {
		return []string{m.input.View()}
	}
	out := make([]string, 0, len(q.Options))
	for i, o := range q.Options {
		pointer := "  "
		style := m.theme.Option
		if i == m.cursor {
			pointer = m.theme.Cursor.Render("❯ ")
			style = m.theme.OptionFocus
		}
		mark := ""
		if q.Kind == answers.KindMulti {
			if m.checked[o.Value] {
				mark = m.theme.Checked.Render("◉ ")
			} else {
				mark = m.theme.Unchecked.Render("◯ ")
			}
		}
		out = append(out, pointer+mark+style.Render(o.Name))
	}
	return out
}

func (m Model) help(q answers.Question) string {
	switch q.Kind {
	case answers.KindSingle:
		return helpLine(m.keys.Up, m.keys.Down, m.keys.Submit, m.keys.Quit)
	case answers.KindMulti:
		return helpLine(m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Submit, m.keys.Quit)
	default:
		return helpLine(m.keys.Submit, m.keys.Quit)
	}
}
