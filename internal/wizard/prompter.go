package wizard

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/theme"
)

// Prompter produces an answer set for catalog. Values in seed are taken
// as given.
type Prompter interface {
	Prompt(ctx context.Context, catalog []answers.Question, seed answers.Set) (answers.Set, error)
}

// Terminal runs the wizard as a bubbletea program.
type Terminal struct {
	In    io.Reader
	Out   io.Writer
	Theme theme.Theme
}

func (t Terminal) Prompt(ctx context.Context, catalog []answers.Question, seed answers.Set) (answers.Set, error) {
	m := NewModel(catalog, seed, t.Theme)
	if m.Done() {
		return m.Answers(), nil
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return answers.Set{}, errdef.Wrap(errdef.CodeUI, err, "run prompt")
	}
	fm, ok := final.(Model)
	if !ok {
		return answers.Set{}, errdef.New(errdef.CodeUI, "unexpected prompt model %T", final)
	}
	if fm.Aborted() || !fm.Done() {
		return answers.Set{}, errdef.New(errdef.CodePrompt, "prompt aborted")
	}
	return fm.Answers(), nil
}

// Defaults answers every question with its default without asking.
type Defaults struct{}

func (Defaults) Prompt(_ context.Context, catalog []answers.Question, seed answers.Set) (answers.Set, error) {
	return answers.Complete(catalog, seed), nil
}
