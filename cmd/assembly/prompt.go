package main

import (
	"context"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// noTerminal refuses to prompt when stdin cannot drive the wizard.
type noTerminal struct{}

func (noTerminal) Prompt(context.Context, []answers.Question, answers.Set) (answers.Set, error) {
	return answers.Set{}, errdef.New(errdef.CodePrompt, "stdin is not a terminal; pass --yes or --answers FILE")
}
