// Package publish turns a generated directory into a repository and pushes
// it to the selected hosting provider.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

const (
	RemoteName    = "origin"
	CommitMessage = "Initial commit"
	DefaultBranch = "main"
)

type Step string

const (
	StepInit   Step = "init"
	StepStage  Step = "stage"
	StepRemote Step = "remote"
	StepCommit Step = "commit"
	StepPush   Step = "push"
)

// Steps lists the publish sequence in execution order.
func Steps() []Step {
	return []Step{StepInit, StepStage, StepRemote, StepCommit, StepPush}
}

// ErrRemoteMismatch is returned when the remote already exists with a
// different URL.
var ErrRemoteMismatch = errors.New("remote exists with a different url")

// VCS performs the individual publish steps inside one working directory.
type VCS interface {
	Init(ctx context.Context) error
	StageAll(ctx context.Context) error
	SetRemote(ctx context.Context, name, url string) error
	Commit(ctx context.Context, msg string) error
	Push(ctx context.Context, remote string) error
}

type Policy int

const (
	BestEffort Policy = iota
	FailFast
)

func (p Policy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "best-effort"
}

type Options struct {
	Policy     Policy
	CopyRemote bool
	Log        *slog.Logger
}

type StepResult struct {
	Step Step
	Err  error
}

// Report lists every attempted step. Under FailFast it stops at the first
// failure.
type Report struct {
	Target Target
	URL    string
	Steps  []StepResult
}

func (r Report) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

func (r Report) OK() bool { return len(r.Failed()) == 0 }

// Err joins all step failures, or nil.
func (r Report) Err() error {
	var errs []error
	for _, s := range r.Failed() {
		errs = append(errs, errdef.Wrap(errdef.CodePublish, s.Err, "%s", s.Step))
	}
	return errors.Join(errs...)
}

func (r Report) String() string {
	parts := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		state := "ok"
		if s.Err != nil {
			state = "failed"
		}
		parts = append(parts, string(s.Step)+"="+state)
	}
	return strings.Join(parts, " ")
}

// Publish runs init, stage, remote, commit and push in order. Under
// BestEffort each step failure is logged and the next step still runs, so
// the only error returned is a cancelled ctx. Under FailFast the first
// failure is returned.
func Publish(ctx context.Context, vcs VCS, t Target, o Options) (Report, error) {
	log := o.Log
	if log == nil {
		log = slog.Default()
	}
	url := t.RemoteURL()
	rep := Report{Target: t, URL: url}
	log = log.With("provider", t.Provider.String(), "remote", url)

	if o.CopyRemote {
		if err := clipboard.WriteAll(url); err != nil {
			log.Warn("copy remote url to clipboard", "err", err)
		}
	}

	for _, step := range Steps() {
		if err := ctx.Err(); err != nil {
			rep.Steps = append(rep.Steps, StepResult{Step: step, Err: err})
			return rep, errdef.Wrap(errdef.CodePublish, err, "%s", step)
		}
		err := runStep(ctx, vcs, step, url)
		rep.Steps = append(rep.Steps, StepResult{Step: step, Err: err})
		if err == nil {
			log.Debug("publish step done", "step", step)
			continue
		}
		if o.Policy == FailFast {
			return rep, errdef.Wrap(errdef.CodePublish, err, "%s", step)
		}
		log.Warn("publish step failed", "step", step, "err", err)
	}
	return rep, nil
}

func runStep(ctx context.Context, vcs VCS, step Step, url string) error {
	switch step {
	case StepInit:
		return vcs.Init(ctx)
	case StepStage:
		return vcs.StageAll(ctx)
	case StepRemote:
		return vcs.SetRemote(ctx, RemoteName, url)
	case StepCommit:
		return vcs.Commit(ctx, CommitMessage)
	case StepPush:
		return vcs.Push(ctx, RemoteName)
	}
	return errors.New("unknown step " + string(step))
}
