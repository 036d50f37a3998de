// Package scaffold executes a file plan against a target directory.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/plan"
	"github.com/unkn0wn-root/assembly/internal/preview"
	"github.com/unkn0wn-root/assembly/internal/templates"
)

// Opt describes how a plan is applied.
// Fields are plain values so callers can map flags directly.
type Opt struct {
	Dir    string
	Force  bool
	DryRun bool
	Diff   bool
	Out    io.Writer
}

type Action string

const (
	ActionMkdir     Action = "mkdir"
	ActionCreate    Action = "create"
	ActionOverwrite Action = "overwrite"
	ActionAppend    Action = "append"
	ActionSkip      Action = "skip"
)

// Applied records what happened to one destination.
type Applied struct {
	Action Action
	Path   string
}

type Result struct {
	Applied []Applied
}

// Count returns how many destinations received action a.
func (r Result) Count(a Action) int {
	n := 0
	for _, x := range r.Applied {
		if x.Action == a {
			n++
		}
	}
	return n
}

// Command applies plans to one filesystem using one template store.
type Command struct {
	fs    billy.Filesystem
	store fs.FS
	o     Opt
}

func New(fsys billy.Filesystem, store fs.FS, o Opt) *Command {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return &Command{fs: fsys, store: store, o: o}
}

// Run opens o.Dir on disk and applies p with templates from store, or the
// built-in templates when store is nil.
func Run(ctx context.Context, store fs.FS, o Opt, p plan.Plan) (Result, error) {
	o.Dir = strings.TrimSpace(o.Dir)
	if o.Dir == "" {
		o.Dir = "."
	}
	fsys, err := OpenDir(o.Dir, o.DryRun)
	if err != nil {
		return Result{}, errdef.Wrap(errdef.CodeFilesystem, err, "")
	}
	if store == nil {
		store = templates.Builtin()
	}
	return New(fsys, store, o).Run(ctx, p)
}

// Run prepares every operation, fails on conflicts before touching the
// filesystem, then applies operations in plan order. The first failure
// aborts; nothing is rolled back.
func (c *Command) Run(ctx context.Context, p plan.Plan) (Result, error) {
	steps, err := c.prepare(p)
	if err != nil {
		return Result{}, err
	}
	var res Result
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return res, errdef.Wrap(errdef.CodeFilesystem, err, "apply %s", s.op.Dest)
		}
		if err := c.apply(s); err != nil {
			return res, errdef.Wrap(errdef.CodeFilesystem, err, "%s %s", s.action, s.op.Dest)
		}
		res.Applied = append(res.Applied, Applied{Action: s.action, Path: s.op.Dest})
	}
	return res, nil
}

type step struct {
	op     plan.Operation
	action Action
	data   []byte
	old    []byte
}

func (c *Command) prepare(p plan.Plan) ([]step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	steps := make([]step, 0, len(p.Operations))
	var conflicts []string

	for _, op := range p.Operations {
		info, err := c.fs.Stat(op.Dest)
		exists := err == nil
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "stat %s", op.Dest)
		}

		if op.IsDir() {
			switch {
			case exists && !info.IsDir():
				conflicts = append(conflicts, op.Dest+" (file)")
			case exists:
				steps = append(steps, step{op: op, action: ActionSkip})
			default:
				steps = append(steps, step{op: op, action: ActionMkdir})
			}
			continue
		}

		if exists && info.IsDir() {
			conflicts = append(conflicts, op.Dest+" (dir)")
			continue
		}
		data, err := c.content(op, p.Context)
		if err != nil {
			return nil, err
		}
		s := step{op: op, action: ActionCreate, data: data}
		if exists {
			old, err := readFile(c.fs, op.Dest)
			if err != nil {
				return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read %s", op.Dest)
			}
			s.old = old
			switch {
			case op.Dest == plan.GitignoreDest:
				s.data = mergeGitignore(old, data)
				s.action = ActionAppend
				if string(s.data) == string(old) {
					s.action = ActionSkip
				}
			case !c.o.Force:
				conflicts = append(conflicts, op.Dest)
				continue
			default:
				s.action = ActionOverwrite
			}
		}
		steps = append(steps, s)
	}

	if len(conflicts) > 0 {
		return nil, errdef.New(
			errdef.CodeFilesystem,
			"files already exist: %s (use --force to overwrite)",
			strings.Join(conflicts, ", "),
		)
	}
	return steps, nil
}

func (c *Command) content(op plan.Operation, ctx templates.Context) ([]byte, error) {
	if op.Kind == plan.KindCopy {
		return templates.Read(c.store, op.Source)
	}
	data, err := templates.Render(c.store, op.Source, ctx)
	if err != nil {
		return nil, err
	}
	if err := templates.Lint(op.Dest, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Command) apply(s step) error {
	if !c.o.DryRun {
		switch s.action {
		case ActionMkdir:
			if err := c.fs.MkdirAll(s.op.Dest, dirPerm); err != nil {
				return err
			}
		case ActionCreate, ActionOverwrite, ActionAppend:
			if err := writeAtomic(c.fs, s.op.Dest, filePerm, s.data, s.action != ActionCreate); err != nil {
				return err
			}
		}
	}
	if err := c.report(s.action, s.op.Dest); err != nil {
		return err
	}
	if c.o.Diff && (s.action == ActionOverwrite || s.action == ActionAppend) {
		return c.diff(s)
	}
	return nil
}

func (c *Command) diff(s step) error {
	if preview.Binary(s.old) || preview.Binary(s.data) {
		_, err := fmt.Fprintf(c.o.Out, "binary file %s differs\n", s.op.Dest)
		return err
	}
	d := preview.Diff(s.op.Dest, s.old, s.data)
	if d == "" {
		return nil
	}
	_, err := io.WriteString(c.o.Out, d)
	return err
}

func (c *Command) report(act Action, path string) error {
	prefix := ""
	if c.o.DryRun {
		prefix = "dry-run: "
	}
	if _, err := fmt.Fprintf(c.o.Out, "%s%s %s\n", prefix, act, path); err != nil {
		return fmt.Errorf("report %s %s: %w", act, path, err)
	}
	return nil
}
