// Package install runs the package managers a generated project needs.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// Command is one installer invocation.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Default is npm install followed by bower install.
var Default = []Command{
	{Name: "npm", Args: []string{"install"}},
	{Name: "bower", Args: []string{"install"}},
}

// Runner executes a command in dir.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, dir string, c Command) error
}

type Status string

const (
	StatusDone    Status = "done"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

type Outcome struct {
	Command Command
	Status  Status
	Err     error
}

// Install runs cmds in order inside dir. Missing tools are skipped and
// failures are logged; neither stops later commands.
func Install(ctx context.Context, r Runner, dir string, cmds []Command, log *slog.Logger) []Outcome {
	if log == nil {
		log = slog.Default()
	}
	out := make([]Outcome, 0, len(cmds))
	for _, c := range cmds {
		if _, err := r.LookPath(c.Name); err != nil {
			log.Warn("installer not found, skipping", "cmd", c.String())
			out = append(out, Outcome{Command: c, Status: StatusMissing, Err: err})
			continue
		}
		log.Info("installing dependencies", "cmd", c.String(), "dir", dir)
		if err := r.Run(ctx, dir, c); err != nil {
			err = errdef.Wrap(errdef.CodeInstall, err, "%s", c)
			log.Warn("install failed", "cmd", c.String(), "err", err)
			out = append(out, Outcome{Command: c, Status: StatusFailed, Err: err})
			continue
		}
		out = append(out, Outcome{Command: c, Status: StatusDone})
	}
	return out
}

// Exec runs real processes. Output is captured unless Out is set.
type Exec struct {
	Out io.Writer
}

func (Exec) LookPath(name string) (string, error) { return exec.LookPath(name) }

func (e Exec) Run(ctx context.Context, dir string, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if e.Out != nil {
		cmd.Stdout = e.Out
		cmd.Stderr = e.Out
	}
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && buf.Len() > 0 {
			return fmt.Errorf("%w: %s", err, lastLine(buf.String()))
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
