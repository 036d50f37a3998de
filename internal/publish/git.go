package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Git publishes by shelling out to the git binary.
type Git struct {
	Dir    string
	Bin    string
	Branch string
	Author Author
}

func (g *Git) bin() string {
	if g.Bin == "" {
		return "git"
	}
	return g.Bin
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.bin(), args...)
	cmd.Dir = g.Dir
	cmd.Env = os.Environ()
	if g.Author.Name != "" {
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_NAME="+g.Author.Name, "GIT_COMMITTER_NAME="+g.Author.Name)
	}
	if g.Author.Email != "" {
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_EMAIL="+g.Author.Email, "GIT_COMMITTER_EMAIL="+g.Author.Email)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return strings.TrimSpace(out.String()), nil
}

func isRepo(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil
}

func (g *Git) Init(ctx context.Context) error {
	if isRepo(g.Dir) {
		return nil
	}
	if _, err := g.run(ctx, "init"); err != nil {
		return err
	}
	branch := g.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	_, err := g.run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+branch)
	return err
}

func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", "-A")
	return err
}

func (g *Git) SetRemote(ctx context.Context, name, url string) error {
	cur, err := g.run(ctx, "remote", "get-url", name)
	if err == nil {
		if cur == url {
			return nil
		}
		return fmt.Errorf("%s: %w", name, ErrRemoteMismatch)
	}
	_, err = g.run(ctx, "remote", "add", name, url)
	return err
}

func (g *Git) Commit(ctx context.Context, msg string) error {
	_, err := g.run(ctx, "commit", "-m", msg)
	return err
}

func (g *Git) Push(ctx context.Context, remote string) error {
	_, err := g.run(ctx, "push", "-u", remote, "HEAD")
	return err
}

// Available reports whether the git binary can be found.
func (g *Git) Available() bool {
	_, err := exec.LookPath(g.bin())
	return err == nil
}

var errUnknownBackend = errors.New("unknown publish backend")

const (
	BackendGoGit = "go-git"
	BackendGit   = "git"
)

// BackendConfig carries what either backend needs.
type BackendConfig struct {
	Backend string
	Dir     string
	Branch  string
	Author  Author
	Token   string
}

// NewVCS returns the backend named by c.Backend; empty selects go-git.
func NewVCS(c BackendConfig) (VCS, error) {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "", BackendGoGit:
		return &GoGit{Dir: c.Dir, Branch: c.Branch, Author: c.Author, Token: c.Token}, nil
	case BackendGit:
		g := &Git{Dir: c.Dir, Branch: c.Branch, Author: c.Author}
		if !g.Available() {
			return nil, fmt.Errorf("git binary not found in PATH")
		}
		return g, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s, %s)", errUnknownBackend, c.Backend, BackendGoGit, BackendGit)
}
