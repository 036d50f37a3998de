package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Author is the commit identity. Empty fields fall back to defaults.
type Author struct {
	Name  string
	Email string
}

func (a Author) withDefaults() Author {
	if a.Name == "" {
		a.Name = "assembly"
	}
	if a.Email == "" {
		a.Email = "assembly@localhost"
	}
	return a
}

// GoGit publishes in process with go-git.
type GoGit struct {
	Dir    string
	Branch string
	Author Author
	Token  string
	Now    func() time.Time

	repo *git.Repository
}

func (g *GoGit) Init(ctx context.Context) error {
	branch := g.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	repo, err := git.PlainInitWithOptions(g.Dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(g.Dir)
	}
	if err != nil {
		return err
	}
	g.repo = repo
	return nil
}

func (g *GoGit) open() (*git.Repository, error) {
	if g.repo != nil {
		return g.repo, nil
	}
	repo, err := git.PlainOpen(g.Dir)
	if err != nil {
		return nil, err
	}
	g.repo = repo
	return repo, nil
}

func (g *GoGit) StageAll(ctx context.Context) error {
	repo, err := g.open()
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.AddWithOptions(&git.AddOptions{All: true})
}

func (g *GoGit) SetRemote(ctx context.Context, name, url string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}
	remote, err := repo.Remote(name)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) > 0 && urls[0] == url {
			return nil
		}
		return fmt.Errorf("%s: %w", name, ErrRemoteMismatch)
	case !errors.Is(err, git.ErrRemoteNotFound):
		return err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	return err
}

func (g *GoGit) Commit(ctx context.Context, msg string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	a := g.Author.withDefaults()
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: a.Name, Email: a.Email, When: now()},
	})
	return err
}

func (g *GoGit) Push(ctx context.Context, remote string) error {
	repo, err := g.open()
	if err != nil {
		return err
	}
	head, err := repo.Head()
	if err != nil {
		return err
	}
	spec := config.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       g.auth(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func (g *GoGit) auth() transport.AuthMethod {
	if g.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "assembly", Password: g.Token}
}
