package publish

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/flagset"
)

// Provider is the flag token selecting a hosting service.
type Provider string

const (
	GitHub    Provider = answers.IncludeGitHub
	BitBucket Provider = answers.IncludeBitBucket
)

var hosts = map[Provider]string{
	GitHub:    "github.com",
	BitBucket: "bitbucket.org",
}

// Providers lists the known providers in a stable order.
func Providers() []Provider { return []Provider{GitHub, BitBucket} }

func (p Provider) Host() string { return hosts[p] }

func (p Provider) String() string {
	switch p {
	case GitHub:
		return "GitHub"
	case BitBucket:
		return "BitBucket"
	default:
		return string(p)
	}
}

// Target identifies the remote repository generated files are pushed to.
type Target struct {
	Provider Provider
	Account  string
	Repo     string
}

// RemoteURL returns https://{host}/{account}/{repo}.git.
func (t Target) RemoteURL() string {
	return fmt.Sprintf("https://%s/%s/%s.git", t.Provider.Host(), t.Account, t.Repo)
}

// TargetFrom builds a target when a provider flag is set. It reports false
// when no provider is selected.
func TargetFrom(flags flagset.Set, a answers.Set) (Target, bool, error) {
	var picked []Provider
	for _, p := range Providers() {
		if flags.Has(string(p)) {
			picked = append(picked, p)
		}
	}
	switch len(picked) {
	case 0:
		return Target{}, false, nil
	case 1:
	default:
		return Target{}, false, errdef.New(errdef.CodePublish, "more than one provider selected: %s", joinProviders(picked))
	}

	t := Target{
		Provider: picked[0],
		Account:  strings.TrimSpace(a.String(answers.KeyAccountName)),
		Repo:     strings.TrimSpace(a.String(answers.KeyRepoName)),
	}
	if t.Repo == "" {
		t.Repo = answers.Slug(a.String(answers.KeyProjectName))
	}
	if err := answers.ValidateAccount(t.Account); err != nil {
		return Target{}, false, errdef.Wrap(errdef.CodeAnswers, err, "%s", answers.KeyAccountName)
	}
	if err := answers.ValidateRepo(t.Repo); err != nil {
		return Target{}, false, errdef.Wrap(errdef.CodeAnswers, err, "%s", answers.KeyRepoName)
	}
	return t, true, nil
}

func joinProviders(ps []Provider) string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return strings.Join(out, ", ")
}
