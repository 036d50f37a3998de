package answers

import (
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	KindText Kind = iota
	KindSingle
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single-choice"
	case KindMulti:
		return "multi-choice"
	default:
		return "free-text"
	}
}

const (
	KeyProjectName  = "projectName"
	KeyPreprocessor = "preprocessor"
	KeyFramework    = "framework"
	KeyFeatures     = "features"
	KeyVCS          = "vcs"
	KeyAccountName  = "accountName"
	KeyRepoName     = "repoName"
)

// Option tokens. They double as Flag Set names and template variables.
const (
	IncludeLESS = "includeLESS"
	IncludeSASS = "includeSASS"

	IncludeBootstrap  = "includeBootstrap"
	IncludeFoundation = "includeFoundation"
	IncludeNone       = "includeNone"

	IncludeRequireJS  = "includeRequireJS"
	IncludeModernizr  = "includeModernizr"
	IncludeUnderscore = "includeUnderscore"

	IncludeGitHub    = "includeGitHub"
	IncludeBitBucket = "includeBitBucket"
	IncludeNoVCS     = "includeNoVCS"
)

type Option struct {
	Name    string
	Value   string
	Checked bool
}

// Question describes one prompt. Default is used for text and single-choice
// questions; multi-choice questions default to their checked options.
// DefaultFunc, when set, derives the default from earlier answers.
// When, when set, decides whether the question is asked at all.
type Question struct {
	Key         string
	Kind        Kind
	Message     string
	Options     []Option
	Default     string
	DefaultFunc func(Set) string
	Validate    func(string) error
	When        func(Set) bool
}

// Tokens lists the option values in declaration order.
func (q Question) Tokens() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		out = append(out, o.Value)
	}
	return out
}

func (q Question) HasToken(token string) bool {
	for _, o := range q.Options {
		if o.Value == token {
			return true
		}
	}
	return false
}

func (q Question) Asked(prev Set) bool {
	return q.When == nil || q.When(prev)
}

// DefaultFor returns the default answer given the answers collected so far.
func (q Question) DefaultFor(prev Set) Value {
	if q.Kind == KindMulti {
		var checked []string
		for _, o := range q.Options {
			if o.Checked {
				checked = append(checked, o.Value)
			}
		}
		return List(checked...)
	}
	if q.DefaultFunc != nil {
		if d := q.DefaultFunc(prev); d != "" {
			return Scalar(d)
		}
	}
	return Scalar(q.Default)
}

// Defaults seeds the catalog. Nil Features keeps every feature checked.
type Defaults struct {
	ProjectName  string
	Preprocessor string
	Framework    string
	Features     []string
	VCS          string
	Account      string
}

// Catalog returns the fixed question sequence.
func Catalog(d Defaults) []Question {
	features := []Option{
		{Name: "RequireJS", Value: IncludeRequireJS, Checked: true},
		{Name: "Modernizr", Value: IncludeModernizr, Checked: true},
		{Name: "Underscore", Value: IncludeUnderscore, Checked: true},
	}
	if d.Features != nil {
		for i := range features {
			features[i].Checked = containsToken(d.Features, features[i].Value)
		}
	}

	return []Question{
		{
			Key:      KeyProjectName,
			Kind:     KindText,
			Message:  "What is the name of this project?",
			Default:  strings.TrimSpace(d.ProjectName),
			Validate: ValidateProjectName,
		},
		{
			Key:     KeyPreprocessor,
			Kind:    KindSingle,
			Message: "Which CSS preprocessor would you like?",
			Options: []Option{
				{Name: "LESS", Value: IncludeLESS},
				{Name: "SASS", Value: IncludeSASS},
			},
			Default: orDefault(d.Preprocessor, IncludeLESS),
		},
		{
			Key:     KeyFramework,
			Kind:    KindSingle,
			Message: "Which front-end framework would you like?",
			Options: []Option{
				{Name: "Bootstrap", Value: IncludeBootstrap},
				{Name: "Foundation", Value: IncludeFoundation},
				{Name: "None", Value: IncludeNone},
			},
			Default: orDefault(d.Framework, IncludeNone),
		},
		{
			Key:     KeyFeatures,
			Kind:    KindMulti,
			Message: "What more would you like?",
			Options: features,
		},
		{
			Key:     KeyVCS,
			Kind:    KindSingle,
			Message: "Where should the repository be published?",
			Options: []Option{
				{Name: "GitHub", Value: IncludeGitHub},
				{Name: "BitBucket", Value: IncludeBitBucket},
				{Name: "None", Value: IncludeNoVCS},
			},
			Default: orDefault(d.VCS, IncludeNoVCS),
		},
		{
			Key:      KeyAccountName,
			Kind:     KindText,
			Message:  "Which account owns the repository?",
			Default:  strings.TrimSpace(d.Account),
			Validate: ValidateAccount,
			When:     wantsVCS,
		},
		{
			Key:     KeyRepoName,
			Kind:    KindText,
			Message: "What is the repository called?",
			DefaultFunc: func(prev Set) string {
				return Slug(prev.String(KeyProjectName))
			},
			Validate: ValidateRepo,
			When:     wantsVCS,
		},
	}
}

// Find returns the question with the given key.
func Find(catalog []Question, key string) (Question, bool) {
	for _, q := range catalog {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

func wantsVCS(prev Set) bool {
	v := prev.String(KeyVCS)
	return v != "" && v != IncludeNoVCS
}

var (
	accountPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	repoPattern    = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	slugStrip      = regexp.MustCompile(`[^a-z0-9]+`)
)

func ValidateProjectName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("project name is required")
	}
	return nil
}

func ValidateAccount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("account name is required")
	}
	if !accountPattern.MatchString(s) {
		return fmt.Errorf("account name %q may only contain letters, digits, '.', '_' and '-'", s)
	}
	return nil
}

func ValidateRepo(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("repository name is required")
	}
	if s == "." || s == ".." || !repoPattern.MatchString(s) {
		return fmt.Errorf("repository name %q may only contain letters, digits, '.', '_' and '-'", s)
	}
	return nil
}

// Slug lowercases name and collapses every non alphanumeric run into '-'.
func Slug(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func containsToken(list []string, token string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == token {
			return true
		}
	}
	return false
}
