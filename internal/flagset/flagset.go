// Package flagset derives the boolean feature flags that drive plan
// resolution and template rendering from an answer set.
package flagset

import (
	"sort"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// Set is an immutable mapping from flag name to value. Every option token of
// every choice question has an entry.
type Set struct {
	flags map[string]bool
}

// Derive maps answers onto flags. Single-choice questions yield exactly one
// true flag; multi-choice questions yield one flag per option. Unknown tokens
// are rejected rather than silently defaulted.
func Derive(catalog []answers.Question, a answers.Set) (Set, error) {
	out := make(map[string]bool)
	for _, q := range catalog {
		switch q.Kind {
		case answers.KindSingle:
			if err := deriveSingle(q, a, out); err != nil {
				return Set{}, err
			}
		case answers.KindMulti:
			if err := deriveMulti(q, a, out); err != nil {
				return Set{}, err
			}
		}
	}
	return Set{flags: out}, nil
}

func deriveSingle(q answers.Question, a answers.Set, out map[string]bool) error {
	for _, tok := range q.Tokens() {
		out[tok] = false
	}
	v, ok := a.Get(q.Key)
	if !ok || v.String() == "" {
		return errdef.New(errdef.CodeAnswers, "%s: no selection (available: %s)", q.Key, strings.Join(q.Tokens(), ", "))
	}
	if v.IsList() {
		return errdef.New(errdef.CodeAnswers, "%s: expected one selection, got %q", q.Key, v.String())
	}
	tok := strings.TrimSpace(v.String())
	if !q.HasToken(tok) {
		return unknownTokenErr(q, tok)
	}
	out[tok] = true
	return nil
}

func deriveMulti(q answers.Question, a answers.Set, out map[string]bool) error {
	for _, tok := range q.Tokens() {
		out[tok] = false
	}
	for _, tok := range a.Items(q.Key) {
		tok = strings.TrimSpace(tok)
		if !q.HasToken(tok) {
			return unknownTokenErr(q, tok)
		}
		out[tok] = true
	}
	return nil
}

func unknownTokenErr(q answers.Question, tok string) error {
	if tok == "" {
		tok = "(empty)"
	}
	return errdef.New(
		errdef.CodeAnswers,
		"%s: unknown option %q (available: %s)",
		q.Key,
		tok,
		strings.Join(q.Tokens(), ", "),
	)
}

// FromMap builds a set directly. Intended for tests and previews.
func FromMap(m map[string]bool) Set {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return Set{flags: out}
}

func (s Set) Has(name string) bool { return s.flags[name] }

func (s Set) Names() []string {
	names := make([]string, 0, len(s.flags))
	for k := range s.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Enabled returns the sorted names of all true flags.
func (s Set) Enabled() []string {
	var names []string
	for _, k := range s.Names() {
		if s.flags[k] {
			names = append(names, k)
		}
	}
	return names
}

func (s Set) Map() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

// With returns a copy with name set to value.
func (s Set) With(name string, value bool) Set {
	m := s.Map()
	m[name] = value
	return Set{flags: m}
}

// String renders name=value pairs in sorted order.
func (s Set) String() string {
	var b strings.Builder
	for i, k := range s.Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		if s.flags[k] {
			b.WriteString("=true")
		} else {
			b.WriteString("=false")
		}
	}
	return b.String()
}

// ExclusiveViolations returns the keys of single-choice groups whose flags
// are not exactly one true.
func (s Set) ExclusiveViolations(catalog []answers.Question) []string {
	var bad []string
	for _, q := range catalog {
		if q.Kind != answers.KindSingle {
			continue
		}
		n := 0
		for _, tok := range q.Tokens() {
			if s.flags[tok] {
				n++
			}
		}
		if n != 1 {
			bad = append(bad, q.Key)
		}
	}
	return bad
}
