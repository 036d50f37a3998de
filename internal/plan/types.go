package plan

import (
	"fmt"

	"github.com/unkn0wn-root/assembly/internal/flagset"
)

type Kind string

const (
	KindMkdir  Kind = "mkdir"
	KindCopy   Kind = "copy"
	KindRender Kind = "render"
)

// Operation is one step of a File Plan. Source is a template store path and
// is empty for mkdir. Dest is slash separated and relative to the target
// directory.
type Operation struct {
	Kind   Kind
	Source string
	Dest   string
}

func Mkdir(dest string) Operation { return Operation{Kind: KindMkdir, Dest: dest} }

func Copy(src, dest string) Operation { return Operation{Kind: KindCopy, Source: src, Dest: dest} }

func Render(src, dest string) Operation { return Operation{Kind: KindRender, Source: src, Dest: dest} }

func (o Operation) IsDir() bool { return o.Kind == KindMkdir }

func (o Operation) String() string {
	if o.Kind == KindMkdir {
		return fmt.Sprintf("%s %s", o.Kind, o.Dest)
	}
	return fmt.Sprintf("%s %s <- %s", o.Kind, o.Dest, o.Source)
}

type Tier int

const (
	TierAlways Tier = iota
	TierExclusive
	TierOptional
)

func (t Tier) String() string {
	switch t {
	case TierExclusive:
		return "exclusive"
	case TierOptional:
		return "optional"
	default:
		return "always"
	}
}

// Rule appends Ops when its gate holds. Always rules have no Flag. Exclusive
// rules sharing a Group must match exactly one at a time. Optional rules
// depend on Flag alone.
type Rule struct {
	Name  string
	Tier  Tier
	Group string
	Flag  string
	Ops   []Operation
}

// Applies reports whether the rule contributes to a plan for flags.
func (r Rule) Applies(flags flagset.Set) bool {
	if r.Flag == "" {
		return true
	}
	return flags.Has(r.Flag)
}

// Gate describes the predicate for listings.
func (r Rule) Gate() string {
	switch r.Tier {
	case TierExclusive:
		return r.Group + "=" + r.Flag
	case TierOptional:
		return r.Flag
	default:
		return "always"
	}
}

func (r Rule) clone() Rule {
	ops := make([]Operation, len(r.Ops))
	copy(ops, r.Ops)
	r.Ops = ops
	return r
}
