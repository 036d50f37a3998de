// Package plan turns a flag set into an ordered list of file operations by
// evaluating a fixed rule table.
package plan

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/flagset"
	"github.com/unkn0wn-root/assembly/internal/templates"
)

// Plan is built once and consumed once by the executor. Context is shared by
// every render operation.
type Plan struct {
	Operations []Operation
	Context    templates.Context
}

// Resolve evaluates the built-in rule table.
func Resolve(flags flagset.Set, a answers.Set) (Plan, error) {
	return ResolveRules(table, flags, a)
}

// ResolveRules concatenates the operations of every applying rule in table
// order and validates the result.
func ResolveRules(rules []Rule, flags flagset.Set, a answers.Set) (Plan, error) {
	if err := checkGroups(rules, flags); err != nil {
		return Plan{}, err
	}
	var ops []Operation
	for _, r := range rules {
		if !r.Applies(flags) {
			continue
		}
		ops = append(ops, r.Ops...)
	}
	p := Plan{Operations: ops, Context: templates.NewContext(flags, a)}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func checkGroups(rules []Rule, flags flagset.Set) error {
	matched := map[string][]string{}
	var groups []string
	for _, r := range rules {
		if r.Tier != TierExclusive {
			continue
		}
		if _, ok := matched[r.Group]; !ok {
			groups = append(groups, r.Group)
			matched[r.Group] = []string{}
		}
		if r.Applies(flags) {
			matched[r.Group] = append(matched[r.Group], r.Name)
		}
	}
	for _, g := range groups {
		if n := len(matched[g]); n != 1 {
			return errdef.New(errdef.CodePlan, "%s: expected exactly one branch, got %d (%s)", g, n, strings.Join(matched[g], ", "))
		}
	}
	return nil
}

// Validate checks that destinations are clean relative paths, unique, and
// that every parent directory is the root or created earlier in the plan.
func (p Plan) Validate() error {
	seen := make(map[string]Kind, len(p.Operations))
	for i, op := range p.Operations {
		if err := checkDest(op.Dest); err != nil {
			return errdef.Wrap(errdef.CodePlan, err, "operation %d", i+1)
		}
		if op.Kind != KindMkdir && op.Source == "" {
			return errdef.New(errdef.CodePlan, "operation %d: %s %s has no source", i+1, op.Kind, op.Dest)
		}
		if _, dup := seen[op.Dest]; dup {
			return errdef.New(errdef.CodePlan, "duplicate destination %s", op.Dest)
		}
		if parent := path.Dir(op.Dest); parent != "." {
			if seen[parent] != KindMkdir {
				return errdef.New(errdef.CodePlan, "%s: parent directory %s is not created before it", op.Dest, parent)
			}
		}
		seen[op.Dest] = op.Kind
	}
	return nil
}

func checkDest(dest string) error {
	switch {
	case dest == "" || dest == ".":
		return fmt.Errorf("empty destination")
	case path.IsAbs(dest) || strings.Contains(dest, `\`):
		return fmt.Errorf("destination %q must be relative and slash separated", dest)
	case path.Clean(dest) != dest:
		return fmt.Errorf("destination %q is not clean", dest)
	case dest == ".." || strings.HasPrefix(dest, "../"):
		return fmt.Errorf("destination %q escapes the target directory", dest)
	}
	return nil
}

// Find returns the operation writing dest.
func (p Plan) Find(dest string) (Operation, bool) {
	for _, op := range p.Operations {
		if op.Dest == dest {
			return op, true
		}
	}
	return Operation{}, false
}

// Files returns the copy and render operations in plan order.
func (p Plan) Files() []Operation {
	var out []Operation
	for _, op := range p.Operations {
		if !op.IsDir() {
			out = append(out, op)
		}
	}
	return out
}

func (p Plan) String() string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(p.Context.String())
	b.WriteByte('\n')
	for _, op := range p.Operations {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Diff returns operations present only in p (added) and only in other
// (removed), each sorted by destination.
func (p Plan) Diff(other Plan) (added, removed []Operation) {
	mine := index(p.Operations)
	theirs := index(other.Operations)
	for op := range mine {
		if !theirs[op] {
			added = append(added, op)
		}
	}
	for op := range theirs {
		if !mine[op] {
			removed = append(removed, op)
		}
	}
	sortOps(added)
	sortOps(removed)
	return added, removed
}

func index(ops []Operation) map[Operation]bool {
	out := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		out[op] = true
	}
	return out
}

func sortOps(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Dest != ops[j].Dest {
			return ops[i].Dest < ops[j].Dest
		}
		return ops[i].Kind < ops[j].Kind
	})
}
