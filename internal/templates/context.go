package templates

import (
	"strings"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/flagset"
)

const (
	VarProjectName = "projectName"
	VarProjectSlug = "projectSlug"
)

// Context is the value set every rendered template sees. It is shared by all
// render operations of one plan.
type Context struct {
	Flags       flagset.Set
	ProjectName string
	ProjectSlug string
}

// NewContext builds the render context from derived flags and the answers
// they came from.
func NewContext(flags flagset.Set, a answers.Set) Context {
	name := strings.TrimSpace(a.String(answers.KeyProjectName))
	slug := answers.Slug(name)
	if slug == "" {
		slug = "app"
	}
	return Context{Flags: flags, ProjectName: name, ProjectSlug: slug}
}

// Data flattens the context into template variables. Flags are exposed under
// their own names.
func (c Context) Data() map[string]any {
	out := make(map[string]any, len(c.Flags.Names())+2)
	for name, v := range c.Flags.Map() {
		out[name] = v
	}
	out[VarProjectName] = c.ProjectName
	out[VarProjectSlug] = c.ProjectSlug
	return out
}

// String is a stable one-line description used in plan output.
func (c Context) String() string {
	var b strings.Builder
	b.WriteString(VarProjectName + "=")
	b.WriteString(quote(c.ProjectName))
	b.WriteString(" " + VarProjectSlug + "=")
	b.WriteString(c.ProjectSlug)
	if enabled := c.Flags.Enabled(); len(enabled) > 0 {
		b.WriteString(" flags=")
		b.WriteString(strings.Join(enabled, ","))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
