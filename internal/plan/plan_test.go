package plan

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/flagset"
	"github.com/unkn0wn-root/assembly/internal/templates"
)

func demoAnswers(pre string, features ...string) answers.Set {
	return answers.New(map[string]answers.Value{
		answers.KeyProjectName:  answers.Scalar("demo"),
		answers.KeyPreprocessor: answers.Scalar(pre),
		answers.KeyFramework:    answers.Scalar(answers.IncludeNone),
		answers.KeyFeatures:     answers.List(features...),
		answers.KeyVCS:          answers.Scalar(answers.IncludeNoVCS),
	})
}

func resolve(t *testing.T, a answers.Set) Plan {
	t.Helper()
	flags, err := flagset.Derive(answers.Catalog(answers.Defaults{}), a)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	p, err := Resolve(flags, a)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return p
}

func TestResolveSassRequireJSScenario(t *testing.T) {
	p := resolve(t, demoAnswers(answers.IncludeSASS, answers.IncludeRequireJS))

	want := []Operation{
		Mkdir("app/assets/sass"),
		Mkdir("app/assets/sass/site"),
		Copy("starter-sass/styles.scss", "app/assets/sass/styles.scss"),
		Copy("starter-sass/site/variables.scss", "app/assets/sass/site/variables.scss"),
		Copy("starter-sass/site/mixins.scss", "app/assets/sass/site/mixins.scss"),
		Copy("starter-sass/site/global.scss", "app/assets/sass/site/global.scss"),
		Render("requirejs/main.js.tmpl", "app/assets/js/main.js"),
		Copy("global/app.js", "app/assets/js/app.js"),
	}
	for _, op := range want {
		got, ok := p.Find(op.Dest)
		if !ok || got != op {
			t.Fatalf("plan missing %s:\n%s", op, p)
		}
	}
	for _, op := range p.Operations {
		if strings.Contains(op.Dest, "less") || strings.Contains(op.Source, "less") {
			t.Fatalf("sass plan contains less operation %s", op)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	a := demoAnswers(answers.IncludeLESS, answers.IncludeRequireJS, answers.IncludeUnderscore)
	first := resolve(t, a).String()
	for i := 0; i < 20; i++ {
		if got := resolve(t, a).String(); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestPreprocessorBranchesAreExclusive(t *testing.T) {
	for _, pre := range []string{answers.IncludeLESS, answers.IncludeSASS} {
		p := resolve(t, demoAnswers(pre))
		var less, sass int
		for _, op := range p.Operations {
			switch {
			case strings.HasPrefix(op.Dest, "app/assets/less"):
				less++
			case strings.HasPrefix(op.Dest, "app/assets/sass"):
				sass++
			}
		}
		if (less == 0) == (sass == 0) {
			t.Fatalf("%s: less=%d sass=%d", pre, less, sass)
		}
		if less+sass != 6 {
			t.Fatalf("%s: expected 2 dirs and 4 stylesheets, got %d", pre, less+sass)
		}
	}
}

func TestResolveRejectsBrokenGroup(t *testing.T) {
	both := flagset.FromMap(map[string]bool{answers.IncludeLESS: true, answers.IncludeSASS: true})
	if _, err := Resolve(both, answers.New(nil)); err == nil || !errdef.Is(err, errdef.CodePlan) {
		t.Fatalf("expected plan error for two branches, got %v", err)
	}
	none := flagset.FromMap(nil)
	_, err := Resolve(none, answers.New(nil))
	if err == nil || !strings.Contains(err.Error(), "expected exactly one branch, got 0") {
		t.Fatalf("expected plan error for no branch, got %v", err)
	}
}

func TestOptionalFeatureIndependence(t *testing.T) {
	var rjs Rule
	for _, r := range Rules() {
		if r.Flag == answers.IncludeRequireJS {
			rjs = r
		}
	}
	if len(rjs.Ops) == 0 {
		t.Fatalf("requirejs rule missing")
	}

	others := [][]string{
		nil,
		{answers.IncludeModernizr},
		{answers.IncludeUnderscore},
		{answers.IncludeModernizr, answers.IncludeUnderscore},
	}
	for _, pre := range []string{answers.IncludeLESS, answers.IncludeSASS} {
		for _, extra := range others {
			off := resolve(t, demoAnswers(pre, extra...))
			on := resolve(t, demoAnswers(pre, append([]string{answers.IncludeRequireJS}, extra...)...))
			added, removed := on.Diff(off)
			if len(removed) != 0 {
				t.Fatalf("enabling requirejs removed %v", removed)
			}
			if len(added) != len(rjs.Ops) {
				t.Fatalf("added %v, want %v", added, rjs.Ops)
			}
			for _, op := range rjs.Ops {
				if _, ok := on.Find(op.Dest); !ok {
					t.Fatalf("missing %s", op)
				}
			}
		}
	}
}

func TestUnrelatedFeaturesDoNotChangeOperations(t *testing.T) {
	a := resolve(t, demoAnswers(answers.IncludeLESS))
	b := resolve(t, demoAnswers(answers.IncludeLESS, answers.IncludeModernizr, answers.IncludeUnderscore))
	added, removed := a.Diff(b)
	if len(added)+len(removed) != 0 {
		t.Fatalf("template-only flags changed operations: +%v -%v", added, removed)
	}
	if a.Context.Flags.Has(answers.IncludeModernizr) || !b.Context.Flags.Has(answers.IncludeModernizr) {
		t.Fatalf("render context should carry the full flag set")
	}
}

func TestEveryPlanValidatesAndSourcesExist(t *testing.T) {
	store := templates.Builtin()
	features := []string{answers.IncludeRequireJS, answers.IncludeModernizr, answers.IncludeUnderscore}
	for _, pre := range []string{answers.IncludeLESS, answers.IncludeSASS} {
		for mask := 0; mask < 1<<len(features); mask++ {
			var picked []string
			for i, f := range features {
				if mask&(1<<i) != 0 {
					picked = append(picked, f)
				}
			}
			p := resolve(t, demoAnswers(pre, picked...))
			for _, op := range p.Files() {
				if _, err := fs.Stat(store, op.Source); err != nil {
					t.Fatalf("%s: source missing from store: %v", op, err)
				}
				if (op.Kind == KindRender) != templates.IsTemplate(op.Source) {
					t.Fatalf("%s: kind does not match source suffix", op)
				}
			}
		}
	}
}

func TestValidateCatchesOrderingAndDuplicates(t *testing.T) {
	flags := flagset.FromMap(nil)
	cases := []struct {
		name string
		ops  []Operation
		want string
	}{
		{"parent-missing", []Operation{Copy("a", "app/x")}, "parent directory app"},
		{"parent-late", []Operation{Copy("a", "app/x"), Mkdir("app")}, "parent directory app"},
		{"duplicate", []Operation{Copy("a", "x"), Copy("b", "x")}, "duplicate destination x"},
		{"escape", []Operation{Copy("a", "../x")}, "escapes"},
		{"unclean", []Operation{Mkdir("app/")}, "not clean"},
		{"no-source", []Operation{{Kind: KindCopy, Dest: "x"}}, "has no source"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveRules([]Rule{{Name: tc.name, Ops: tc.ops}}, flags, answers.New(nil))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Rules()
	rules[0].Ops[0] = Mkdir("mutated")
	if Rules()[0].Ops[0].Dest == "mutated" {
		t.Fatalf("Rules exposed the backing table")
	}
}

func TestPlanStringHeader(t *testing.T) {
	p := resolve(t, demoAnswers(answers.IncludeLESS))
	lines := strings.Split(strings.TrimSpace(p.String()), "\n")
	if !strings.HasPrefix(lines[0], "# projectName=demo projectSlug=demo flags=") {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "mkdir app" {
		t.Fatalf("first op = %q", lines[1])
	}
	if len(lines) != len(p.Operations)+1 {
		t.Fatalf("expected one line per operation")
	}
}
