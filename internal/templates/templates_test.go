package templates

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/flagset"
)

func contextFor(t *testing.T, pre, fw string, features ...string) Context {
	t.Helper()
	cat := answers.Catalog(answers.Defaults{})
	set := answers.New(map[string]answers.Value{
		answers.KeyProjectName:  answers.Scalar(`My "Site"`),
		answers.KeyPreprocessor: answers.Scalar(pre),
		answers.KeyFramework:    answers.Scalar(fw),
		answers.KeyFeatures:     answers.List(features...),
		answers.KeyVCS:          answers.Scalar(answers.IncludeNoVCS),
	})
	flags, err := flagset.Derive(cat, set)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return NewContext(flags, set)
}

// Every template must render and lint under every flag combination.
func TestRenderAllCombinationsLint(t *testing.T) {
	store := Builtin()
	entries, err := Files(store)
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	features := []string{answers.IncludeRequireJS, answers.IncludeModernizr, answers.IncludeUnderscore}
	for _, pre := range []string{answers.IncludeLESS, answers.IncludeSASS} {
		for _, fw := range []string{answers.IncludeBootstrap, answers.IncludeFoundation, answers.IncludeNone} {
			for mask := 0; mask < 1<<len(features); mask++ {
				var picked []string
				for i, f := range features {
					if mask&(1<<i) != 0 {
						picked = append(picked, f)
					}
				}
				ctx := contextFor(t, pre, fw, picked...)
				for _, e := range entries {
					if !e.Render {
						continue
					}
					out, err := Render(store, e.Name, ctx)
					if err != nil {
						t.Fatalf("%s %s %v: render %s: %v", pre, fw, picked, e.Name, err)
					}
					dest := strings.TrimSuffix(e.Name, Suffix)
					if err := Lint(dest, out); err != nil {
						t.Fatalf("%s %s %v: %v\n%s", pre, fw, picked, err, out)
					}
				}
			}
		}
	}
}

func TestGruntfileFollowsPreprocessor(t *testing.T) {
	store := Builtin()
	less, err := Render(store, "Gruntfile.js.tmpl", contextFor(t, answers.IncludeLESS, answers.IncludeNone))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	sass, err := Render(store, "Gruntfile.js.tmpl", contextFor(t, answers.IncludeSASS, answers.IncludeNone, answers.IncludeRequireJS))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(less), "grunt-contrib-less") || strings.Contains(string(less), "grunt-contrib-sass") {
		t.Fatalf("less gruntfile wired wrong plugins:\n%s", less)
	}
	if strings.Contains(string(less), "requirejs:") {
		t.Fatalf("requirejs block rendered without the feature")
	}
	if !strings.Contains(string(sass), "'sass:production'") || !strings.Contains(string(sass), "requirejs: {") {
		t.Fatalf("sass gruntfile missing blocks:\n%s", sass)
	}
}

func TestPackageJSONEscapesProjectName(t *testing.T) {
	out, err := Render(Builtin(), "global/package.json.tmpl", contextFor(t, answers.IncludeLESS, answers.IncludeNone))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `"description": "My \"Site\""`) {
		t.Fatalf("description not escaped:\n%s", out)
	}
	if !strings.Contains(string(out), `"name": "my-site"`) {
		t.Fatalf("name should be the slug:\n%s", out)
	}
}

func TestRenderMissingVariable(t *testing.T) {
	store := fstest.MapFS{"x.txt.tmpl": {Data: []byte("{{.includeStylus}}")}}
	_, err := Render(store, "x.txt.tmpl", contextFor(t, answers.IncludeLESS, answers.IncludeNone))
	if err == nil {
		t.Fatalf("expected error for unknown variable")
	}
	if !errdef.Is(err, errdef.CodeTemplate) {
		t.Fatalf("expected template code, got %v", err)
	}
}

func TestRenderMissingSource(t *testing.T) {
	_, err := Render(fstest.MapFS{}, "nope.tmpl", Context{})
	if err == nil || !strings.Contains(err.Error(), "read template nope.tmpl") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLintRejectsBrokenOutput(t *testing.T) {
	if err := Lint("a.js", []byte("var x = {;")); err == nil {
		t.Fatalf("expected js error")
	}
	if err := Lint("a.json", []byte(`{"a":1,}`)); err == nil {
		t.Fatalf("expected json error")
	}
	if err := Lint("a.html", []byte("<p")); err != nil {
		t.Fatalf("unchecked extensions must pass: %v", err)
	}
}

func TestFilesListsStore(t *testing.T) {
	entries, err := Files(Builtin())
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	seen := map[string]Entry{}
	for _, e := range entries {
		seen[e.Name] = e
	}
	for _, want := range []string{"Gruntfile.js.tmpl", "global/gitignore", "nocms/favicon.ico", "starter-sass/site/mixins.scss"} {
		if _, ok := seen[want]; !ok {
			t.Fatalf("store missing %s", want)
		}
	}
	if !seen["requirejs/main.js.tmpl"].Render || seen["global/app.js"].Render {
		t.Fatalf("render marker wrong: %+v", entries)
	}
}

func TestContextSlugFallback(t *testing.T) {
	ctx := NewContext(flagset.FromMap(nil), answers.New(map[string]answers.Value{
		answers.KeyProjectName: answers.Scalar("!!!"),
	}))
	if ctx.ProjectSlug != "app" {
		t.Fatalf("slug = %q", ctx.ProjectSlug)
	}
}
