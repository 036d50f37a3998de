package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/config"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/history"
	"github.com/unkn0wn-root/assembly/internal/install"
	"github.com/unkn0wn-root/assembly/internal/publish"
)

type fakePrompter struct {
	set    answers.Set
	err    error
	called bool
}

func (p *fakePrompter) Prompt(_ context.Context, _ []answers.Question, seed answers.Set) (answers.Set, error) {
	p.called = true
	if p.err != nil {
		return answers.Set{}, p.err
	}
	return seed.Merge(p.set), nil
}

type fakeInstaller struct {
	ran []string
}

func (f *fakeInstaller) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func (f *fakeInstaller) Run(_ context.Context, _ string, c install.Command) error {
	f.ran = append(f.ran, c.String())
	return nil
}

type fakeVCS struct {
	calls  []string
	failOn string
}

func (v *fakeVCS) step(name string) error {
	v.calls = append(v.calls, name)
	if name == v.failOn {
		return errors.New(name + " refused")
	}
	return nil
}

func (v *fakeVCS) Init(context.Context) error                     { return v.step("init") }
func (v *fakeVCS) StageAll(context.Context) error                 { return v.step("stage") }
func (v *fakeVCS) SetRemote(_ context.Context, _, _ string) error { return v.step("remote") }
func (v *fakeVCS) Commit(context.Context, string) error           { return v.step("commit") }
func (v *fakeVCS) Push(context.Context, string) error             { return v.step("push") }

func githubAnswers() answers.Set {
	return answers.NewBuilder().
		Set(answers.KeyProjectName, "demo").
		Set(answers.KeyPreprocessor, answers.IncludeSASS).
		Set(answers.KeyFramework, answers.IncludeBootstrap).
		Add(answers.KeyFeatures, answers.IncludeRequireJS).
		Set(answers.KeyVCS, answers.IncludeGitHub).
		Set(answers.KeyAccountName, "acme").
		Build()
}

type harness struct {
	opts      Options
	out       *bytes.Buffer
	spans     *tracetest.SpanRecorder
	installer *fakeInstaller
	vcs       *fakeVCS
	backend   publish.BackendConfig
}

func newHarness(t *testing.T, set answers.Set) *harness {
	t.Helper()
	h := &harness{
		out:       &bytes.Buffer{},
		spans:     tracetest.NewSpanRecorder(),
		installer: &fakeInstaller{},
		vcs:       &fakeVCS{},
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	h.opts = Options{
		Dir:       "demo",
		Settings:  config.Default(),
		Out:       h.out,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:    tp.Tracer("test"),
		Prompter:  &fakePrompter{set: set},
		Installer: h.installer,
		NewVCS: func(c publish.BackendConfig) (publish.VCS, error) {
			h.backend = c
			return h.vcs, nil
		},
		FS: memfs.New(),
	}
	return h
}

func (h *harness) spanNames() []string {
	var names []string
	for _, s := range h.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestRunFullPipeline(t *testing.T) {
	h := newHarness(t, githubAnswers())
	h.opts.Token = "secret"
	h.opts.Install = true

	res, err := New(h.opts).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := h.opts.FS.Stat("app/assets/sass/styles.scss"); err != nil {
		t.Fatalf("sass starter missing: %v", err)
	}
	if _, err := h.opts.FS.Stat("app/assets/less"); err == nil {
		t.Fatalf("less directory created for a sass project")
	}
	if got := strings.Join(h.installer.ran, ";"); got != "npm install;bower install" {
		t.Fatalf("installers = %q", got)
	}
	if res.Published == nil || !res.Published.OK() {
		t.Fatalf("publish report = %+v", res.Published)
	}
	if got := strings.Join(h.vcs.calls, ","); got != "init,stage,remote,commit,push" {
		t.Fatalf("vcs calls = %s", got)
	}
	if h.backend.Backend != "go-git" || h.backend.Branch != "main" || h.backend.Token != "secret" {
		t.Fatalf("backend config = %+v", h.backend)
	}
	out := h.out.String()
	for _, want := range []string{"create Gruntfile.js", "mkdir app/assets/sass", "publish https://github.com/acme/demo.git: init=ok"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	want := []string{SpanPrompt, SpanDerive, SpanResolve, SpanExecute, SpanInstall, SpanPublish}
	if got := h.spanNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("spans = %v, want %v", got, want)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	h := newHarness(t, githubAnswers())
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 10)
	when := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	h.opts.History = store
	h.opts.RunID = "run-1"
	h.opts.Now = func() time.Time { return when }

	if _, err := New(h.opts).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := store.Entries()
	if len(got) != 1 {
		t.Fatalf("entries = %+v", got)
	}
	e := got[0]
	if e.ID != "run-1" || !e.ExecutedAt.Equal(when) || e.Project != "demo" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Remote != "https://github.com/acme/demo.git" || !strings.HasPrefix(e.Publish, "init=ok") {
		t.Fatalf("publish not recorded: %+v", e)
	}
	if !filepath.IsAbs(e.Dir) || filepath.Base(e.Dir) != "demo" {
		t.Fatalf("dir = %q", e.Dir)
	}
}

func TestRunDryRunSkipsSideEffects(t *testing.T) {
	h := newHarness(t, githubAnswers())
	h.opts.DryRun = true
	h.opts.Install = true
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 10)
	h.opts.History = store

	res, err := New(h.opts).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := h.opts.FS.Stat("Gruntfile.js"); err == nil {
		t.Fatalf("dry-run wrote Gruntfile.js")
	}
	if len(h.installer.ran) != 0 || len(h.vcs.calls) != 0 || res.Published != nil {
		t.Fatalf("dry-run ran side effects: install=%v vcs=%v", h.installer.ran, h.vcs.calls)
	}
	if !strings.Contains(h.out.String(), "dry-run: create package.json") {
		t.Fatalf("dry-run report missing:\n%s", h.out.String())
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("dry-run recorded history")
	}
	if len(res.Executed.Applied) != len(res.Plan.Operations) {
		t.Fatalf("applied %d of %d", len(res.Executed.Applied), len(res.Plan.Operations))
	}
}

func TestRunPublishPolicy(t *testing.T) {
	t.Run("best-effort", func(t *testing.T) {
		h := newHarness(t, githubAnswers())
		h.vcs.failOn = "remote"
		res, err := New(h.opts).Run(context.Background())
		if err != nil {
			t.Fatalf("best-effort returned %v", err)
		}
		if res.Published.OK() || len(h.vcs.calls) != 5 {
			t.Fatalf("expected all steps with one failure: %v", h.vcs.calls)
		}
		last := h.spans.Ended()[len(h.spans.Ended())-1]
		var published, found bool
		for _, kv := range last.Attributes() {
			if kv.Key == "published" {
				published, found = kv.Value.AsBool(), true
			}
		}
		if last.Name() != SpanPublish || !found || published {
			t.Fatalf("publish span = %s %v", last.Name(), last.Attributes())
		}
	})
	t.Run("fail-fast from settings", func(t *testing.T) {
		h := newHarness(t, githubAnswers())
		h.vcs.failOn = "remote"
		h.opts.Settings.Publish.FailFast = true
		_, err := New(h.opts).Run(context.Background())
		if !errdef.Is(err, errdef.CodePublish) {
			t.Fatalf("expected publish error, got %v", err)
		}
		if got := strings.Join(h.vcs.calls, ","); got != "init,stage,remote" {
			t.Fatalf("fail-fast continued: %s", got)
		}
		last := h.spans.Ended()[len(h.spans.Ended())-1]
		if last.Name() != SpanPublish || last.Status().Code != codes.Error {
			t.Fatalf("publish span = %s %v", last.Name(), last.Status())
		}
	})
}

func TestRunInstallFromSettings(t *testing.T) {
	h := newHarness(t, githubAnswers())
	h.opts.NoPublish = true
	h.opts.Settings.Install.Run = true
	res, err := New(h.opts).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Installed) != 2 || res.Installed[0].Status != install.StatusDone {
		t.Fatalf("installed = %+v", res.Installed)
	}
	if len(h.vcs.calls) != 0 {
		t.Fatalf("published despite NoPublish")
	}
}

func TestRunWithoutProviderSkipsPublish(t *testing.T) {
	set := githubAnswers().With(answers.KeyVCS, answers.Scalar(answers.IncludeNoVCS))
	h := newHarness(t, set)

	res, err := New(h.opts).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Published != nil || len(h.vcs.calls) != 0 {
		t.Fatalf("published without a provider")
	}
	if len(h.installer.ran) != 0 {
		t.Fatalf("install ran without being requested")
	}
	if res.Answers.Has(answers.KeyAccountName) {
		t.Fatalf("account kept for an unasked question")
	}
}

func TestPromptErrorStopsPipeline(t *testing.T) {
	h := newHarness(t, answers.Set{})
	h.opts.Prompter = &fakePrompter{err: errdef.New(errdef.CodePrompt, "prompt aborted")}

	_, err := New(h.opts).Run(context.Background())
	if !errdef.Is(err, errdef.CodePrompt) {
		t.Fatalf("expected prompt error, got %v", err)
	}
	spans := h.spans.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("spans = %v", h.spanNames())
	}
	if _, err := h.opts.FS.Stat("Gruntfile.js"); err == nil {
		t.Fatalf("files written after aborted prompt")
	}
}

func TestAnswersFileBypassesPrompter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	doc := "projectName: site\npreprocessor: includeLESS\nfeatures: []\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	prompter := &fakePrompter{}
	h := newHarness(t, answers.Set{})
	h.opts.Prompter = prompter
	h.opts.AnswersFile = path

	res, err := New(h.opts).Plan(context.Background())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if prompter.called {
		t.Fatalf("prompter used despite answers file")
	}
	if res.Answers.String(answers.KeyFramework) != answers.IncludeNone {
		t.Fatalf("framework default not applied: %q", res.Answers.String(answers.KeyFramework))
	}
	if _, ok := res.Plan.Find("app/assets/js/main.js"); ok {
		t.Fatalf("requirejs files planned with no features")
	}
}

func TestAnswersRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte("projectName: site\nframework: includeStylus\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h := newHarness(t, answers.Set{})
	h.opts.AnswersFile = path
	_, err := New(h.opts).Plan(context.Background())
	if !errdef.Is(err, errdef.CodeAnswers) || !strings.Contains(err.Error(), "includeStylus") {
		t.Fatalf("expected unknown token error, got %v", err)
	}
}

func TestCatalogDefaults(t *testing.T) {
	s := config.Default()
	s.Defaults.Preprocessor = answers.IncludeSASS
	cat := Catalog(s, filepath.Join(t.TempDir(), "my-project"))
	set := answers.Complete(cat, answers.New(nil))
	if set.String(answers.KeyProjectName) != "my-project" {
		t.Fatalf("projectName = %q", set.String(answers.KeyProjectName))
	}
	if set.String(answers.KeyPreprocessor) != answers.IncludeSASS {
		t.Fatalf("preprocessor = %q", set.String(answers.KeyPreprocessor))
	}
}

func TestSavedAnswersReplayOnDisk(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "answers.yaml")
	first := newHarness(t, githubAnswers())
	first.opts.SaveAnswers = saved
	first.opts.DryRun = true
	if _, err := New(first.opts).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "site")
	second := newHarness(t, answers.Set{})
	second.opts.FS = nil
	second.opts.Dir = dir
	second.opts.AnswersFile = saved
	second.opts.NoPublish = true
	res, err := New(second.opts).Run(context.Background())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := res.Answers.String(answers.KeyAccountName); got != "acme" {
		t.Fatalf("account = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "app", "assets", "js", "main.js")); err != nil {
		t.Fatalf("requirejs entry point not written to disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app", "assets", "sass", "styles.scss")); err != nil {
		t.Fatalf("sass starter not written to disk: %v", err)
	}
	if len(second.vcs.calls) != 0 {
		t.Fatalf("publish ran with --no-publish: %v", second.vcs.calls)
	}
}
