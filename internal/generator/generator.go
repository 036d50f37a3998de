// Package generator runs the scaffolding pipeline: answers, flags, plan,
// execution, dependency installation and publishing.
package generator

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/config"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/flagset"
	"github.com/unkn0wn-root/assembly/internal/history"
	"github.com/unkn0wn-root/assembly/internal/install"
	"github.com/unkn0wn-root/assembly/internal/plan"
	"github.com/unkn0wn-root/assembly/internal/publish"
	"github.com/unkn0wn-root/assembly/internal/scaffold"
	"github.com/unkn0wn-root/assembly/internal/templates"
	"github.com/unkn0wn-root/assembly/internal/wizard"
)

// EnvGitToken supplies push credentials for the go-git backend.
const EnvGitToken = "ASSEMBLY_GIT_TOKEN"

// Span names, one per pipeline stage.
const (
	SpanPrompt  = "prompt"
	SpanDerive  = "derive"
	SpanResolve = "resolve"
	SpanExecute = "execute"
	SpanInstall = "install"
	SpanPublish = "publish"
)

// Options configures one run. Zero-valued collaborators fall back to the
// real implementations.
type Options struct {
	Dir         string
	AnswersFile string
	Yes         bool
	// SaveAnswers, when set, receives the completed answers as YAML.
	SaveAnswers string

	DryRun     bool
	Force      bool
	Diff       bool
	Install    bool
	NoPublish  bool
	FailFast   bool
	CopyRemote bool

	Settings config.Settings
	Token    string
	Out      io.Writer
	Log      *slog.Logger
	Tracer   trace.Tracer

	Prompter  wizard.Prompter
	Installer install.Runner
	NewVCS    func(publish.BackendConfig) (publish.VCS, error)
	Store     fs.FS
	FS        billy.Filesystem

	// History, when set, receives one entry per run that wrote files.
	History *history.Store
	RunID   string
	Now     func() time.Time
}

// Result carries what every stage produced.
type Result struct {
	Answers   answers.Set
	Flags     flagset.Set
	Plan      plan.Plan
	Executed  scaffold.Result
	Installed []install.Outcome
	Published *publish.Report
}

type Generator struct {
	o Options
}

func New(o Options) *Generator {
	if strings.TrimSpace(o.Dir) == "" {
		o.Dir = "."
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if o.Prompter == nil {
		o.Prompter = wizard.Defaults{}
	}
	if o.Installer == nil {
		o.Installer = install.Exec{}
	}
	if o.NewVCS == nil {
		o.NewVCS = publish.NewVCS
	}
	if o.Store == nil {
		o.Store = templates.Builtin()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Generator{o: o}
}

// Catalog builds the question catalog from settings defaults. The project
// name defaults to the target directory's base name.
func Catalog(s config.Settings, dir string) []answers.Question {
	name := ""
	if abs, err := filepath.Abs(dir); err == nil {
		name = filepath.Base(abs)
	}
	return answers.Catalog(answers.Defaults{
		ProjectName:  name,
		Preprocessor: s.Defaults.Preprocessor,
		Framework:    s.Defaults.Framework,
		Features:     s.Defaults.FeatureList(),
		VCS:          s.Defaults.VCS,
		Account:      s.Defaults.Account,
	})
}

func (g *Generator) Catalog() []answers.Question {
	return Catalog(g.o.Settings, g.o.Dir)
}

// Answers loads the answers file if any, then prompts for the rest unless
// defaults were requested. The result is complete and validated.
func (g *Generator) Answers(ctx context.Context) (answers.Set, error) {
	cat := g.Catalog()
	seed := answers.New(nil)
	if g.o.AnswersFile != "" {
		loaded, err := answers.LoadFile(g.o.AnswersFile)
		if err != nil {
			return answers.Set{}, err
		}
		seed = loaded
	}
	p := g.o.Prompter
	if g.o.Yes || g.o.AnswersFile != "" {
		p = wizard.Defaults{}
	}
	got, err := p.Prompt(ctx, cat, seed)
	if err != nil {
		return answers.Set{}, err
	}
	set := answers.Complete(cat, got)
	if err := answers.Validate(cat, set); err != nil {
		return answers.Set{}, err
	}
	if g.o.SaveAnswers != "" {
		if err := answers.SaveFile(g.o.SaveAnswers, set); err != nil {
			return answers.Set{}, err
		}
		g.o.Log.Debug("answers saved", "path", g.o.SaveAnswers)
	}
	return set, nil
}

// Plan collects answers and resolves them into a plan without touching
// the filesystem.
func (g *Generator) Plan(ctx context.Context) (Result, error) {
	var res Result
	err := g.stage(ctx, SpanPrompt, func(ctx context.Context) error {
		set, err := g.Answers(ctx)
		res.Answers = set
		return err
	})
	if err != nil {
		return res, err
	}
	err = g.stage(ctx, SpanDerive, func(ctx context.Context) error {
		flags, err := flagset.Derive(g.Catalog(), res.Answers)
		res.Flags = flags
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.StringSlice("flags", flags.Enabled()))
		}
		return err
	})
	if err != nil {
		return res, err
	}
	err = g.stage(ctx, SpanResolve, func(ctx context.Context) error {
		p, err := plan.Resolve(res.Flags, res.Answers)
		res.Plan = p
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Int("operations", len(p.Operations)))
		}
		return err
	})
	return res, err
}

// Run executes the whole pipeline. Install and publish failures under the
// best-effort policy are logged and reported, not returned.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	res, err := g.Plan(ctx)
	if err != nil {
		return res, err
	}
	err = g.stage(ctx, SpanExecute, func(ctx context.Context) error {
		executed, err := g.execute(ctx, res.Plan)
		res.Executed = executed
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("applied", len(executed.Applied)))
		return err
	})
	if err != nil {
		return res, err
	}

	if g.shouldInstall() {
		_ = g.stage(ctx, SpanInstall, func(ctx context.Context) error {
			res.Installed = install.Install(ctx, g.o.Installer, g.o.Dir, install.Default, g.o.Log)
			return nil
		})
	}

	if g.o.DryRun {
		return res, nil
	}
	err = g.maybePublish(ctx, &res)
	g.record(res)
	return res, err
}

func (g *Generator) maybePublish(ctx context.Context, res *Result) error {
	if g.o.NoPublish {
		return nil
	}
	tgt, ok, err := publish.TargetFrom(res.Flags, res.Answers)
	if err != nil || !ok {
		return err
	}
	return g.stage(ctx, SpanPublish, func(ctx context.Context) error {
		rep, err := g.publish(ctx, tgt)
		res.Published = &rep
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("published", rep.OK()))
		return err
	})
}

func (g *Generator) record(res Result) {
	if g.o.History == nil {
		return
	}
	dir := g.o.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	e := history.Entry{
		ID:         g.o.RunID,
		ExecutedAt: g.o.Now(),
		Dir:        dir,
		Project:    res.Answers.String(answers.KeyProjectName),
		Flags:      res.Flags.Enabled(),
		Operations: len(res.Executed.Applied),
	}
	if res.Published != nil {
		e.Remote = res.Published.URL
		e.Publish = res.Published.String()
	}
	if err := g.o.History.Append(e); err != nil {
		g.o.Log.Warn("record history", "err", err)
	}
}

func (g *Generator) shouldInstall() bool {
	return !g.o.DryRun && (g.o.Install || g.o.Settings.Install.Run)
}

func (g *Generator) execute(ctx context.Context, p plan.Plan) (scaffold.Result, error) {
	o := scaffold.Opt{
		Dir:    g.o.Dir,
		Force:  g.o.Force,
		DryRun: g.o.DryRun,
		Diff:   g.o.Diff,
		Out:    g.o.Out,
	}
	if g.o.FS != nil {
		return scaffold.New(g.o.FS, g.o.Store, o).Run(ctx, p)
	}
	return scaffold.Run(ctx, g.o.Store, o, p)
}

func (g *Generator) publish(ctx context.Context, tgt publish.Target) (publish.Report, error) {
	ps := g.o.Settings.Publish
	vcs, err := g.o.NewVCS(publish.BackendConfig{
		Backend: ps.Backend,
		Dir:     g.o.Dir,
		Branch:  ps.Branch,
		Author:  publish.Author{Name: ps.AuthorName, Email: ps.AuthorEmail},
		Token:   g.o.Token,
	})
	if err != nil {
		return publish.Report{Target: tgt, URL: tgt.RemoteURL()}, errdef.Wrap(errdef.CodePublish, err, "")
	}
	policy := publish.BestEffort
	if g.o.FailFast || ps.FailFast {
		policy = publish.FailFast
	}
	rep, err := publish.Publish(ctx, vcs, tgt, publish.Options{
		Policy:     policy,
		CopyRemote: g.o.CopyRemote,
		Log:        g.o.Log,
	})
	fmt.Fprintf(g.o.Out, "publish %s: %s\n", rep.URL, rep)
	return rep, err
}

func (g *Generator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := g.o.Tracer.Start(ctx, name)
	defer span.End()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errdef.Message(err))
		g.o.Log.Debug("stage failed", "stage", name, "err", err)
	}
	return err
}
