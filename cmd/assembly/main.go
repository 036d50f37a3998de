package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/assembly/internal/answers"
	"github.com/unkn0wn-root/assembly/internal/config"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/generator"
	"github.com/unkn0wn-root/assembly/internal/history"
	"github.com/unkn0wn-root/assembly/internal/logging"
	"github.com/unkn0wn-root/assembly/internal/settings"
	"github.com/unkn0wn-root/assembly/internal/telemetry"
	"github.com/unkn0wn-root/assembly/internal/theme"
	"github.com/unkn0wn-root/assembly/internal/wizard"
)

const historyLimit = 200

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	a := newApp()
	err := a.root().ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds process-wide collaborators so commands can be driven from
// tests with buffers and a fake environment.
type app struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	getenv   func(string) string
	environ  func() []string
	terminal func() bool

	answersFile string
	yes         bool
	sets        []string

	settings config.Settings
	log      *slog.Logger
	runID    string
	tel      *telemetry.Provider
	history  *history.Store
}

func newApp() *app {
	return &app{
		in:       os.Stdin,
		out:      os.Stdout,
		errOut:   os.Stderr,
		getenv:   os.Getenv,
		environ:  os.Environ,
		terminal: func() bool { return term.IsTerminal(os.Stdin.Fd()) },
	}
}

func (a *app) root() *cobra.Command {
	var g genFlags
	cmd := &cobra.Command{
		Use:   "assembly [dir]",
		Short: "Scaffold a front-end project",
		Long: heredoc.Doc(`
			Assembly asks a few questions and generates a front-end project:
			a Gruntfile, package manifests, an HTML entry point, stylesheet
			starters for LESS or SASS and optional RequireJS wiring.

			With a GitHub or BitBucket target the project is committed and
			pushed to https://{host}/{account}/{repo}.git.
		`),
		Example: heredoc.Doc(`
			assembly my-site
			assembly --yes --dry-run my-site
			assembly --answers answers.yaml --install --no-publish .
			assembly --set publish-backend=git --publish-fail-fast my-site
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), dirArg(args, 0), g)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.answersFile, "answers", "", "Read answers from a YAML file instead of prompting")
	pf.BoolVarP(&a.yes, "yes", "y", false, "Accept every default without prompting")
	pf.StringArrayVar(&a.sets, "set", nil, "Override a setting (key=value, repeatable)")

	f := cmd.Flags()
	f.BoolVar(&g.dryRun, "dry-run", false, "Print actions without writing files")
	f.BoolVar(&g.force, "force", false, "Overwrite existing files")
	f.BoolVar(&g.diff, "diff", false, "Show a diff for every overwritten file")
	f.BoolVar(&g.install, "install", false, "Run npm install and bower install after generating")
	f.BoolVar(&g.noPublish, "no-publish", false, "Do not create or push a repository")
	f.BoolVar(&g.failFast, "publish-fail-fast", false, "Stop publishing at the first failed step")
	f.BoolVar(&g.copyRemote, "copy-remote", false, "Copy the remote URL to the clipboard")
	f.StringVar(&g.saveAnswers, "save-answers", "", "Write the collected answers to a YAML file for --answers")

	cmd.AddCommand(
		a.planCmd(),
		a.previewCmd(),
		a.templatesCmd(),
		a.historyCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return cmd
}

type genFlags struct {
	dryRun      bool
	force       bool
	diff        bool
	install     bool
	noPublish   bool
	failFast    bool
	copyRemote  bool
	saveAnswers string
}

// setup loads settings, applies env and --set overrides, then builds the
// logger and tracer.
func (a *app) setup(ctx context.Context) error {
	s, err := config.Load(config.SettingsPath())
	if err != nil {
		return err
	}
	pairs, err := settings.ParsePairs(a.sets)
	if err != nil {
		return errdef.Wrap(errdef.CodeSettings, err, "")
	}
	if err := settings.New(settings.Handlers(&s)...).ApplyStrict(settings.Merge(settings.FromEnv(a.environ()), pairs)); err != nil {
		return err
	}
	a.settings = s

	a.log, a.runID = logging.New(a.errOut, s.Log.Level, a.getenv)
	a.history = history.NewStore(config.HistoryPath(), historyLimit)

	cfg := telemetry.ConfigFromEnv(a.getenv)
	cfg.Version = version
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		a.log.Warn("telemetry disabled", "err", err)
		tel = telemetry.Noop()
	}
	a.tel = tel
	return nil
}

func (a *app) close() {
	if a.tel == nil {
		return
	}
	if err := a.tel.Shutdown(context.Background()); err != nil && a.log != nil {
		a.log.Warn("telemetry shutdown", "err", err)
	}
}

func (a *app) options(dir string) generator.Options {
	o := generator.Options{
		Dir:         dir,
		AnswersFile: a.answersFile,
		Yes:         a.yes,
		Settings:    a.settings,
		Token:       a.getenv(generator.EnvGitToken),
		Out:         a.out,
		Log:         a.log,
		Prompter:    a.prompter(),
		History:     a.history,
		RunID:       a.runID,
	}
	if a.tel != nil {
		o.Tracer = a.tel.Tracer()
	}
	return o
}

func (a *app) prompter() wizard.Prompter {
	if a.terminal != nil && a.terminal() {
		return wizard.Terminal{In: a.in, Out: a.out, Theme: a.styles()}
	}
	return noTerminal{}
}

func (a *app) generate(ctx context.Context, dir string, g genFlags) error {
	o := a.options(dir)
	o.DryRun = g.dryRun
	o.Force = g.force
	o.Diff = g.diff
	o.Install = g.install
	o.NoPublish = g.noPublish
	o.FailFast = g.failFast
	o.CopyRemote = g.copyRemote
	o.SaveAnswers = g.saveAnswers

	res, err := generator.New(o).Run(ctx)
	if err != nil {
		return err
	}
	a.log.Info("project generated", "dir", dir, "operations", len(res.Plan.Operations), "dry_run", g.dryRun)
	if g.dryRun {
		return nil
	}
	_, err = fmt.Fprintln(a.out, a.summary(dir, res))
	return err
}

func (a *app) styles() theme.Theme {
	if a.terminal != nil && a.terminal() {
		return theme.DefaultTheme()
	}
	return theme.Plain()
}

// summary renders the key facts of a finished run in a frame.
func (a *app) summary(dir string, res generator.Result) string {
	th := a.styles()
	rows := [][2]string{
		{"project", res.Answers.String(answers.KeyProjectName)},
		{"directory", dir},
		{"files", strconv.Itoa(len(res.Executed.Applied))},
	}
	if res.Published != nil {
		rows = append(rows, [2]string{"remote", res.Published.URL}, [2]string{"publish", res.Published.String()})
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, th.SummaryKey.Render(runewidth.FillRight(r[0], 10))+th.SummaryVal.Render(r[1]))
	}
	return th.Frame.Render(strings.Join(lines, "\n"))
}

func dirArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "."
}
