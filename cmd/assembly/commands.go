package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/assembly/internal/config"
	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/generator"
	"github.com/unkn0wn-root/assembly/internal/plan"
	"github.com/unkn0wn-root/assembly/internal/preview"
	"github.com/unkn0wn-root/assembly/internal/templates"
)

func (a *app) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [dir]",
		Short: "Print the file plan for a set of answers",
		Long: heredoc.Doc(`
			Resolve answers into the ordered list of directories to create,
			files to copy and templates to render, without touching disk.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := generator.New(a.options(dirArg(args, 0))).Plan(cmd.Context())
			if err != nil {
				return err
			}
			return writePlan(a.out, res.Plan)
		},
	}
}

func writePlan(w io.Writer, p plan.Plan) error {
	if _, err := fmt.Fprintf(w, "# %s\n", p.Context); err != nil {
		return err
	}
	rows := make([][]string, 0, len(p.Operations))
	for _, op := range p.Operations {
		row := []string{string(op.Kind), op.Dest}
		if op.Source != "" {
			row = append(row, "<- "+op.Source)
		}
		rows = append(rows, row)
	}
	return writeTable(w, "", rows)
}

func (a *app) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview DEST [dir]",
		Short: "Render one planned file and print it highlighted",
		Example: heredoc.Doc(`
			assembly preview --yes Gruntfile.js
			assembly preview --answers answers.yaml package.json my-site
		`),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.preview(cmd.Context(), args[0], dirArg(args, 1))
		},
	}
}

func (a *app) preview(ctx context.Context, dest, dir string) error {
	g := generator.New(a.options(dir))
	res, err := g.Plan(ctx)
	if err != nil {
		return err
	}
	op, ok := res.Plan.Find(strings.TrimPrefix(dest, "./"))
	if !ok {
		return errdef.New(errdef.CodePlan, "%s is not part of the plan", dest)
	}
	if op.IsDir() {
		return errdef.New(errdef.CodePlan, "%s is a directory", dest)
	}
	store := templates.Builtin()
	var data []byte
	if op.Kind == plan.KindRender {
		data, err = templates.Render(store, op.Source, res.Plan.Context)
	} else {
		data, err = templates.Read(store, op.Source)
	}
	if err != nil {
		return err
	}
	if preview.Binary(data) {
		_, err = fmt.Fprintf(a.out, "binary file %s (%d bytes)\n", op.Dest, len(data))
		return err
	}
	_, err = io.WriteString(a.out, preview.Highlight(op.Dest, string(data), preview.Profile(a.out)))
	return err
}

func (a *app) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List plan rules and the embedded template files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeTemplates(a.out)
		},
	}
}

func writeTemplates(w io.Writer) error {
	var rows [][]string
	for _, r := range plan.Rules() {
		rows = append(rows, []string{r.Name, r.Tier.String(), r.Gate()})
		for _, op := range r.Ops {
			rows = append(rows, []string{"", "", op.String()})
		}
	}
	if err := writeTable(w, "", rows); err != nil {
		return err
	}
	entries, err := templates.Files(templates.Builtin())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nfiles:\n"); err != nil {
		return err
	}
	rows = rows[:0]
	for _, e := range entries {
		kind := "static"
		if e.Render {
			kind = "template"
		}
		rows = append(rows, []string{e.Name, kind, strconv.FormatInt(e.Size, 10)})
	}
	return writeTable(w, "  ", rows)
}

func (a *app) configCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print effective settings",
		Long: heredoc.Doc(`
			Print settings.toml after environment and --set overrides.
			With --write the result is saved to the settings file.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.SettingsPath()
			if write {
				if err := config.Save(path, a.settings); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "wrote %s\n", path)
				return err
			}
			data, err := config.Encode(a.settings)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(a.out, "# %s\n", path); err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Save the effective settings")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "assembly %s\n  commit: %s\n  built:  %s\n", version, commit, date)
			return err
		},
	}
}

// writeTable pads every column but the last to its widest cell.
func writeTable(w io.Writer, indent string, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for _, row := range rows {
		var b strings.Builder
		b.WriteString(indent)
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
