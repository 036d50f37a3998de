package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/assembly/internal/errdef"
	"github.com/unkn0wn-root/assembly/internal/history"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		dir    string
		remove string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.history.Load(); err != nil {
				return err
			}
			if remove != "" {
				ok, err := a.history.Delete(remove)
				if err != nil {
					return err
				}
				if !ok {
					return errdef.New(errdef.CodeHistory, "no entry with run id %q", remove)
				}
				_, err = fmt.Fprintf(a.out, "deleted %s\n", remove)
				return err
			}
			entries := a.history.Entries()
			if dir != "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				entries = a.history.ByDir(abs)
			}
			return writeHistory(a, entries)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Only show projects generated into this directory")
	cmd.Flags().StringVar(&remove, "delete", "", "Delete the entry with this run id")
	return cmd
}

func writeHistory(a *app, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(a.out, "no projects generated yet (%s)\n", a.history.Path())
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		remote := e.Remote
		if remote == "" {
			remote = "-"
		}
		rows = append(rows, []string{
			e.ExecutedAt.Local().Format(time.DateTime),
			e.Project,
			strconv.Itoa(e.Operations) + " ops",
			remote,
			e.Dir,
			"run=" + e.ID,
		})
	}
	return writeTable(a.out, "", rows)
}
