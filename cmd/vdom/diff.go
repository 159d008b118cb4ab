package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/render"
)

// diffReport is the JSON output of the diff command.
type diffReport struct {
	Mutations []string `json:"mutations"`
	Rendered  int      `json:"rendered"`
	Created   int      `json:"created"`
	Removed   int      `json:"removed"`
	Moved     int      `json:"moved"`
	HTML      string   `json:"html,omitempty"`
}

func diffCmd() *cobra.Command {
	var (
		asJSON   bool
		showHTML bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the DOM mutations that turn one tree into another",
		Long: `Mount the old tree, update it to the new one, and print every DOM
mutation the update performed.

Examples:
  vdom diff before.yaml after.yaml
  vdom diff before.json after.json --json
  vdom diff before.yaml after.yaml --html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := mountTree(cmd.Context(), args[0], nil, false)
			if err != nil {
				return err
			}
			defer s.close()

			s.handle.Do(s.doc.ResetMutations)
			before := s.totals.Stats()
			if err := s.update(args[1]); err != nil {
				return err
			}
			after := s.totals.Stats()

			report := diffReport{
				Mutations: []string{},
				Rendered:  after.Rendered - before.Rendered,
				Created:   after.Created - before.Created,
				Removed:   after.Removed - before.Removed,
				Moved:     after.Moved - before.Moved,
			}
			var log []dom.Mutation
			s.handle.Do(func() { log = s.doc.Mutations() })
			for _, m := range log {
				report.Mutations = append(report.Mutations, m.String())
			}
			if showHTML {
				if report.HTML, err = s.html(render.RendererConfig{}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			for _, m := range report.Mutations {
				fmt.Fprintln(out, m)
			}
			if len(report.Mutations) == 0 {
				info(out, "no changes")
			}
			fmt.Fprintf(out, "\n%d mutations: %d created, %d removed, %d moved, %d components rendered\n",
				len(report.Mutations), report.Created, report.Removed, report.Moved, report.Rendered)
			if showHTML {
				fmt.Fprintf(out, "\n%s\n", report.HTML)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&showHTML, "html", false, "Also print the resulting markup")

	return cmd
}
