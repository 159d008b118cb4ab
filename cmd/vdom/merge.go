package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
)

func mergeCmd() *cobra.Command {
	var (
		target   string
		fragment bool
	)

	cmd := &cobra.Command{
		Use:   "merge <html> <tree>",
		Short: "Adopt existing HTML as the DOM of a tree",
		Long: `Parse an HTML document, adopt the markup inside the target element as
the rendered form of the tree, and print the document after the merge.
Matching nodes are reused in place, stray markup is removed and missing
nodes are created. A reuse report is written to stderr.

Pass - as the HTML file to read it from stdin.

Examples:
  vdom merge index.html tree.yaml
  vdom merge index.html tree.yaml --target='//div[@id="app"]'
  curl -s localhost:8080 | vdom merge - tree.yaml --fragment`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			host, err := doc.Root().Query(target)
			if err != nil {
				return errors.New("E143").WithDetail("invalid XPath " + target).Wrap(err)
			}
			if host == nil {
				return errors.New("E143").
					WithDetail("no element matches " + target).
					WithSuggestion("Check the --target expression against the document")
			}

			existing := make(map[*dom.Node]bool)
			walk(host, func(n *dom.Node) { existing[n] = true })
			total := len(existing)

			s, err := mountTree(cmd.Context(), args[1], host, true)
			if err != nil {
				return err
			}
			defer s.close()

			var out string
			reused := 0
			s.handle.Do(func() {
				walk(host, func(n *dom.Node) {
					if existing[n] {
						reused++
					}
				})
				if fragment {
					out = host.InnerHTML()
				} else {
					out = doc.String()
				}
			})

			fmt.Fprintln(cmd.OutOrStdout(), out)

			st := s.totals.Stats()
			report := cmd.ErrOrStderr()
			success(report, "Merged %s into %s", args[1], host.Describe())
			info(report, "reused %d of %d nodes, created %d, removed %d", reused, total, st.Created, st.Removed)
			if n := len(s.handle.Diagnostics()); n > 0 {
				warn(report, "%d diagnostics", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "//body", "XPath of the element whose content is merged")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "Print only the content of the target")

	return cmd
}

func readDocument(stdin io.Reader, path string) (*dom.Document, error) {
	if path == "-" {
		return dom.Parse(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E142").WithPath(path).Wrap(err)
	}
	defer f.Close()
	return dom.Parse(f)
}

// walk calls fn for every descendant of n in document order.
func walk(n *dom.Node, fn func(*dom.Node)) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		fn(c)
		walk(c, fn)
	}
}
