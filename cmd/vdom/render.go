package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdom/pkg/render"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func renderCmd() *cobra.Command {
	var (
		page   bool
		title  string
		pretty bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <tree>",
		Short: "Render a tree file to HTML",
		Long: `Render a tree file to HTML.

By default the markup of the tree is printed on its own. With --page it
is wrapped in a complete HTML document inside <div id="root">.

Examples:
  vdom render tree.yaml
  vdom render tree.json --pretty
  vdom render tree.yaml --page --title=Home -o index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := mountTree(cmd.Context(), args[0], nil, false)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			cfg := render.RendererConfig{Pretty: pretty}
			if !page {
				markup, err := s.html(cfg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, markup)
				return err
			}

			// Page bodies are re-parsed from markup, so they are never pretty.
			markup, err := s.html(render.RendererConfig{})
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			return render.NewRenderer(cfg).RenderPage(out, render.PageData{
				Title: title,
				Body:  vdom.Div(vdom.ID("root"), vdom.InnerHTML(markup)),
			})
		},
	}

	cmd.Flags().BoolVar(&page, "page", false, "Wrap the markup in a full HTML document")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Page title (default: tree file name)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent block elements")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
