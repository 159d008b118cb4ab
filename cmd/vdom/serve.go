package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdom/internal/config"
	"github.com/vango-dev/vdom/internal/preview"
)

func serveCmd() *cobra.Command {
	var (
		port        int
		host        string
		metrics     bool
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve [tree]",
		Short: "Preview a tree in the browser",
		Long: `Start the preview server.

The tree is rendered into an in-memory document and served as a page.
Edits to the tree file are diffed against the mounted tree; edits to
component files remount it. Every patch is pushed to open browsers.

Settings are read from vdom.json in the project root when present.

Examples:
  vdom serve
  vdom serve pages/home.yaml --port=8080
  vdom serve --metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Preview.Port = port
			}
			if host != "" {
				cfg.Preview.Host = host
			}
			if metrics {
				cfg.Metrics.Enabled = true
			}
			tree := cfg.TreePath()
			if len(args) == 1 {
				tree = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, tree, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from vdom.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vdom.json)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Serve Prometheus metrics")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, tree string, openBrowser bool) error {
	srv, err := preview.New(preview.Options{Config: cfg, TreePath: tree})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBanner(out)
	success(out, "Serving %s", tree)
	info(out, "Preview:  %s", cfg.PreviewURL())
	if cfg.Metrics.Enabled {
		info(out, "Metrics:  %s%s", cfg.PreviewURL(), cfg.Metrics.Path)
	}
	fmt.Fprintln(out)

	if openBrowser {
		openURL(cfg.PreviewURL())
	}

	err = srv.ListenAndServe(ctx)
	fmt.Fprintln(out, "\n  Shutting down...")
	return err
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var c *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		c = exec.Command("xdg-open", url)
	case commandExists("open"):
		c = exec.Command("open", url)
	case commandExists("start"):
		c = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	_ = c.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
