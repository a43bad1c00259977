package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hylla/nametag/internal/adapters/server"
	"github.com/hylla/nametag/internal/adapters/wca"
	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/render"
)

// clipboardWriteAll stores a package-level helper value.
var clipboardWriteAll = clipboard.WriteAll

// serveOptions holds serve flag values.
type serveOptions struct {
	bind      string
	template  string
	copyURL   bool
	noWatch   bool
	noHistory bool
	update    bool
}

// serveCommand builds the serve command.
func (c *cli) serveCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve <competition-id>",
		Short: "Build once and serve a live preview with a JSON API and MCP tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig("serve"); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("bind") {
				c.cfg.Serve.Bind = opts.bind
			}
			if flags.Changed("template") {
				c.cfg.Render.TemplatePath = opts.template
			}
			if opts.copyURL {
				c.cfg.Serve.CopyURL = true
			}
			if opts.noWatch {
				c.cfg.Serve.WatchTemplate = false
			}
			if opts.noHistory {
				c.cfg.Data.UseHistory = false
			}
			return c.flow("serve", func() error {
				return c.runServe(cmd.Context(), args[0], opts.update)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.bind, "bind", "", "listen address (default from config)")
	flags.StringVar(&opts.template, "template", "", "path to an HTML template to watch and render")
	flags.BoolVar(&opts.copyURL, "copy-url", false, "copy the preview URL to the clipboard")
	flags.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the template when it changes")
	flags.BoolVar(&opts.noHistory, "no-history", false, "skip competition counts from the results export")
	flags.BoolVar(&opts.update, "update", false, "download the results export before building")
	return cmd
}

// runServe builds one snapshot and serves it until ctx is done.
func (c *cli) runServe(ctx context.Context, competitionID string, update bool) error {
	competitionID = strings.TrimSpace(competitionID)
	repo, err := c.openRepository()
	if err != nil {
		return err
	}
	client := c.newClient()
	if update {
		if err := c.downloadExport(ctx, client); err != nil {
			return err
		}
	}
	exports := wca.ExportDir{Dir: c.cfg.Data.ExportDir}
	if !exports.Exists() {
		return fmt.Errorf("%w in %s: run \"nametag update\" or pass --update", errExportMissing, exports.Dir)
	}
	renderer, err := c.newRenderer()
	if err != nil {
		return err
	}
	svc, err := c.newService(client, app.NewHistoryLoader(exports, repo), c.stageLogger())
	if err != nil {
		return err
	}
	snap, err := svc.Build(ctx, competitionID)
	if err != nil {
		return err
	}
	c.logger.Diagnostics(competitionID, snap.Diagnostics)

	var holder app.SnapshotHolder
	holder.Publish(snap)
	c.logger.Info("snapshot published", "competition_id", competitionID, "snapshot_id", snap.ID, "competitors", len(snap.Competitors))

	g, gctx := errgroup.WithContext(ctx)
	if c.cfg.Serve.WatchTemplate {
		watcher, err := render.NewTemplateWatcher(renderer, render.DefaultDebounce)
		switch {
		case errors.Is(err, render.ErrBundledTemplate):
			c.logger.Debug("template watch skipped", "reason", "bundled template")
		case err != nil:
			return err
		default:
			c.logger.Info("watching template", "path", renderer.TemplatePath())
			g.Go(func() error {
				return watcher.Run(gctx, func(err error) {
					if err != nil {
						c.logger.Warn("template reload failed", "path", renderer.TemplatePath(), "err", err)
						return
					}
					c.logger.Info("template reloaded", "path", renderer.TemplatePath())
				})
			})
		}
	}

	url := server.URL(c.cfg.Serve.Bind)
	g.Go(func() error {
		return server.Run(gctx, server.Config{
			HTTPBind:      c.cfg.Serve.Bind,
			APIEndpoint:   c.cfg.Serve.APIEndpoint,
			MCPEndpoint:   c.cfg.Serve.MCPEndpoint,
			ServerName:    "nametag",
			ServerVersion: version,
		}, server.Dependencies{
			Snapshots: &holder,
			Renderer:  renderer,
		})
	})

	c.logger.Info("preview server listening", "url", url)
	_, _ = fmt.Fprintf(c.stdout, "preview: %s\n", url)
	if c.cfg.Serve.CopyURL {
		if err := clipboardWriteAll(url); err != nil {
			c.logger.Warn("copy preview url failed", "err", err)
		} else {
			c.logger.Info("preview url copied to clipboard")
		}
	}
	return g.Wait()
}
