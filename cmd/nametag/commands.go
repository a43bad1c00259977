package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hylla/nametag/internal/adapters/wca"
)

// updateCommand builds the update command.
func (c *cli) updateCommand() *cobra.Command {
	var exportURL string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download and extract the WCA results export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig("update"); err != nil {
				return err
			}
			if cmd.Flags().Changed("url") {
				c.cfg.Data.ExportURL = exportURL
			}
			return c.flow("update", func() error {
				if err := c.downloadExport(cmd.Context(), c.newClient()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(c.stdout, "export: %s\n", c.cfg.Data.ExportDir)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exportURL, "url", "", "export archive URL (default from config)")
	return cmd
}

// downloadExport refreshes the export files in data.export_dir.
func (c *cli) downloadExport(ctx context.Context, client *wca.Client) error {
	c.logger.Info("export download started", "url", c.cfg.Data.ExportURL, "dir", c.cfg.Data.ExportDir)
	started := time.Now()
	files, err := client.DownloadExport(ctx, c.cfg.Data.ExportURL, c.cfg.Data.ExportDir)
	if err != nil {
		return fmt.Errorf("download export: %w", err)
	}
	c.logger.Info("export download complete", "files", len(files), "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

// runsCommand builds the runs command.
func (c *cli) runsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded generation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.loadConfig("runs"); err != nil {
				return err
			}
			return c.flow("runs", func() error {
				repo, err := c.openRepository()
				if err != nil {
					return err
				}
				runs, err := repo.ListRuns(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list runs: %w", err)
				}
				if len(runs) == 0 {
					_, _ = fmt.Fprintln(c.stdout, "no runs recorded")
					return nil
				}
				t := newTable("When", "Competition", "Competitors", "Pages", "Warnings", "Output")
				for _, run := range runs {
					t.Row(
						run.CreatedAt.Local().Format(time.DateTime),
						run.CompetitionID,
						strconv.Itoa(run.Competitors),
						strconv.Itoa(run.Pages),
						strconv.Itoa(run.Warnings),
						run.OutputPath,
					)
				}
				_, _ = fmt.Fprintln(c.stdout, t.String())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

// pathsCommand builds the paths command.
func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(c.stdout, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(c.stdout, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(c.stdout, "config: %s\n", c.configPath)
			_, _ = fmt.Fprintf(c.stdout, "asset_dir: %s\n", c.paths.AssetDir)
			_, _ = fmt.Fprintf(c.stdout, "data_dir: %s\n", c.paths.DataDir)
			_, _ = fmt.Fprintf(c.stdout, "db: %s\n", c.dbPath)
			_, _ = fmt.Fprintf(c.stdout, "export_dir: %s\n", c.paths.ExportDir)
			_, _ = fmt.Fprintf(c.stdout, "output_dir: %s\n", c.paths.OutputDir)
			return nil
		},
	}
}
