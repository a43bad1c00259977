package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hylla/nametag/internal/adapters/wca"
	"github.com/hylla/nametag/internal/adapters/workbook"
	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/config"
	"github.com/hylla/nametag/internal/domain"
	"github.com/hylla/nametag/internal/render"
	"github.com/hylla/nametag/internal/tui"
)

// errExportMissing reports that the results export has not been downloaded yet.
var errExportMissing = errors.New("results export missing")

// generateOptions holds generate flag values.
type generateOptions struct {
	width      float64
	height     float64
	paper      string
	padding    string
	template   string
	xlsx       string
	update     bool
	noHistory  bool
	pdf        bool
	noProgress bool
}

// apply copies explicitly set flags over cfg and revalidates it.
func (o generateOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("width") {
		cfg.Layout.TagWidthCM = o.width
	}
	if flags.Changed("height") {
		cfg.Layout.TagHeightCM = o.height
	}
	if flags.Changed("paper") {
		cfg.Layout.Paper = o.paper
	}
	if flags.Changed("padding") {
		cfg.Layout.Padding = o.padding
	}
	if flags.Changed("template") {
		cfg.Render.TemplatePath = o.template
	}
	if o.noHistory {
		cfg.Data.UseHistory = false
	}
	if o.pdf {
		cfg.Render.PDF = true
	}
	return cfg.Validate()
}

// generateResult describes one finished generation.
type generateResult struct {
	runID    string
	snapshot app.Snapshot
	outputs  []string
	elapsed  time.Duration
}

// report builds the markdown summary shown after a run.
func (r generateResult) report() string {
	return tui.Report(r.snapshot, r.outputs, r.elapsed)
}

// generateCommand builds the generate command.
func (c *cli) generateCommand() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <competition-id> [output.html]",
		Short: "Build name tags for one competition",
		Example: `  nametag generate WC2025
  nametag generate WC2025 tags.html --paper Letter --pdf
  nametag generate WC2025 --xlsx roster.xlsx --no-history`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig("generate"); err != nil {
				return err
			}
			if err := opts.apply(cmd.Flags(), &c.cfg); err != nil {
				return fmt.Errorf("invalid generate flags: %w", err)
			}
			output := ""
			if len(args) > 1 {
				output = args[1]
			}
			return c.flow("generate", func() error {
				return c.runGenerate(cmd.Context(), args[0], output, opts)
			})
		},
	}
	flags := cmd.Flags()
	flags.Float64VarP(&opts.width, "width", "w", domain.DefaultTagWidth, "tag width in cm")
	flags.Float64VarP(&opts.height, "height", "H", domain.DefaultTagHeight, "tag height in cm")
	flags.StringVar(&opts.paper, "paper", "A4", "paper size: "+paperChoices())
	flags.StringVar(&opts.padding, "padding", string(domain.PadPage), "placeholder padding: none, row or page")
	flags.StringVar(&opts.template, "template", "", "path to an HTML template (bundled template when empty)")
	flags.StringVar(&opts.xlsx, "xlsx", "", "also write a workbook to this path")
	flags.BoolVar(&opts.update, "update", false, "download the results export before generating")
	flags.BoolVar(&opts.noHistory, "no-history", false, "skip competition counts from the results export")
	flags.BoolVar(&opts.pdf, "pdf", false, "also print a PDF with headless Chrome")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress display")
	return cmd
}

// runGenerate runs the generate command flow.
func (c *cli) runGenerate(ctx context.Context, competitionID, output string, opts generateOptions) error {
	competitionID = strings.TrimSpace(competitionID)
	if output == "" {
		output = filepath.Join(c.cfg.Render.OutputDir, competitionID+".html")
	}

	repo, err := c.openRepository()
	if err != nil {
		return err
	}
	client := c.newClient()
	if opts.update {
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

	work := func(ctx context.Context, observer app.Observer) (generateResult, error) {
		started := time.Now()
		svc, err := c.newService(client, app.NewHistoryLoader(exports, repo), observer)
		if err != nil {
			return generateResult{}, err
		}
		snap, err := svc.Build(ctx, competitionID)
		if err != nil {
			return generateResult{}, err
		}
		outputs, err := c.writeOutputs(ctx, observer, renderer, snap, output, opts.xlsx)
		if err != nil {
			return generateResult{}, err
		}
		return generateResult{
			runID:    uuid.NewString(),
			snapshot: snap,
			outputs:  outputs,
			elapsed:  time.Since(started),
		}, nil
	}

	c.logger.Info("generation started", "competition_id", competitionID, "output", output, "use_history", c.cfg.Data.UseHistory)
	var res generateResult
	interactive := !opts.noProgress && isTerminal(c.stdout)
	if interactive {
		res, err = c.runWithProgress(ctx, "Name tags for "+competitionID, work)
	} else {
		res, err = work(ctx, c.stageLogger())
	}
	if err != nil {
		return err
	}

	snap := res.snapshot
	c.logger.Diagnostics(competitionID, snap.Diagnostics)
	if err := repo.RecordRun(ctx, app.RunRecord{
		ID:            res.runID,
		CompetitionID: competitionID,
		OutputPath:    output,
		Competitors:   len(snap.Competitors),
		Pages:         len(snap.Pages),
		Warnings:      snap.WarningCount(),
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		c.logger.Warn("run log write failed", "competition_id", competitionID, "err", err)
	}
	c.logger.Info("generation complete",
		"competition_id", competitionID,
		"competitors", len(snap.Competitors),
		"pages", len(snap.Pages),
		"warnings", snap.WarningCount(),
	)

	if interactive {
		return nil
	}
	if isTerminal(c.stdout) {
		_, _ = fmt.Fprintln(c.stdout, tui.RenderReport(res.report(), 80))
		return nil
	}
	_, _ = fmt.Fprintln(c.stdout, summaryTable(res))
	return nil
}

// runWithProgress runs work while the progress display owns the terminal.
func (c *cli) runWithProgress(ctx context.Context, title string, work func(context.Context, app.Observer) (generateResult, error)) (generateResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		res generateResult
		err error
	}
	p := programFactory(tui.NewModel(tui.WithTitle(title)), tea.WithContext(ctx), tea.WithOutput(c.stdout))
	done := make(chan outcome, 1)
	go func() {
		res, err := work(ctx, tui.Observer(p))
		report := ""
		if err == nil {
			report = res.report()
		}
		p.Send(tui.DoneMsg{Report: report, Err: err})
		done <- outcome{res: res, err: err}
	}()

	// Keep the progress display clean: runtime logs stay in the dev-file sink while it runs.
	c.logger.SetConsoleEnabled(false)
	final, runErr := p.Run()
	c.logger.SetConsoleEnabled(true)

	aborted := false
	if m, ok := final.(tui.Model); ok && m.Aborted() {
		aborted = true
		cancel()
	}
	if runErr != nil {
		cancel()
	}
	out := <-done
	switch {
	case out.err != nil:
		return generateResult{}, out.err
	case runErr != nil:
		return generateResult{}, fmt.Errorf("run progress display: %w", runErr)
	case aborted:
		return generateResult{}, context.Canceled
	}
	return out.res, nil
}

// stageLogger reports stage events through the runtime logger.
func (c *cli) stageLogger() app.Observer {
	return func(ev app.StageEvent) {
		switch {
		case !ev.Done:
			c.logger.Debug("stage started", "stage", string(ev.Stage))
		case ev.Err != nil:
			c.logger.Error("stage failed", "stage", string(ev.Stage), "err", ev.Err)
		default:
			c.logger.Debug("stage complete", "stage", string(ev.Stage))
		}
	}
}

// writeOutputs renders the HTML file plus the optional PDF and workbook.
func (c *cli) writeOutputs(ctx context.Context, observer app.Observer, renderer *render.Renderer, snap app.Snapshot, output, xlsx string) (outputs []string, err error) {
	stage := app.Stage(tui.StageRender)
	observer(app.StageEvent{Stage: stage})
	defer func() {
		observer(app.StageEvent{Stage: stage, Done: true, Err: err})
	}()

	if err := renderer.RenderFile(output, snap); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	outputs = append(outputs, output)

	if c.cfg.Render.PDF {
		var buf bytes.Buffer
		if err := renderer.Render(&buf, snap); err != nil {
			return nil, fmt.Errorf("render html for pdf: %w", err)
		}
		pdfPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".pdf"
		printer := render.PDFPrinter{Bin: c.cfg.Render.ChromeBin}
		if err := printer.PrintFile(ctx, buf.String(), snap.Layout.Paper, pdfPath); err != nil {
			return nil, fmt.Errorf("print pdf: %w", err)
		}
		outputs = append(outputs, pdfPath)
	}

	if strings.TrimSpace(xlsx) != "" {
		if err := workbook.WriteFile(xlsx, snap); err != nil {
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		outputs = append(outputs, xlsx)
	}
	return outputs, nil
}

// newClient builds the WCA API client from config.
func (c *cli) newClient() *wca.Client {
	return wca.NewClient(wca.ClientConfig{
		BaseURL:           c.cfg.API.BaseURL,
		Timeout:           c.cfg.APITimeout(),
		RequestsPerSecond: c.cfg.API.RequestsPerSecond,
		UserAgent:         c.cfg.API.UserAgent,
	}, nil)
}

// newRenderer loads lookup tables and the HTML template. Unset paths fall back
// to override files in the asset dir, then to the bundled assets.
func (c *cli) newRenderer() (*render.Renderer, error) {
	tables, err := render.LoadTables(render.TablePaths{
		Experience: c.assetPath(c.cfg.Render.ExperienceEmojiPath, "experience_emoji"),
		People:     c.assetPath(c.cfg.Render.PeopleEmojiPath, "people_emoji"),
		Index:      c.assetPath(c.cfg.Render.IndexEmojiPath, "index_emoji"),
	})
	if err != nil {
		return nil, fmt.Errorf("load lookup tables: %w", err)
	}
	templatePath := c.cfg.Render.TemplatePath
	if strings.TrimSpace(templatePath) == "" {
		if override, ok := c.paths.Asset("nametags.html.tmpl"); ok {
			templatePath = override
		}
	}
	renderer, err := render.NewRenderer(templatePath, tables)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return renderer, nil
}

// assetPath returns configured, or the first existing <stem>.yaml/.yml/.json in the asset dir.
func (c *cli) assetPath(configured, stem string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	if override, ok := c.paths.Asset(stem+".yaml", stem+".yml", stem+".json"); ok {
		c.logger.Debug("using asset override", "path", override)
		return override
	}
	return ""
}

// newService maps config onto the pipeline service.
func (c *cli) newService(source app.CompetitionSource, history app.HistorySource, observer app.Observer) (*app.Service, error) {
	layout, err := c.cfg.PageLayout()
	if err != nil {
		return nil, err
	}
	pad, err := c.cfg.PadMode()
	if err != nil {
		return nil, err
	}
	locale, err := c.cfg.Locale()
	if err != nil {
		return nil, err
	}
	loc, venue, err := c.cfg.TimeLocation()
	if err != nil {
		return nil, err
	}
	missing, err := c.cfg.MissingCountryPolicy()
	if err != nil {
		return nil, err
	}
	return app.NewService(source, history, uuid.NewString, time.Now, app.ServiceConfig{
		Layout:  layout,
		PadMode: pad,
		Roster: app.RosterOptions{
			MissingCountry: missing,
			IncludePending: c.cfg.Roster.IncludePending,
			Locale:         locale,
		},
		Schedule: app.FlattenOptions{
			Location:      loc,
			VenueTimeZone: venue,
		},
		UseHistory: c.cfg.Data.UseHistory,
		Observer:   observer,
	}), nil
}

// summaryTable renders a plain summary for non-interactive output.
func summaryTable(res generateResult) string {
	snap := res.snapshot
	rows := [][]string{
		{"competition", snap.CompetitionID},
		{"competitors", strconv.Itoa(len(snap.Competitors))},
		{"pages", strconv.Itoa(len(snap.Pages))},
		{"warnings", strconv.Itoa(snap.WarningCount())},
	}
	for _, out := range res.outputs {
		rows = append(rows, []string{"output", out})
	}
	return newTable("Field", "Value").Rows(rows...).String()
}

// newTable returns the shared table style for CLI listings.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

// paperChoices lists the paper presets plus the custom size for flag help.
func paperChoices() string {
	names := make([]string, 0, 3)
	for _, p := range domain.PaperPresets() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ") + " or " + config.PaperCustom
}
