package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/hylla/nametag/internal/adapters/storage/sqlite"
	"github.com/hylla/nametag/internal/config"
	"github.com/hylla/nametag/internal/platform"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model, opts ...tea.ProgramOption) program {
	return tea.NewProgram(m, opts...)
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// cli carries resolved runtime state shared by every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	devMode    bool

	paths        platform.Paths
	dbOverridden bool
	cfg          config.Config
	logger       *runtimeLogger
	repo         *sqlite.Repository
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := &cli{stdout: stdout, stderr: stderr}
	defer c.close()

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootCommand builds the command tree.
func (c *cli) rootCommand() *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("NAMETAG_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName := "nametag"
	if envApp := strings.TrimSpace(os.Getenv("NAMETAG_APP_NAME")); envApp != "" {
		appName = envApp
	}

	root := &cobra.Command{
		Use:   "nametag",
		Short: "Generate printable name tags for WCA competitions",
		Long: `nametag pulls the public WCIF of a competition and the WCA results export,
then lays out double-sided name tags on printable pages.

Run "nametag update" once to download the results export.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.resolvePaths()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		c.generateCommand(),
		c.updateCommand(),
		c.serveCommand(),
		c.runsCommand(),
		c.pathsCommand(),
	)
	return root
}

// resolvePaths resolves platform paths and the config/database overrides.
func (c *cli) resolvePaths() error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return err
	}
	c.paths = paths

	if strings.TrimSpace(c.configPath) == "" {
		if envPath := strings.TrimSpace(os.Getenv("NAMETAG_CONFIG")); envPath != "" {
			c.configPath = envPath
		} else {
			c.configPath = paths.ConfigPath
		}
	}
	c.dbOverridden = strings.TrimSpace(c.dbPath) != ""
	if !c.dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("NAMETAG_DB_PATH")); envPath != "" {
			c.dbPath = envPath
			c.dbOverridden = true
		} else {
			c.dbPath = paths.DBPath
		}
	}
	return nil
}

// loadConfig loads config from disk and configures the runtime logger.
func (c *cli) loadConfig(command string) error {
	if err := config.EnsureConfigDir(c.configPath); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	defaults := config.Default(c.dbPath, c.paths.ExportDir, c.paths.OutputDir)
	cfg, err := config.Load(c.configPath, defaults)
	if err != nil {
		return fmt.Errorf("load config %q: %w", c.configPath, err)
	}
	if c.dbOverridden {
		cfg.Database.Path = c.dbPath
	}
	c.cfg = cfg

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	c.logger = logger

	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", c.configPath, "data_dir", c.paths.DataDir, "db_path", c.dbPath)
	logger.Info("configuration loaded", "config_path", c.configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return nil
}

// openRepository opens the sqlite cache and run log.
func (c *cli) openRepository() (*sqlite.Repository, error) {
	if c.repo != nil {
		return c.repo, nil
	}
	c.logger.Info("opening sqlite repository", "db_path", c.cfg.Database.Path)
	repo, err := sqlite.Open(c.cfg.Database.Path)
	if err != nil {
		c.logger.Error("sqlite open failed", "db_path", c.cfg.Database.Path, "err", err)
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	c.repo = repo
	c.logger.Info("sqlite repository ready", "db_path", c.cfg.Database.Path, "migrations", "ensured")
	return repo, nil
}

// close releases the repository and log sinks.
func (c *cli) close() {
	if c.repo != nil {
		if err := c.repo.Close(); err != nil {
			c.logger.Warn("sqlite close failed", "db_path", c.cfg.Database.Path, "err", err)
		}
	}
	if c.logger == nil {
		return
	}
	if err := c.logger.Close(); err != nil && c.logger.shouldLogToSink(c.logger.consoleSink) {
		_, _ = fmt.Fprintf(c.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// flow wraps one command body with start/complete/failed log events.
func (c *cli) flow(command string, fn func() error) error {
	c.logger.Info("command flow start", "command", command)
	if err := fn(); err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Warn("command flow canceled", "command", command)
		} else {
			c.logger.Error("command flow failed", "command", command, "err", err)
		}
		return fmt.Errorf("run %s command: %w", command, err)
	}
	c.logger.Info("command flow complete", "command", command)
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
