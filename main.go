package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/auth"
	"github.com/fragmede/panelist/internal/cache"
	"github.com/fragmede/panelist/internal/config"
	"github.com/fragmede/panelist/internal/logging"
	"github.com/fragmede/panelist/internal/pages"
	"github.com/fragmede/panelist/internal/ui"
)

var (
	configPath string
	jsonOutput bool
	verbose    bool

	env *environment
)

// environment is everything a command runs against.
type environment struct {
	cfg      config.Config
	logger   *zap.Logger
	db       *cache.DB
	client   *api.Client
	provider *auth.StoreProvider
	pages    *pages.Loader
	session  *auth.Session
}

func setup() (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	e := &environment{cfg: cfg, logger: logger, db: db}
	e.provider = auth.NewStoreProvider(db, logger)

	var creds api.CredentialProvider = e.provider
	if cfg.Token != "" {
		creds = auth.Static(cfg.Token)
	}
	e.client = api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithCredentials(creds),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithRetry(cfg.RetryMax),
	)
	e.pages = pages.New(e.client, cfg.ThreadDepth, logger)
	e.session = auth.NewSession(e.client, db, logger)

	logger.Debug("started",
		zap.String("base_url", cfg.BaseURL),
		zap.Int("thread_depth", cfg.ThreadDepth),
		zap.Bool("static_token", cfg.Token != ""))
	return e, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
	if err := e.db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing cache: %v\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "panelist [username [comic-slug [chapter]]]",
	Short: "Read comics and their comment threads from the terminal",
	Long: `panelist is a terminal client for the comics platform.

Run without arguments to browse the comics of the logged-in user, or name a
user, a comic and optionally a chapter to open it directly.`,
	Args:          cobra.MaximumNArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = setup()
		return err
	},
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	var start ui.Start
	if len(args) > 0 {
		start.Username = args[0]
	}
	if len(args) > 1 {
		start.Slug = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 {
			return fmt.Errorf("chapter must be a positive number, got %q", args[2])
		}
		start.Chapter = n
	}

	app := ui.NewApp(ui.Deps{
		Pages:   env.pages,
		Session: env.session,
		Users:   env.db,
		UserTTL: env.cfg.UserTTL,
		Style:   env.cfg.Style,
		Logger:  env.logger,
	}, start)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	err := rootCmd.Execute()
	if env != nil {
		env.close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}
