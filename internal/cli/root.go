package cli

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/artpar/shelf/internal/app"
	"github.com/artpar/shelf/internal/config"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/remote"
	"github.com/artpar/shelf/internal/timer"
	"github.com/artpar/shelf/internal/tui/views"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	ConfigPath string
	BaseURL    string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "shelf",
		Short:   "Shelf - a terminal storefront",
		Long:    "Shelf browses a recommendation catalog in the terminal: cart, compare and dislike-to-replace.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default ~/.shelf/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.BaseURL, "url", "u", "", "Authority base URL (overrides config)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))

	return cmd
}

// loadConfig reads the config and applies flag overrides.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// newClient builds the authority client described by cfg.
func newClient(cfg config.Config, logger *slog.Logger) (*remote.Client, error) {
	clientOpts := []remote.Option{
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(logger),
	}
	if cfg.Breaker.Enabled {
		clientOpts = append(clientOpts, remote.WithBreaker(remote.BreakerSettings{
			FailureRatio: cfg.Breaker.FailureRatio,
			MinRequests:  cfg.Breaker.MinRequests,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		}))
	}
	return remote.NewClient(cfg.BaseURL, clientOpts...)
}

// tuiModel wraps the CatalogView for bubbletea
type tuiModel struct {
	view *views.CatalogView
}

func (m tuiModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.view.Update(msg)
	m.view = updated.(*views.CatalogView)
	return m, cmd
}

func (m tuiModel) View() string {
	return m.view.View()
}

// newTUIModel wires the session and view for cfg.
func newTUIModel(cfg config.Config, logger *slog.Logger) (tuiModel, error) {
	client, err := newClient(cfg, logger.With(slog.String("component", "remote")))
	if err != nil {
		return tuiModel{}, err
	}

	session := app.New(client,
		app.WithConfig(cfg),
		app.WithLogger(logger),
		app.WithScheduler(timer.New(nil)),
	)
	return tuiModel{view: views.NewCatalogView(session, client.BaseURL())}, nil
}

// runTUI starts the TUI application
func runTUI(opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Open("tui", cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return err
	}
	defer closer.Close()

	model, err := newTUIModel(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting tui", slog.String("base_url", cfg.BaseURL))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
