// Package cmd holds the kaboocam command line.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/config"
	"github.com/kaboocam/kaboocam/internal/logging"
	"github.com/kaboocam/kaboocam/internal/monitor"
	"github.com/kaboocam/kaboocam/internal/ui"
)

var version = "dev"

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// options are the global flags. Set flags override the environment.
type options struct {
	apiURL    string
	port      string
	staticDir string
	verbose   bool
}

func (o *options) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if o.apiURL != "" {
		cfg.APIBaseURL = o.apiURL
	}
	if o.port != "" {
		if _, err := strconv.Atoi(o.port); err != nil {
			return config.Config{}, fmt.Errorf("invalid --port %q", o.port)
		}
		cfg.Server.Port = o.port
	}
	if o.staticDir != "" {
		cfg.Server.StaticDir = o.staticDir
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// NewRootCmd builds the command tree. Without a subcommand it opens the
// terminal client.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "kaboocam",
		Short: "Terminal client for the Kaboocam board",
		Long: `kaboocam browses and writes to the Kaboocam board from the terminal.

Example usage:
  kaboocam                     # Open the board
  kaboocam login -e me@ex.com  # Sign in without the UI
  kaboocam posts --popular     # Print the popular posts
  kaboocam serve --port 3000   # Serve the browser pages`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", "", "API base URL (default $KABOOCAM_API_BASE_URL)")
	flags.StringVar(&opts.port, "port", "", "page server port (default $PORT or 3000)")
	flags.StringVar(&opts.staticDir, "static", "", "serve pages from this directory instead of the built-in ones")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newPostsCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

func runTUI(opts *options) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		return err
	}
	defer logger.Sync()

	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	mon := monitor.New(sess.deps.Client, sess.deps.Cache, cfg.MonitorInterval, logger.Named("monitor"))
	defer mon.Stop()

	app := ui.NewApp(sess.deps, mon)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	app.SetProgram(p)

	logger.Info("starting", zap.String("api", cfg.APIBaseURL), zap.String("version", version))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// Run executes the command line and returns the process exit code.
func Run() int {
	return exitCode(Execute())
}
