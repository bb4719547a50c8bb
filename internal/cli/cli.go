// Package cli defines the tmux-prompts command tree.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/atomicstack/tmux-prompts/internal/app"
	"github.com/atomicstack/tmux-prompts/internal/config"
	"github.com/atomicstack/tmux-prompts/internal/logging"
)

const (
	flagTargetPane = "target-pane"
	flagSelect     = "select"
)

// ConfigError marks a configuration that failed to load or validate.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Runners are the entry points each subcommand ends in.
type Runners struct {
	Launcher func(ctx context.Context, cfg config.Config, targetPane string) error
	Editor   func(ctx context.Context, cfg config.Config, selectID string) error
	Serve    func(ctx context.Context, cfg config.Config) error
	Bind     func(ctx context.Context, cfg config.Config) error
	Unbind   func(ctx context.Context, cfg config.Config) error
}

// DefaultRunners runs the real programs.
func DefaultRunners() Runners {
	return Runners{
		Launcher: app.RunLauncher,
		Editor:   app.RunEditor,
		Serve:    app.Serve,
		Bind:     app.Bind,
		Unbind:   app.Unbind,
	}
}

// Options configure NewRootCommand.
type Options struct {
	Runners Runners
	// Environ is passed to config.Load; nil uses os.Environ.
	Environ []string
	// OnStart runs once logging is configured.
	OnStart func(config.Config)
}

// NewRootCommand builds the command tree. Running it without a subcommand
// opens the launcher.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Environ == nil {
		opts.Environ = os.Environ()
	}

	root := &cobra.Command{
		Use:           "tmux-prompts",
		Short:         "Search, paste and edit prompt snippets from tmux",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	config.RegisterFlags(root.PersistentFlags())
	root.Flags().String(flagTargetPane, "", "pane that receives pasted prompts (default: the current pane)")
	root.RunE = launcherRun(opts)

	launcher := &cobra.Command{
		Use:   "launcher",
		Short: "Open the search popup",
		Args:  cobra.NoArgs,
		RunE:  launcherRun(opts),
	}
	launcher.Flags().String(flagTargetPane, "", "pane that receives pasted prompts (default: the current pane)")

	editor := &cobra.Command{
		Use:   "editor",
		Short: "Open the prompt library editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			selectID, _ := cmd.Flags().GetString(flagSelect)
			return opts.Runners.Editor(cmd.Context(), cfg, selectID)
		},
	}
	editor.Flags().String(flagSelect, "", "prompt id to open once loaded")

	root.AddCommand(
		launcher,
		editor,
		simpleCommand("serve", "Run the daemon and install the hotkey", opts, opts.Runners.Serve),
		simpleCommand("bind", "Install the launcher hotkey from settings", opts, opts.Runners.Bind),
		simpleCommand("unbind", "Remove the launcher hotkey", opts, opts.Runners.Unbind),
	)
	return root
}

func launcherRun(opts Options) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd, opts)
		if err != nil {
			return err
		}
		target, _ := cmd.Flags().GetString(flagTargetPane)
		return opts.Runners.Launcher(cmd.Context(), cfg, target)
	}
}

func simpleCommand(use, short string, opts Options, run func(context.Context, config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

// setup loads and validates the configuration, then points logging at it.
func setup(cmd *cobra.Command, opts Options) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags(), opts.Environ)
	if err != nil {
		return config.Config{}, &ConfigError{Err: err}
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, &ConfigError{Err: err}
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	if opts.OnStart != nil {
		opts.OnStart(cfg)
	}
	return cfg, nil
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, opts Options) error {
	root := NewRootCommand(opts)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
