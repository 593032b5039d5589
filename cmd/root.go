package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-sync/pkg/config"
	"github.com/mattsolo1/grove-sync/pkg/exec"
	"github.com/mattsolo1/grove-sync/pkg/forksync"
	"github.com/mattsolo1/grove-sync/pkg/prompt"
)

// newExecutor builds the git executor. Tests replace it.
var newExecutor = func() exec.CommandExecutor {
	return &exec.RealCommandExecutor{}
}

type rootOptions struct {
	configPath string
	dir        string
	yes        bool
	verbose    bool
	noColor    bool
}

// NewRootCmd returns the grove-sync command.
func NewRootCmd() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "grove-sync",
		Short: "Sync your fork with its upstream repository",
		Long: `Sync the main branch of your fork with the upstream project.

grove-sync checks that it runs inside a clone of your fork, sets up the
upstream remote when needed, then fetches upstream, merges the upstream
branch into your local branch and pushes the result to your fork.
Uncommitted changes are stashed first and restored afterwards.

Settings are read from .grove/sync.yml at the repository root when it exists.

Examples:
  # Sync the repository in the current directory
  grove-sync

  # Sync another checkout without the final confirmation
  grove-sync --dir ~/src/Yuxi-Know --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (default: .grove/sync.yml in the repository)")
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the final confirmation (safety prompts are still asked)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every git command to stderr")

	rootCmd.AddCommand(newConfigCmd(&opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func runSync(cmd *cobra.Command, opts rootOptions) error {
	logger := newLogger(opts.verbose)

	cfg, source, err := config.Load(opts.dir, opts.configPath)
	if err != nil {
		return err
	}
	logger.WithField("source", source).Debug("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	orch := forksync.New(cfg, forksync.Options{
		Dir:       opts.dir,
		Executor:  newExecutor(),
		Confirmer: prompt.NewLineConfirmer(cmd.InOrStdin(), out),
		Out:       out,
		Logger:    logger,
		AssumeYes: opts.yes,
	})

	_, err = orch.Run(ctx)
	return err
}

// newLogger returns the diagnostics logger. Progress for the operator goes to
// stdout through the reporter; the logger only carries warnings unless
// verbose is set.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    !isatty.IsTerminal(os.Stderr.Fd()),
		DisableTimestamp: true,
	})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
