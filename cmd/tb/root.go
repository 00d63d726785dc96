package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/cmd/tb/commands"
	"github.com/walteh/tb/cmd/tb/opts"
	"github.com/walteh/tb/pkg/config"
	"github.com/walteh/tb/pkg/copier"
	"github.com/walteh/tb/pkg/fsutil"
	"github.com/walteh/tb/pkg/loader"
	"github.com/walteh/tb/pkg/log"
	"github.com/walteh/tb/pkg/operation"
	"github.com/walteh/tb/pkg/repository"
)

var (
	// Flags
	configFile string
	storage    string
	debug      bool
)

// newRootCmd creates the root command. The returned options are filled in by
// PersistentPreRunE once flags are parsed.
func newRootCmd() (*opts.RootOpts, *cobra.Command) {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "tb",
		Short: "Save file sets as named templates and stamp them out again",
		Long: `tb snapshots files and directories matched by glob patterns into a
named template, and copies a stored template into any destination.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			cmd.SetContext(ctx)
			return initRootOpts(ctx, rootOpts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewSaveCmd(rootOpts),
		commands.NewGetCmd(rootOpts),
		commands.NewDeleteCmd(rootOpts),
		commands.NewListCmd(rootOpts),
		newVersionCmd(),
	)

	return rootOpts, rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: $XDG_CONFIG_HOME/tb/config.{hcl,yaml,yml,json})")
	cmd.PersistentFlags().StringVar(&storage, "storage", "", "template storage directory (default: $XDG_DATA_HOME/tb)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags and returns a context carrying the logger
func setupLogging(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// initRootOpts loads the config and wires the operation service
func initRootOpts(ctx context.Context, rootOpts *opts.RootOpts) error {
	zlog := zerolog.Ctx(ctx)
	rootOpts.Logger = log.New(os.Stdout, *zlog)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	storagePath, err := config.StoragePath(cfg)
	if err != nil {
		return err
	}

	zlog.Debug().Str("config", cfg.String()).Str("storage", storagePath).Msg("configuration loaded")

	fs := fsutil.New()
	progress := loader.New(os.Stderr)

	cp, err := copier.New(copier.Options{
		FileSystem:  fs,
		Loader:      progress,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return errors.Errorf("creating copier: %w", err)
	}

	repo, err := repository.New(repository.Options{
		StoragePath: storagePath,
		FileSystem:  fs,
		Copier:      cp,
	})
	if err != nil {
		return errors.Errorf("creating repository: %w", err)
	}

	svc, err := operation.New(operation.Options{
		Repository:     repo,
		FileSystem:     fs,
		Loader:         progress,
		DefaultExclude: cfg.Exclude,
	})
	if err != nil {
		return errors.Errorf("creating operator: %w", err)
	}

	rootOpts.Config = cfg
	rootOpts.Operator = svc
	return nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(ctx, configFile)
	} else {
		cfg, err = config.LoadDefault(ctx)
	}
	if err != nil {
		return nil, err
	}

	if storage != "" {
		cfg.Storage = storage
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
