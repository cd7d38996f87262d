package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/cmd/goqute/check"
	"github.com/walteh/goqute/cmd/goqute/expr"
	"github.com/walteh/goqute/cmd/goqute/highlight"
	"github.com/walteh/goqute/cmd/goqute/splice"
	"github.com/walteh/goqute/cmd/goqute/tokens"
	"github.com/walteh/goqute/cmd/goqute/tree"
	"github.com/walteh/goqute/pkg/config"
	qdebug "github.com/walteh/goqute/pkg/debug"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	color      bool
	json       bool
}

func run() error {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "goqute",
		Short:         "A tool for inspecting and checking Qute templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a goqute.hcl or goqute.yaml file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&flags.color, "color", false, "colorize log output")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "log-json", false, "log as JSON lines")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := flags.setup(cmd.Context())
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(tokens.NewTokensCommand())
	rootCmd.AddCommand(tree.NewTreeCommand())
	rootCmd.AddCommand(expr.NewExprCommand())
	rootCmd.AddCommand(splice.NewSpliceCommand())
	rootCmd.AddCommand(check.NewCheckCommand())
	rootCmd.AddCommand(highlight.NewHighlightCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

func (f *rootFlags) setup(ctx context.Context) (context.Context, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(afero.NewOsFs(), f.configPath)
		if err != nil {
			return ctx, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	level := cfg.Log.Level
	if f.logLevel != "" {
		level = f.logLevel
	}

	logger, err := qdebug.NewLogger(os.Stderr, qdebug.LoggerOptions{
		Level:   level,
		Color:   f.color || cfg.Log.Color,
		Console: !f.json,
		Caller:  level == "debug" || level == "trace",
	})
	if err != nil {
		return ctx, err
	}

	ctx = logger.WithContext(ctx)
	return cfg.WithContext(ctx), nil
}
