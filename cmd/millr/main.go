package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	apppkg "github.com/kk-code-lab/millr/internal/app"
	"github.com/kk-code-lab/millr/internal/config"
	"github.com/kk-code-lab/millr/internal/logging"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "millr [DIR]",
		Short:         "Miller-columns file browser for the terminal",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				cfg.StartDir = dir
			}
			return run(cfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: "+config.DefaultPath()+")")
	cmd.Flags().BoolP("show-hidden", "a", false, "show hidden files")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error, off")
	cmd.Flags().String("log-file", "", "log file (default: "+logging.DefaultPath()+")")

	_ = v.BindPFlag("show_hidden", cmd.Flags().Lookup("show-hidden"))
	_ = v.BindPFlag(config.Key("log", "level"), cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag(config.Key("log", "file"), cmd.Flags().Lookup("log-file"))

	cmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	})
	return cmd
}

func run(cfg config.Config) error {
	if err := logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.File,
	}); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logging.Sync() }()

	app, err := apppkg.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		_ = app.Close()
	}()

	app.Run()
	return nil
}

func main() {
	// UTF-8 fallback keeps non-ASCII names readable on bare terminals.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
