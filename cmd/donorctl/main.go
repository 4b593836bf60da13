// Command donorctl inspects and prepares donor data from the terminal using
// the same backends and views as the web server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"charity/internal/cli"
	"charity/internal/config"
	"charity/internal/core"
	"charity/internal/loader"
	"charity/internal/log"
	"charity/internal/view"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	backend string
	dataDir string
	verbose bool

	cfg      *config.Config
	logger   *log.Logger
	renderer *view.Renderer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "donorctl",
		Short:         "Inspect and prepare donor data",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.backend, "backend", "", "data backend (file, http, sqlite, sheets, s3); defaults to DATA_BACKEND")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory of the file backend; defaults to DATA_DIR")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newStatsCmd(a),
		newPodiumCmd(a),
		newListCmd(a),
		newSpotlightCmd(a),
		newCountCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = log.New(log.Config{Level: level, Component: log.ComponentApp, Output: cmd.ErrOrStderr()})
	a.cfg = cfg
	a.renderer = view.NewRenderer(view.NewFormatter(cfg.CurrencySymbol, cfg.Locale))
	return nil
}

// load reads the dataset once from the configured backend. A malformed or
// unreachable donor source fails the command.
func (a *app) load(ctx context.Context) (core.Dataset, error) {
	res, err := cli.OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("open %s backend: %w", a.cfg.DataBackend, err)
	}
	defer cli.Cleanup(a.logger, res)

	ds, err := loader.New(res.Backend, res.Backend, a.cfg.LoadTimeout, a.logger).Load(ctx)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("%s: %w", view.ErrorMessage, err)
	}
	return ds, nil
}
