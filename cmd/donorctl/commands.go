package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"charity/internal/core"
	"charity/internal/counter"
	"charity/internal/log"
	"charity/internal/rotator"
	"charity/internal/sources/file"
	"charity/internal/storage"
	"charity/internal/view"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print donation totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			s := a.renderer.Stats(core.Aggregate(ds))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total raised:   %s\n", s.GrandTotal)
			fmt.Fprintf(out, "  named:        %s\n", s.NamedTotal)
			fmt.Fprintf(out, "  silent:       %s\n", s.SilentTotal)
			fmt.Fprintf(out, "Total donors:   %s\n", s.TotalDonors)
			fmt.Fprintf(out, "Lives changed:  %s\n", s.LivesChanged)
			return nil
		},
	}
}

func newPodiumCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "podium",
		Short: "Print the top three donors in podium order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			p := a.renderer.Podium(ds)
			out := cmd.OutOrStdout()
			if p.Empty {
				fmt.Fprintln(out, p.EmptyText)
				return nil
			}
			for _, c := range p.Cards {
				fmt.Fprintf(out, "%s %-7s %-24s %s\n", c.Medal, c.Position, c.DisplayName, c.Amount)
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var sortKey, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every donor, optionally sorted and filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := core.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			g := a.renderer.Grid(ds, view.GridQuery{Sort: key, Search: search})
			out := cmd.OutOrStdout()
			if len(g.Cards) == 0 {
				fmt.Fprintln(out, g.EmptyText)
				return nil
			}
			for _, c := range g.Cards {
				line := fmt.Sprintf("%-24s %12s", c.DisplayName, c.Amount)
				if c.Date != "" {
					line += "  " + c.Date
				}
				if c.Message != "" {
					line += fmt.Sprintf("  %q", c.Message)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: amount, recent or name (default source order)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	return cmd
}

func newSpotlightCmd(a *app) *cobra.Command {
	var (
		cycles   int
		interval time.Duration
		fade     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "spotlight",
		Short: "Cycle the donor spotlight in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cycles < 1 {
				return fmt.Errorf("--cycles must be at least 1")
			}
			ds, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			lines := a.renderer.SpotlightLines(ds)
			if len(lines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), view.EmptyNoDonorsText)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			display := newTerminalDisplay(cmd.OutOrStdout(), cycles*len(lines))
			r := rotator.New(lines, display, interval, fade)
			r.Start(ctx)
			defer r.Stop()

			select {
			case <-display.Done():
			case <-ctx.Done():
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cycles, "cycles", 1, "full passes over the donor list before exiting")
	cmd.Flags().DurationVar(&interval, "interval", rotator.DefaultInterval, "time each donor stays on screen")
	cmd.Flags().DurationVar(&fade, "fade", rotator.DefaultFade, "fade-out before the next donor")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	var (
		target   int64
		mode     string
		steps    int
		duration time.Duration
		prefix   string
		suffix   string
	)
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Animate a counter from zero to a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := counter.Plan{Target: target, Duration: duration, Steps: steps, Prefix: prefix, Suffix: suffix}
			switch mode {
			case "tick":
				plan.Mode = counter.ModeTick
			case "steps":
				plan.Mode = counter.ModeSteps
			default:
				return fmt.Errorf("unknown mode %q: must be tick or steps", mode)
			}
			if err := plan.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			animator := counter.NewAnimator(a.renderer.Format.Number)
			done := animator.Animate(ctx, "terminal", plan, func(f counter.Frame) {
				fmt.Fprint(out, "\r"+f.Text)
				if f.Final {
					fmt.Fprintln(out)
				}
			})
			<-done
			return nil
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "final value")
	cmd.Flags().StringVar(&mode, "mode", "tick", "tick (fixed frame rate) or steps (fixed step count)")
	cmd.Flags().IntVar(&steps, "steps", counter.FixedSteps, "step count in steps mode")
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Second, "animation length")
	cmd.Flags().StringVar(&prefix, "prefix", "", "text before the number")
	cmd.Flags().StringVar(&suffix, "suffix", "", "text after the number")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var dbPath, from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import donors.json and silent-donations.json into SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.SQLiteDBPath
			}
			if from == "" {
				from = a.cfg.DataDir
			}
			return a.seed(cmd.Context(), cmd.OutOrStdout(), dbPath, from)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path; defaults to SQLITE_DB_PATH")
	cmd.Flags().StringVar(&from, "from", "", "directory holding the JSON files; defaults to DATA_DIR")
	return cmd
}

// seed copies the JSON files into SQLite. As when loading, a missing or
// malformed silent file seeds no silent donations instead of failing.
func (a *app) seed(ctx context.Context, out io.Writer, dbPath, from string) error {
	src := file.New(from)
	donors, err := src.ReadDonors(ctx)
	if err != nil {
		return fmt.Errorf("read donors: %w", err)
	}
	silent, err := src.ReadSilent(ctx)
	if err != nil {
		a.logger.Warn("Silent donations unreadable, seeding none", log.FieldError, err, "dir", from)
		silent = nil
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Seed(ctx, donors, silent); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d donors and %d silent donations into %s\n", len(donors), len(silent), dbPath)
	return nil
}
