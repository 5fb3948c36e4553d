// Command reviewctl inspects the latest day of geobox matches from a
// terminal. It opens the same review session as the API and prints JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/hotelmatch/internal/app"
	"github.com/stwalsh4118/hotelmatch/internal/config"
	"github.com/stwalsh4118/hotelmatch/internal/logger"
	"github.com/stwalsh4118/hotelmatch/internal/repository"
	"github.com/stwalsh4118/hotelmatch/internal/review"
	"github.com/stwalsh4118/hotelmatch/internal/services"
)

// backend is what the commands need from a running stack.
type backend struct {
	repo    repository.MatchRepository
	options services.ReviewOptions
	log     *logger.Logger
	close   func()
}

// openFunc builds a backend. Tests swap it for an in-memory one.
type openFunc func(ctx context.Context) (*backend, error)

func main() {
	rootCmd := newRootCmd(openWarehouse, os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openWarehouse(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// stdout carries command output
	log := logger.NewWithWriter(cfg.Server.Env, os.Stderr)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	opts, err := app.ReviewOptions(cfg.Review)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &backend{repo: a.Repository, options: opts, log: log, close: a.Close}, nil
}

func newRootCmd(open openFunc, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Inspect daily hotel geobox matches",
		Long:          `Loads the latest ql2_day from the match warehouse and prints match groups and review pages as JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(createLatestDayCmd(open))
	rootCmd.AddCommand(createGroupsCmd(open))
	rootCmd.AddCommand(createShowCmd(open))
	return rootCmd
}

// createLatestDayCmd prints the most recent day key.
func createLatestDayCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "latest-day",
		Short: "Print the most recent ql2_day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			day, err := b.repo.LatestDay(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read latest day: %w", err)
			}
			if day == "" {
				return services.ErrNoData
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"day": day})
		},
	}
}

// createGroupsCmd lists the latest day's match groups in page order.
func createGroupsCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the match groups of the latest day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := startSession(cmd.Context(), open, nil)
			if err != nil {
				return err
			}
			defer done()

			groups, err := svc.Groups()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), groups)
		},
	}
}

// createShowCmd prints one review page.
func createShowCmd(open openFunc) *cobra.Command {
	var (
		page int
		step int
		mode string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one review page of the latest day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := review.Mode(mode)
			if m != review.ModeMatch && m != review.ModeSurround {
				return fmt.Errorf("--mode must be %q or %q", review.ModeMatch, review.ModeSurround)
			}

			svc, done, err := startSession(cmd.Context(), open, func(o *services.ReviewOptions) {
				o.InitialStep = step
				o.InitialMode = m
			})
			if err != nil {
				return err
			}
			defer done()

			view, err := svc.GoTo(page)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "0-based match group to show")
	cmd.Flags().IntVar(&step, "step", 0, "Index into the configured distance steps")
	cmd.Flags().StringVar(&mode, "mode", string(review.ModeMatch), "Display mode: match or surround")
	return cmd
}

// startSession opens the backend and starts a review session on it.
func startSession(ctx context.Context, open openFunc, tweak func(*services.ReviewOptions)) (services.ReviewService, func(), error) {
	b, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := b.options
	if tweak != nil {
		tweak(&opts)
	}
	svc := services.NewReviewService(b.repo, opts, b.log)
	if err := svc.Start(ctx); err != nil {
		b.close()
		return nil, nil, err
	}
	return svc, b.close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
