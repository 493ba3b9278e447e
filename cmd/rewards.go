package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	statusadapter "github.com/bnema/worker-fleet/internal/adapters/render/status"
	"github.com/bnema/worker-fleet/internal/application"
	"github.com/spf13/cobra"
)

const rewardStaleAfter = time.Hour

func newRewardsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "rewards",
		Aliases: []string{"status"},
		Short:   "Log in every account once and show its reward state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRewards(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runRewards(cmd *cobra.Command, app *app, asJSON bool) error {
	assignments, err := app.service.Assignments(cmd.Context())
	if err != nil {
		return err
	}

	var entries []application.RewardReportEntry
	fetch := func(ctx context.Context) error {
		entries = app.service.RewardReport(ctx, assignments)
		return nil
	}

	if asJSON {
		if err := fetch(cmd.Context()); err != nil {
			return err
		}
	} else {
		if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching rewards...", fetch); err != nil {
			return err
		}
	}

	return writeRewardsOutput(cmd, app, entries, asJSON)
}

type rewardJSON struct {
	Account              string    `json:"account"`
	Proxy                string    `json:"proxy,omitempty"`
	Tier                 string    `json:"tier,omitempty"`
	DailyPoint           float64   `json:"dailyPoint"`
	Claimed              bool      `json:"claimed"`
	NextClaim            string    `json:"nextClaim,omitempty"`
	TotalHeartbeatsToday int64     `json:"totalHeartbeatsToday"`
	FetchedAt            time.Time `json:"fetchedAt"`
	Error                string    `json:"error,omitempty"`
}

func writeRewardsOutput(cmd *cobra.Command, app *app, entries []application.RewardReportEntry, asJSON bool) error {
	if asJSON {
		out := make([]rewardJSON, 0, len(entries))
		for _, entry := range entries {
			item := rewardJSON{
				Account:              string(entry.Assignment.Account),
				Proxy:                string(entry.Assignment.Proxy),
				Tier:                 entry.Status.Tier,
				DailyPoint:           entry.Status.DailyPoint,
				Claimed:              entry.Status.Claimed,
				NextClaim:            entry.Status.NextClaim,
				TotalHeartbeatsToday: entry.Status.TotalHeartbeatsToday,
				FetchedAt:            entry.FetchedAt,
			}
			if entry.Err != nil {
				item.Error = entry.Err.Error()
			}
			out = append(out, item)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.statusRenderer(statusadapter.Report{Rewards: entries}, statusadapter.RenderOptions{
		Now:        app.now(),
		StaleAfter: rewardStaleAfter,
	})
	if err != nil {
		return fmt.Errorf("render rewards: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
