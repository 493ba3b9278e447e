package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/worker-fleet/internal/adapters/render/status"
	"github.com/bnema/worker-fleet/internal/application"
	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	var noSummary bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one worker session per account until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			roster, err := app.service.Roster(ctx)
			if err != nil {
				return err
			}

			fleet := application.NewFleet(app.sessionDeps(logObserver{log: app.logger}), app.fleetSettings())
			if err := fleet.Run(ctx, roster.Accounts, roster.Proxies); err != nil {
				return err
			}

			if noSummary {
				return nil
			}
			return writeFleetSummary(cmd, app, fleet.Sessions())
		},
	}

	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Do not print the session summary on exit")

	return cmd
}

func writeFleetSummary(cmd *cobra.Command, app *app, sessions []application.SessionStatus) error {
	rendered, err := app.statusRenderer(statusadapter.Report{Sessions: sessions}, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render fleet summary: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// logObserver surfaces session bookkeeping events at debug level.
type logObserver struct {
	log logrus.FieldLogger
}

func (o logObserver) StateChanged(assignment domain.Assignment, from, to domain.ConnectionState) {
	o.log.WithFields(logrus.Fields{
		"account": assignment.Number(),
		"from":    from.String(),
		"to":      to.String(),
	}).Debug("connection state changed")
}

func (o logObserver) ResponseReceived(assignment domain.Assignment, payload json.RawMessage) {
	o.log.WithFields(logrus.Fields{
		"account": assignment.Number(),
		"bytes":   len(payload),
	}).Debug("gateway response received")
}
