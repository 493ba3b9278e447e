package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/worker-fleet/internal/adapters/source/lines"
	"github.com/bnema/worker-fleet/internal/application"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the account roster",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountImportCmd(app),
	)

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their assigned proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assignments, err := app.service.Assignments(cmd.Context())
			if err != nil {
				return err
			}

			for _, assignment := range assignments {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", assignment.Number(), assignment.Account, assignment.Proxy.Label())
			}

			return nil
		},
	}
}

func newAccountImportCmd(app *app) *cobra.Command {
	var accountsPath string
	var proxiesPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge accounts and proxies from line files into the fleet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if accountsPath == "" && proxiesPath == "" {
				return errors.New("import needs --from-accounts or --from-proxies")
			}

			var command application.ImportCommand
			var err error
			if accountsPath != "" {
				if command.Accounts, err = lines.ReadAccounts(accountsPath); err != nil {
					return err
				}
			}
			if proxiesPath != "" {
				if command.Proxies, err = lines.ReadProxies(proxiesPath); err != nil {
					return err
				}
			}

			result, err := app.service.Import(cmd.Context(), command)
			if errors.Is(err, application.ErrRosterReadOnly) {
				return fmt.Errorf("%w: set accounts.fleet_file or pass --fleet-file", err)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %d accounts, %d proxies (%d already present)\n",
				result.AddedAccounts, result.AddedProxies, result.Skipped)
			return err
		},
	}

	cmd.Flags().StringVar(&accountsPath, "from-accounts", "", "Accounts file to import, one address per line")
	cmd.Flags().StringVar(&proxiesPath, "from-proxies", "", "Proxies file to import, one proxy URL per line")

	return cmd
}
