package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "fleet",
		Short:         "Worker fleet: keep one gateway worker session alive per account",
		Long:          "fleet logs every configured account into the gateway, keeps a registered worker channel open for each one with heartbeats and job acknowledgements, and claims the daily reward when it is available.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			if parent := cmd.Parent(); parent != nil && parent.Name() == "completion" {
				return nil
			}
			return app.wire(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Path to config.toml (default: search XDG config, ~/.config/fleet, cwd)")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json, simple)")
	flags.String("accounts", "", "Accounts file, one address per line")
	flags.String("proxies", "", "Proxies file, one proxy URL per line")
	flags.String("fleet-file", "", "TOML roster replacing the accounts and proxies files")
	app.bindFlag("log.level", flags.Lookup("log-level"))
	app.bindFlag("log.format", flags.Lookup("log-format"))
	app.bindFlag("accounts.file", flags.Lookup("accounts"))
	app.bindFlag("proxies.file", flags.Lookup("proxies"))
	app.bindFlag("accounts.fleet_file", flags.Lookup("fleet-file"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newRunCmd(app),
		newRewardsCmd(app),
	)

	return rootCmd
}
