package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/providers/onepassword"
)

// NewSigninCommand creates the signin command
func NewSigninCommand(rt *Runtime) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to 1Password and print the session export",
		Long: `Establish a 1Password CLI session and print a shell export for it.

An existing OP_SESSION_<account> session is reused when still valid.
Otherwise the master password is asked for and op signin is run.

Evaluate the output to share the session with later commands:

  eval "$(confsecrets signin)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rt.documentOptions()
			if err != nil {
				return err
			}

			opCfg := rt.onePasswordConfig(opts, account)
			runner := onepassword.NewRunner(opCfg)
			defer runner.Close()

			if err := runner.EnsureSignedIn(cmd.Context()); err != nil {
				return onePasswordError(opCfg.Command, "signin", err)
			}

			token, err := runner.SessionToken()
			if err != nil {
				return err
			}
			rt.Config.Logger.Debug("Session %s for account %q is %s", logging.Secret(token), runner.Account(), runner.State())

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "export %s=%s\n", onepassword.SessionEnvVar(runner.Account()), token)
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "1Password account shorthand (default from config or \"my\")")

	return cmd
}
