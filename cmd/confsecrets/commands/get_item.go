package commands

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/systmms/confsecrets/internal/providers/onepassword"
)

// NewGetItemCommand creates the get-item command
func NewGetItemCommand(rt *Runtime) *cobra.Command {
	var (
		account      string
		vault        string
		includeTrash bool
	)

	cmd := &cobra.Command{
		Use:   "get-item ID",
		Short: "Print a 1Password item as JSON",
		Long: `Fetch a 1Password item through the op CLI and print it as JSON.

The account, command and timeout come from the 1password resolution options
of the configuration file when it exists. Signs in first when no valid
session is available.`,
		Example: `  confsecrets get-item abc123
  confsecrets get-item abc123 --vault Private --account work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rt.documentOptions()
			if err != nil {
				return err
			}

			opCfg := rt.onePasswordConfig(opts, account)
			client := onepassword.NewClient(opCfg)
			defer client.Close()

			item, err := client.GetItem(cmd.Context(), args[0], onepassword.GetItemOptions{
				IncludeTrash: includeTrash,
				Vault:        vault,
			})
			if err != nil {
				return onePasswordError(opCfg.Command, "get-item", err)
			}

			var out bytes.Buffer
			if err := json.Indent(&out, item.Raw(), "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "1Password account shorthand (default from config or \"my\")")
	cmd.Flags().StringVar(&vault, "vault", "", "Vault to look the item up in")
	cmd.Flags().BoolVar(&includeTrash, "include-trash", false, "Include items in the trash")

	return cmd
}
