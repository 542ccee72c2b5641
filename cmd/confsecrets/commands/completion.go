package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for confsecrets.

Bash:
  $ source <(confsecrets completion bash)

Zsh:
  $ confsecrets completion zsh > "${fpath[1]}/_confsecrets"

Fish:
  $ confsecrets completion fish > ~/.config/fish/completions/confsecrets.fish

PowerShell:
  PS> confsecrets completion powershell | Out-String | Invoke-Expression

Value names of the configuration file are completed for resolve.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeValueNames completes the value names of the configuration file,
// skipping names already given.
func completeValueNames(rt *Runtime) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if rt.Config.Document == nil {
			if err := rt.Config.Load(); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}

		given := make(map[string]bool, len(args))
		for _, a := range args {
			given[a] = true
		}

		var names []cobra.Completion
		for _, entry := range rt.Config.Document.Values {
			if !given[entry.Name] && strings.HasPrefix(entry.Name, toComplete) {
				names = append(names, entry.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
