package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpatch/pkg/langs"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for langpatch.

Bash:
  $ source <(langpatch completion bash)

Zsh:
  $ langpatch completion zsh > "${fpath[1]}/_langpatch"

Fish:
  $ langpatch completion fish > ~/.config/fish/completions/langpatch.fish

PowerShell:
  PS> langpatch completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
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

// completeLanguageTags completes the values of language tag flags.
func completeLanguageTags(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	tags := make([]string, 0, len(langs.All))
	for _, l := range langs.All {
		tags = append(tags, l.Tag()+"\t"+l.String())
	}
	return tags, cobra.ShellCompDirectiveNoFileComp
}

// completeIndexFiles restricts file completion to JSON indexes.
func completeIndexFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
