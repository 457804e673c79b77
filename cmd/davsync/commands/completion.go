package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
)

// NewCompletionCommand generates shell completion scripts.
func NewCompletionCommand(_ *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for davsync.

Bash:
  $ source <(davsync completion bash)

Zsh:
  $ davsync completion zsh > "${fpath[1]}/_davsync"

Fish:
  $ davsync completion fish > ~/.config/fish/completions/davsync.fish

PowerShell:
  PS> davsync completion powershell | Out-String | Invoke-Expression
`,
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
}
