package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for autopaste.

To load completions:

Bash:
  $ source <(autopaste completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ autopaste completion bash > /etc/bash_completion.d/autopaste
  # macOS:
  $ autopaste completion bash > $(brew --prefix)/etc/bash_completion.d/autopaste

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ autopaste completion zsh > "${fpath[1]}/_autopaste"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ autopaste completion fish | source

  # To load completions for each session, execute once:
  $ autopaste completion fish > ~/.config/fish/completions/autopaste.fish

PowerShell:
  PS> autopaste completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
