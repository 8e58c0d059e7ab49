package gitaudit

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return &exitError{code: exitUsage, err: fmt.Errorf("unsupported shell: %s", args[0])}
			}
		},
		Example: `
# Bash
gitaudit completion bash > /etc/bash_completion.d/gitaudit

# Zsh
gitaudit completion zsh > "${fpath[1]}/_gitaudit"

# Fish
gitaudit completion fish > ~/.config/fish/completions/gitaudit.fish`,
	}
}
