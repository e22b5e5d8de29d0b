package cli

import (
	"context"
	"strings"
	"time"

	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/http"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func profileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return config.ProfileNames(config.DefaultProfiles()), cobra.ShellCompDirectiveNoFileComp
}

func urlCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return profileCompletion(cmd, args, toComplete)
	}
	return assignmentCompletion(args[0])(cmd, args, toComplete)
}

// assignmentCompletion suggests name= for the fields of profile. When an
// OpenAPI document is configured only fields it documents are offered.
func assignmentCompletion(profileName string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		profile, ok := config.DefaultProfiles()[profileName]
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		// The user is typing the value part
		if strings.Contains(toComplete, "=") {
			return nil, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
		}

		names := profile.FieldNames()
		if documented, ok := documentedFields(cmd, profile); ok {
			names = intersect(names, documented)
		}

		completions := make([]string, len(names))
		for i, name := range names {
			completions[i] = name + "="
		}
		return completions, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

func documentedFields(cmd *cobra.Command, profile config.Profile) ([]string, bool) {
	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil || cfg.OpenAPIURL == "" {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	catalog := http.NewClientFactory(zerolog.Nop()).CreateCatalog(cfg)
	names, err := catalog.ParamCompletions(ctx, profile.Path, profile.Method)
	if err != nil {
		return nil, false
	}
	return names, true
}

func intersect(names, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	var out []string
	for _, n := range names {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  # Load for current session:
  $ source <(recipeq completion bash)

  # Load for all sessions (add to ~/.bashrc):
  $ echo 'source <(recipeq completion bash)' >> ~/.bashrc

Zsh:

  $ source <(recipeq completion zsh)

Fish:

  $ recipeq completion fish | source

PowerShell:

  PS> recipeq completion powershell | Out-String | Invoke-Expression
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
