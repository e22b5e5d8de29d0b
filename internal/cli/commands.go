// Package cli wires the recipeq cobra commands to their handlers.
package cli

import (
	"github.com/recipeblog/recipeq/internal/config"
	"github.com/recipeblog/recipeq/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the recipeq command tree
func NewRootCommand() *cobra.Command {
	log := zerolog.Nop()
	profiles := config.DefaultProfiles()

	root := &cobra.Command{
		Use:   "recipeq",
		Short: "Query the recipe blog from the command line or over MCP",
		Long: `recipeq builds the recipe blog's query-string requests (search, retrieval,
grocery list updates) the same way the blog's pages do, sends them, and can
serve them to AI assistants as MCP tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			debug, _ := cmd.Flags().GetBool("debug")
			log = logger.SetupFromFlags(verbose, debug)

			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithConfig(commandContext(cmd), cfg))
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.RegisterFlagCompletionFunc("mcp-profiles", profileCompletion)

	search := &cobra.Command{
		Use:   "search [name=value...]",
		Short: profiles["search"].Description,
		Example: `  recipeq search --title "Pasta Night" --ingredient egg --ingredient flour
  recipeq search 'ingredient[1]=egg' 'ingredient[2]=flour'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewHTTPHandler(log, "search").Execute(cmd, args)
		},
		ValidArgsFunction: assignmentCompletion("search"),
	}
	addFieldFlags(search, profiles["search"])

	retrieve := &cobra.Command{
		Use:   "retrieve [name=value...]",
		Short: profiles["retrieve"].Description,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewHTTPHandler(log, "retrieve").Execute(cmd, args)
		},
		ValidArgsFunction: assignmentCompletion("retrieve"),
	}
	addFieldFlags(retrieve, profiles["retrieve"])

	cart := &cobra.Command{
		Use:   "cart <id>",
		Short: profiles["cart"].Description,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewHTTPHandler(log, "cart").WithPositional("id").Execute(cmd, args)
		},
	}

	url := &cobra.Command{
		Use:   "url <profile> [name=value...]",
		Short: "Print the URL a profile would request without sending it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewURLHandler(log).Execute(cmd, args)
		},
		ValidArgsFunction: urlCompletion,
	}

	rows := &cobra.Command{
		Use:   "rows [column...]",
		Short: "Show the input names of rows inserted into a blog form",
		Example: `  recipeq rows --add 2
  recipeq rows instruction --start 1
  recipeq rows ingredient quantity --collect 'ingredient[2]=salt&ingredient[1]=flour'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewRowsHandler(log).Execute(cmd, args)
		},
	}
	registerRowsFlags(rows)

	mcp := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the profiles as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMCPHandler(log).Execute(cmd, args)
		},
	}

	root.AddCommand(search, retrieve, cart, url, rows, mcp, newCompletionCommand())
	return root
}
