package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/recipeblog/recipeq/internal/cli"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			errors.PresentError(err)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
}
