package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/recipeblog/recipeq/internal/display"
	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/internal/form"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var defaultRowColumns = []string{"ingredient", "quantity"}

// RowsHandler previews the input names the blog's forms give inserted rows
type RowsHandler struct {
	logger zerolog.Logger
}

// NewRowsHandler creates a new rows command handler
func NewRowsHandler(logger zerolog.Logger) *RowsHandler {
	return &RowsHandler{
		logger: logger.With().Str("handler", "rows").Logger(),
	}
}

func registerRowsFlags(cmd *cobra.Command) {
	cmd.Flags().Int("start", 1, "Index of the first inserted row")
	cmd.Flags().Int("add", 1, "Number of rows to insert")
	cmd.Flags().Bool("repeated", false, "Rows repeat the column name instead of indexing it")
	cmd.Flags().String("collect", "", "Submitted form body to collect column values from")
}

// Execute inserts rows for the given columns and prints their input names
func (h *RowsHandler) Execute(cmd *cobra.Command, args []string) error {
	columns := args
	if len(columns) == 0 {
		columns = defaultRowColumns
	}

	start, err := cmd.Flags().GetInt("start")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get start flag")
	}
	add, err := cmd.Flags().GetInt("add")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get add flag")
	}
	repeated, err := cmd.Flags().GetBool("repeated")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get repeated flag")
	}
	collect, err := cmd.Flags().GetString("collect")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to get collect flag")
	}

	var rows *form.Rows
	if repeated {
		rows, err = form.NewRepeatedRows(columns...)
	} else {
		rows, err = form.NewIndexedRows(start, columns...)
	}
	if err != nil {
		return err
	}

	inserted := make([]form.Row, 0, add)
	for i := 0; i < add; i++ {
		inserted = append(inserted, rows.Add())
	}

	h.logger.Debug().
		Strs("columns", columns).
		Int("rows", len(inserted)).
		Msg("rows inserted")

	var b strings.Builder
	b.WriteString(display.RenderRows(inserted))
	if !repeated {
		fmt.Fprintf(&b, "count: %d\n", rows.Count())
	}

	if collect != "" {
		submitted, err := url.ParseQuery(collect)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeValidation, "invalid form body").
				WithContext("collect", collect)
		}
		for _, c := range form.CollectAll(submitted, rows.Columns()...) {
			fmt.Fprintf(&b, "%s = %q\n", c.Name, c.Values)
		}
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
