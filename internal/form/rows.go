// Package form models the dynamic input rows of the blog's upload and search
// pages and adapts submitted form values into query field candidates.
package form

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/pkg/query"
)

// Row is one inserted table row: its index and the input names it holds.
type Row struct {
	Index  int
	Inputs []string
}

// Rows tracks the rows of one form section. Each instance owns its counter,
// so two forms on one page never share indices.
type Rows struct {
	mu        sync.Mutex
	columns   []string
	indexed   bool
	nextIndex int
}

// NewIndexedRows creates a section whose inputs are named column[index],
// starting at start. The upload page starts at 1 because row 0 is rendered
// by the server.
func NewIndexedRows(start int, columns ...string) (*Rows, error) {
	if err := validateColumns(columns); err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "row index must not be negative").
			WithContext("start", start)
	}
	return &Rows{columns: columns, indexed: true, nextIndex: start}, nil
}

// NewRepeatedRows creates a section whose inputs all share the column name,
// as the search page's extra ingredient terms do.
func NewRepeatedRows(columns ...string) (*Rows, error) {
	if err := validateColumns(columns); err != nil {
		return nil, err
	}
	return &Rows{columns: columns}, nil
}

func validateColumns(columns []string) error {
	if len(columns) == 0 {
		return errors.New(errors.ErrorTypeValidation, "a row needs at least one column")
	}
	for _, c := range columns {
		if err := query.ValidateFieldName(c); err != nil {
			return errors.FromQuery(err)
		}
		if strings.ContainsAny(c, "[]") {
			return errors.New(errors.ErrorTypeValidation, "column names must not contain brackets").
				WithContext("field", c)
		}
	}
	return nil
}

// Add inserts a row and returns it.
func (r *Rows) Add() Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := Row{Index: r.nextIndex, Inputs: make([]string, len(r.columns))}
	for i, c := range r.columns {
		if r.indexed {
			row.Inputs[i] = fmt.Sprintf("%s[%d]", c, r.nextIndex)
		} else {
			row.Inputs[i] = c
		}
	}
	r.nextIndex++
	return row
}

// Count is the value the page writes into its hidden count input: the index
// the next row would get.
func (r *Rows) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextIndex
}

// Columns returns the section's column names.
func (r *Rows) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Collect extracts the values of column from submitted form values. Plain
// repeated keys (ingredient=a&ingredient=b) come first in submission order,
// followed by indexed keys (ingredient[2]=c) in ascending index order, then
// by key.
func Collect(values url.Values, column string) query.FieldCandidate {
	candidate := query.FieldCandidate{Name: column}
	candidate.Values = append(candidate.Values, values[column]...)

	type indexed struct {
		index int
		key   string
		vals  []string
	}
	var found []indexed
	prefix := column + "["
	for key, vals := range values {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		n, err := strconv.Atoi(key[len(prefix) : len(key)-1])
		if err != nil || n < 0 {
			continue
		}
		found = append(found, indexed{index: n, key: key, vals: vals})
	}
	// Keys naming the same index (ingredient[1], ingredient[01]) are
	// ordered by key so the result never depends on map iteration.
	sort.Slice(found, func(i, j int) bool {
		if found[i].index != found[j].index {
			return found[i].index < found[j].index
		}
		return found[i].key < found[j].key
	})

	for _, f := range found {
		candidate.Values = append(candidate.Values, f.vals...)
	}
	return candidate
}

// CollectAll runs Collect for each name in order.
func CollectAll(values url.Values, names ...string) []query.FieldCandidate {
	candidates := make([]query.FieldCandidate, len(names))
	for i, name := range names {
		candidates[i] = Collect(values, name)
	}
	return candidates
}
