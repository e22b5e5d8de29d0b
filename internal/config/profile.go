package config

import (
	"net/http"
	"sort"
	"strings"

	"github.com/recipeblog/recipeq/internal/errors"
	"github.com/recipeblog/recipeq/pkg/query"
)

// Mode controls how a profile turns supplied fields into query pairs.
type Mode string

const (
	// ModeAll emits every supplied field in declaration order.
	ModeAll Mode = "all"
	// ModeFirstOf emits only the first supplied field.
	ModeFirstOf Mode = "first-of"
)

// FieldSpec declares one field a profile accepts
type FieldSpec struct {
	Name        string
	Repeated    bool
	Description string
}

// Profile describes one call site of the blog: which endpoint it hits and
// which form fields feed its query string.
type Profile struct {
	Name        string
	Description string
	Path        string
	Scheme      string // overrides the server scheme when set
	Method      string
	Mode        Mode
	Fields      []FieldSpec
}

// DefaultProfiles returns the blog's built-in call sites
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"search": {
			Name:        "search",
			Description: "Search blog posts by title and ingredients",
			Path:        "/blog",
			Method:      http.MethodGet,
			Mode:        ModeAll,
			Fields: []FieldSpec{
				{Name: "title", Description: "Recipe title"},
				{Name: "ingredient", Repeated: true, Description: "Ingredient search term"},
			},
		},
		"retrieve": {
			Name:        "retrieve",
			Description: "Retrieve blog posts by title, or by ingredients when no title is given",
			Path:        "/blog",
			Scheme:      "https",
			Method:      http.MethodGet,
			Mode:        ModeFirstOf,
			Fields: []FieldSpec{
				{Name: "title", Description: "Recipe title"},
				{Name: "ingredient", Repeated: true, Description: "Ingredient search term"},
			},
		},
		"cart": {
			Name:        "cart",
			Description: "Add a recipe's ingredients to the session's grocery list",
			Path:        "/grocerylist/update",
			Method:      http.MethodGet,
			Mode:        ModeAll,
			Fields: []FieldSpec{
				{Name: "id", Description: "Recipe id"},
			},
		},
	}
}

// ProfileNames returns the sorted profile names
func ProfileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the profile's path and field names
func (p Profile) Validate() error {
	if err := query.ValidateBasePath(p.Path); err != nil {
		return errors.FromQuery(err)
	}
	if !strings.HasPrefix(p.Path, "/") {
		return errors.New(errors.ErrorTypeValidation, "profile path must start with '/'").
			WithContext("path", p.Path)
	}
	switch p.Mode {
	case ModeAll, ModeFirstOf:
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown profile mode").
			WithContext("mode", string(p.Mode))
	}
	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		if err := query.ValidateFieldName(f.Name); err != nil {
			return errors.FromQuery(err)
		}
		if seen[f.Name] {
			return errors.New(errors.ErrorTypeValidation, "duplicate field in profile").
				WithContext("field", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// FieldNames returns the declared field names in order
func (p Profile) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// Candidates turns submitted values into the ordered field candidates for
// the query builder. Unknown field names and multiple values for a
// non-repeated field are rejected here so the builder stays total.
func (p Profile) Candidates(values map[string][]string) ([]query.FieldCandidate, error) {
	declared := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		declared[f.Name] = true
	}
	for name := range values {
		if !declared[name] {
			return nil, errors.New(errors.ErrorTypeValidation, "field not accepted by profile").
				WithContext("field", name).
				WithContext("profile", p.Name).
				WithContext("accepted", p.FieldNames())
		}
	}

	var candidates []query.FieldCandidate
	for _, f := range p.Fields {
		c := query.Field(f.Name, values[f.Name]...)
		if !f.Repeated && suppliedCount(c) > 1 {
			return nil, errors.New(errors.ErrorTypeValidation, "field accepts a single value").
				WithContext("field", f.Name).
				WithContext("profile", p.Name)
		}
		if p.Mode == ModeFirstOf {
			if c.Supplied() {
				return []query.FieldCandidate{c}, nil
			}
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func suppliedCount(c query.FieldCandidate) int {
	return query.Pairs(query.Request{Fields: []query.FieldCandidate{c}})
}
