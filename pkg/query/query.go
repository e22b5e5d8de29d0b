// Package query builds URLs from a base path and a set of optional named fields.
//
// A field may carry zero, one or many values. Values that are empty after
// trimming whitespace are treated as "not supplied" and contribute nothing,
// so a request where nothing was filled in yields the base path unchanged.
//
//	u := query.Build(query.Request{
//		BasePath: "/blog",
//		Fields: []query.FieldCandidate{
//			query.Field("title", "Pasta Night"),
//			query.Field("ingredient", "egg", "flour"),
//		},
//	})
//	// /blog?title=Pasta%20Night&ingredient=egg&ingredient=flour
package query

import (
	"strings"
)

// FieldCandidate is one logical query parameter.
type FieldCandidate struct {
	Name   string
	Values []string
}

// Field is shorthand for a FieldCandidate literal.
func Field(name string, values ...string) FieldCandidate {
	return FieldCandidate{Name: name, Values: values}
}

// Supplied reports whether at least one value is non-empty after trimming.
func (f FieldCandidate) Supplied() bool {
	for _, v := range f.Values {
		if !blank(v) {
			return true
		}
	}
	return false
}

// Request is the input to Build. BasePath must be non-empty and contain no '?'.
type Request struct {
	BasePath string
	Fields   []FieldCandidate
}

// NewRequest validates basePath and fields and returns the assembled Request.
func NewRequest(basePath string, fields ...FieldCandidate) (Request, error) {
	req := Request{BasePath: basePath, Fields: fields}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the invariants Build relies on. It is meant to be called
// once at the boundary where field values are ingested.
func (r Request) Validate() error {
	if err := ValidateBasePath(r.BasePath); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if err := ValidateFieldName(f.Name); err != nil {
			return err
		}
	}
	return nil
}

// Build appends every supplied value of req.Fields to req.BasePath as a
// percent-encoded name=value pair. The first pair is introduced with '?',
// the rest with '&'. Build never fails; call Validate first.
func Build(req Request) string {
	var sb strings.Builder
	sb.WriteString(req.BasePath)

	first := true
	for _, f := range req.Fields {
		name := Escape(f.Name)
		for _, v := range f.Values {
			if blank(v) {
				continue
			}
			if first {
				sb.WriteByte('?')
				first = false
			} else {
				sb.WriteByte('&')
			}
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(Escape(v))
		}
	}

	return sb.String()
}

// Pairs returns the number of name=value pairs Build would emit for req.
func Pairs(req Request) int {
	n := 0
	for _, f := range req.Fields {
		for _, v := range f.Values {
			if !blank(v) {
				n++
			}
		}
	}
	return n
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
