package query

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies request validation failures.
type Kind string

const (
	KindInvalidBasePath    Kind = "invalid_base_path"
	KindMalformedFieldName Kind = "malformed_field_name"
)

// Error is returned by Validate and NewRequest.
type Error struct {
	Kind  Kind
	Field string // offending field name, empty for base path errors
	Value string
	msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %q", e.msg, e.Field)
	}
	return fmt.Sprintf("%s: %q", e.msg, e.Value)
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidBasePath    = &Error{Kind: KindInvalidBasePath, msg: "invalid base path"}
	ErrMalformedFieldName = &Error{Kind: KindMalformedFieldName, msg: "malformed field name"}
)

// ValidateBasePath rejects an empty base path or one that already carries a query.
func ValidateBasePath(basePath string) error {
	switch {
	case basePath == "":
		return &Error{Kind: KindInvalidBasePath, msg: "base path is empty"}
	case strings.Contains(basePath, "?"):
		return &Error{Kind: KindInvalidBasePath, Value: basePath, msg: "base path already contains a query"}
	}
	return nil
}

// ValidateFieldName rejects names that cannot be encoded as a query key:
// blank names, invalid UTF-8 and ASCII control characters.
func ValidateFieldName(name string) error {
	if blank(name) {
		return &Error{Kind: KindMalformedFieldName, Value: name, msg: "field name is empty"}
	}
	if !utf8.ValidString(name) {
		return &Error{Kind: KindMalformedFieldName, Field: name, msg: "field name is not valid UTF-8"}
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return &Error{Kind: KindMalformedFieldName, Field: name, msg: "field name contains a control character"}
		}
	}
	return nil
}
