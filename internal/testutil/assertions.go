package testutil

import (
	"net/http"
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: got error %v, expected none", msg, err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got none", msg)
	}
}

// AssertErrorContains fails the test if err is nil or doesn't contain the expected substring
func AssertErrorContains(t *testing.T, err error, expected string, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got none", msg, expected)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Fatalf("%s: expected error containing %q, got %q", msg, expected, err.Error())
	}
}

// AssertEqual fails the test if got != expected
func AssertEqual(t *testing.T, got, expected interface{}, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %v, expected %v", msg, got, expected)
	}
}

// AssertStringEqual fails the test if got != expected (string-specific for cleaner output)
func AssertStringEqual(t *testing.T, got, expected string, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %q, expected %q", msg, got, expected)
	}
}

// AssertStringContains fails the test if str doesn't contain substring
func AssertStringContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if !strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to contain %q", msg, str, substring)
	}
}

// AssertSliceEqual fails the test if slices don't have the same elements in the same order
func AssertSliceEqual(t *testing.T, got, expected []string, msg string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: got %d elements, expected %d\ngot: %v\nexpected: %v", msg, len(got), len(expected), got, expected)
	}

	for i, g := range got {
		if g != expected[i] {
			t.Fatalf("%s: element %d: got %q, expected %q\ngot: %v\nexpected: %v", msg, i, g, expected[i], got, expected)
		}
	}
}

// AssertHeaderSet fails the test if the request doesn't have the expected header value
func AssertHeaderSet(t *testing.T, req *http.Request, header, expectedValue string, msg string) {
	t.Helper()
	actualValue := req.Header.Get(header)
	if actualValue != expectedValue {
		t.Fatalf("%s: header %q: got %q, expected %q", msg, header, actualValue, expectedValue)
	}
}

// AssertHeaderNotSet fails the test if the request has the specified header
func AssertHeaderNotSet(t *testing.T, req *http.Request, header string, msg string) {
	t.Helper()
	if req.Header.Get(header) != "" {
		t.Fatalf("%s: expected header %q to not be set, but got %q", msg, header, req.Header.Get(header))
	}
}

// AssertMethodEqual fails the test if the request method doesn't match expected
func AssertMethodEqual(t *testing.T, req *http.Request, expectedMethod string, msg string) {
	t.Helper()
	if req.Method != expectedMethod {
		t.Fatalf("%s: got method %q, expected %q", msg, req.Method, expectedMethod)
	}
}

// AssertRawQuery fails the test if the request's raw query string doesn't match expected
func AssertRawQuery(t *testing.T, req *http.Request, expected string, msg string) {
	t.Helper()
	if req.URL.RawQuery != expected {
		t.Fatalf("%s: got raw query %q, expected %q", msg, req.URL.RawQuery, expected)
	}
}

// AssertCookie fails the test if the request doesn't carry cookie name with value
func AssertCookie(t *testing.T, req *http.Request, name, expectedValue string, msg string) {
	t.Helper()
	c, err := req.Cookie(name)
	if err != nil {
		t.Fatalf("%s: cookie %q not sent", msg, name)
	}
	if c.Value != expectedValue {
		t.Fatalf("%s: cookie %q: got %q, expected %q", msg, name, c.Value, expectedValue)
	}
}
