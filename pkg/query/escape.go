package query

import (
	"net/url"
	"strings"
)

// Escape percent-encodes s for use as a query key or value. Spaces become
// %20 rather than '+', so the output is also safe in contexts that do not
// treat '+' as a space.
func Escape(s string) string {
	// QueryEscape encodes a literal '+' as %2B, so every '+' left in its
	// output stands for a space.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Pair is a decoded name=value pair.
type Pair struct {
	Name  string
	Value string
}

// Decode splits the query string of rawURL back into ordered pairs. It is the
// inverse of Build for any URL Build produced.
func Decode(rawURL string) ([]Pair, error) {
	_, rawQuery, found := strings.Cut(rawURL, "?")
	if !found || rawQuery == "" {
		return nil, nil
	}

	var pairs []Pair
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	return pairs, nil
}
