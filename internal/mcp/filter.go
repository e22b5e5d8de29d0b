package mcp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmespath/go-jmespath"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// charsPerLine converts the context_lines argument into characters
const charsPerLine = 80

// FilterResult is a reduced response body plus size accounting for _meta
type FilterResult struct {
	Content string
	Meta    map[string]any
}

// estimateTokens approximates token count using chars/4 heuristic
func estimateTokens(data string) int {
	return len(data) / 4
}

func sizeMeta(filter map[string]any, returned, source string) map[string]any {
	return map[string]any{
		"filter": filter,
		"tokens": map[string]any{
			"returned": estimateTokens(returned),
			"source":   estimateTokens(source),
		},
		"bytes": map[string]any{
			"returned": len(returned),
			"source":   len(source),
		},
	}
}

// filterRegex returns every match of pattern in body with surrounding
// context; overlapping windows are merged.
func filterRegex(logger zerolog.Logger, body, pattern string, contextLines int) (*FilterResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	contextChars := max(contextLines*charsPerLine, 100)

	matches := re.FindAllStringIndex(body, -1)
	logger.Debug().
		Int("input_bytes", len(body)).
		Str("pattern", pattern).
		Int("context_chars", contextChars).
		Int("total_matches", len(matches)).
		Msg("regex filter")

	if len(matches) == 0 {
		return &FilterResult{
			Meta: sizeMeta(map[string]any{
				"type":          "regex",
				"pattern":       pattern,
				"total_matches": 0,
			}, "", body),
		}, nil
	}

	type window struct{ start, end int }
	var merged []window
	for _, m := range matches {
		w := window{start: max(0, m[0]-contextChars), end: min(len(body), m[1]+contextChars)}
		if n := len(merged); n > 0 && w.start <= merged[n-1].end {
			merged[n-1].end = max(merged[n-1].end, w.end)
			continue
		}
		merged = append(merged, w)
	}

	blocks := make([]string, len(merged))
	for i, w := range merged {
		excerpt := body[w.start:w.end]
		if w.start > 0 {
			excerpt = "..." + excerpt
		}
		if w.end < len(body) {
			excerpt += "..."
		}
		blocks[i] = fmt.Sprintf("=== Context Window %d (bytes %d-%d) ===\n%s", i+1, w.start, w.end, excerpt)
	}
	content := strings.Join(blocks, "\n\n")

	return &FilterResult{
		Content: content,
		Meta: sizeMeta(map[string]any{
			"type":           "regex",
			"pattern":        pattern,
			"total_matches":  len(matches),
			"merged_windows": len(merged),
		}, content, body),
	}, nil
}

// filterJMESPath filters a JSON body with a JMESPath expression
func filterJMESPath(logger zerolog.Logger, body, expression string) (*FilterResult, error) {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, fmt.Errorf("invalid jmespath expression: %w", err)
	}

	filtered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filtered result: %w", err)
	}

	resultCount := 0
	if arr, ok := result.([]any); ok {
		resultCount = len(arr)
	} else if result != nil {
		resultCount = 1
	}

	logger.Debug().
		Str("expression", expression).
		Int("result_count", resultCount).
		Msg("jmespath filter")

	content := string(filtered)
	return &FilterResult{
		Content: content,
		Meta: sizeMeta(map[string]any{
			"type":         "jmespath",
			"expression":   expression,
			"result_count": resultCount,
		}, content, body),
	}, nil
}
