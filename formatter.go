package passage

import "strings"

// FormatResults formats results for display or LLM context.
// Results are separated by blank lines.
func FormatResults(results []*Result) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		header := r.Title
		if header == "" {
			header = r.URL
		}
		parts = append(parts, "## "+header+"\n"+r.URL+"\n"+r.Snippet)
	}

	return strings.Join(parts, "\n\n")
}
