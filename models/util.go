package models

import "strings"

// SplitTags interprets a tag string as a comma-separated list.
// Segments are trimmed and empty segments are discarded.
// Example: SplitTags(" web, ,prod ") -> ["web", "prod"]
func SplitTags(tags string) []string {
	out := []string{}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
