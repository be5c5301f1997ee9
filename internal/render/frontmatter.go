package render

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitFrontMatter separates a leading YAML front matter block from a
// Markdown document. ok is false when there is no well-formed block, in
// which case body is text unchanged.
func SplitFrontMatter(text string) (map[string]any, string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return nil, text, false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, text, false
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &meta); err != nil {
		return nil, text, false
	}
	return meta, strings.Join(lines[end+1:], "\n"), true
}
