package render

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"stockhook/internal/hookstore"
)

// Untitled is shown when no title can be derived from a payload.
const Untitled = "Untitled"

const maxDerivedTitleRunes = 120

var markdownHeading = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*$`)

type fieldPath struct {
	path  []string
	label string
}

// Upstreams often repeat the body under several keys; the first non-empty
// candidate wins.
var textFields = []fieldPath{
	{[]string{"content"}, "content"},
	{[]string{"message"}, "message"},
	{[]string{"body"}, "body"},
	{[]string{"text"}, "text"},
	{[]string{"markdown", "text"}, "markdown.text"},
	{[]string{"markdown", "content"}, "markdown.content"},
	{[]string{"markdown"}, "markdown"},
	{[]string{"data", "text"}, "data.text"},
	{[]string{"data", "content"}, "data.content"},
}

var titleFields = []fieldPath{
	{[]string{"title"}, "title"},
	{[]string{"subject"}, "subject"},
	{[]string{"markdown", "title"}, "markdown.title"},
	{[]string{"data", "title"}, "data.title"},
}

// Payload converts a stored preview rendition into a value the extractors
// understand: decoded JSON, a string, or nil for binary or missing data.
func Payload(d hookstore.Decoded) any {
	switch v := d.(type) {
	case hookstore.DecodedJSON:
		var out any
		if err := json.Unmarshal(v.Value, &out); err != nil {
			return nil
		}
		return out
	case hookstore.DecodedText:
		return v.Text
	default:
		return nil
	}
}

// ExtractText picks the main body text of a payload and names the field it
// came from. Plain string payloads are returned whole as "raw".
func ExtractText(payload any) (string, string) {
	if obj, ok := payload.(map[string]any); ok {
		for _, candidate := range textFields {
			if s, ok := lookup(obj, candidate.path).(string); ok && strings.TrimSpace(s) != "" {
				return s, candidate.label
			}
		}
	}
	if s, ok := payload.(string); ok && strings.TrimSpace(s) != "" {
		return s, "raw"
	}
	return "", ""
}

// ExtractTitle derives a display title from explicit title fields, YAML
// front matter, the first Markdown heading, or the first non-empty line of
// body, in that order. The second result names the source.
func ExtractTitle(payload any, body string) (string, string) {
	if obj, ok := payload.(map[string]any); ok {
		for _, candidate := range titleFields {
			if s, ok := lookup(obj, candidate.path).(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), candidate.label
			}
		}
	}

	if strings.TrimSpace(body) == "" {
		return Untitled, "derived"
	}
	meta, rest, ok := SplitFrontMatter(body)
	if ok {
		if s, isString := meta["title"].(string); isString && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), "front_matter"
		}
		body = rest
	}
	if title := firstHeading(body); title != "" {
		return title, "derived"
	}
	if line := firstNonEmptyLine(body); line != "" {
		return truncateRunes(line, maxDerivedTitleRunes), "derived"
	}
	return Untitled, "derived"
}

// Title derives the display title of a stored preview.
func Title(d hookstore.Decoded) string {
	payload := Payload(d)
	text, _ := ExtractText(payload)
	title, _ := ExtractTitle(payload, text)
	return title
}

func lookup(value any, path []string) any {
	cur := value
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		next, ok := obj[key]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func firstHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if m := markdownHeading.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func prettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
