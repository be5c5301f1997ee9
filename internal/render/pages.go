package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"stockhook/internal/hookstore"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// IndexRow is one line of the record index.
type IndexRow struct {
	ID    string
	Title string
	Date  string
	Size  string
}

// IndexPage is the data of the record index.
type IndexPage struct {
	Rows  []IndexRow
	Zone  string
	Count int
}

// Chip is one key/value badge on the view page.
type Chip struct {
	Key   string
	Value string
}

// ViewPage is the data of a single record view.
type ViewPage struct {
	ID      string
	Title   string
	Chips   []Chip
	Note    string
	Content template.HTML
}

// Renderer builds the HTML pages. Dates are shown in its location.
type Renderer struct {
	loc *time.Location
}

// NewRenderer returns a Renderer that formats dates in loc, or UTC when loc
// is nil.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc}
}

// Location returns the display time zone.
func (r *Renderer) Location() *time.Location {
	return r.loc
}

// IndexRows converts record summaries into index rows.
func (r *Renderer) IndexRows(summaries []hookstore.RecordSummary) []IndexRow {
	rows := make([]IndexRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, IndexRow{
			ID:    s.ID,
			Title: Title(s.Decoded),
			Date:  Date(s.ReceivedAt, r.loc),
			Size:  Bytes(s.BodySize),
		})
	}
	return rows
}

// RenderIndex writes the record index.
func (r *Renderer) RenderIndex(w io.Writer, rows []IndexRow) error {
	return execute(w, "index", IndexPage{Rows: rows, Zone: r.loc.String(), Count: len(rows)})
}

// RenderView writes a single record page.
func (r *Renderer) RenderView(w io.Writer, page ViewPage) error {
	if strings.TrimSpace(page.Title) == "" {
		page.Title = Untitled
	}
	return execute(w, "view", page)
}

// ViewBody selects what the view page shows for text. When the text came
// from a JSON payload that had no recognised text field, the JSON itself is
// shown as a code block.
func ViewBody(payload any, text string) string {
	if strings.TrimSpace(text) != "" {
		if _, body, ok := SplitFrontMatter(text); ok {
			return body
		}
		return text
	}
	switch payload.(type) {
	case map[string]any, []any:
		return "```json\n" + prettyJSON(payload) + "\n```"
	}
	return ""
}

// Record builds the view page of a record from decoded text. full reports
// whether text holds the entire body or only the stored preview.
func (r *Renderer) Record(record hookstore.Record, payload any, full bool) (ViewPage, error) {
	text, field := ExtractText(payload)
	title, titleSource := ExtractTitle(payload, text)

	chips := []Chip{
		{Key: "Received", Value: DateTime(record.ReceivedAt, r.loc)},
		{Key: "Type", Value: record.ContentType},
		{Key: "Size", Value: Bytes(record.BodySize)},
		{Key: "SHA-256", Value: ShortHash(record.BodySHA256)},
		{Key: "Title from", Value: titleSource},
	}
	if field != "" {
		chips = append(chips, Chip{Key: "Text from", Value: field})
	}

	page := ViewPage{ID: record.ID, Title: title, Chips: chips}
	if !full {
		page.Note = fmt.Sprintf("Showing the stored preview of a %s body. Download the raw body for the rest.", Bytes(record.BodySize))
	}

	source := ViewBody(payload, text)
	if source == "" {
		if _, binary := record.Decoded.(hookstore.DecodedBase64); binary {
			page.Note = "Binary body. Download the raw body to inspect it."
		}
		return page, nil
	}
	content, err := Markdown(source)
	if err != nil {
		return page, err
	}
	page.Content = content
	return page, nil
}

func execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
