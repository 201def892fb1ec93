package frontmatter

import (
	"fmt"
	"strings"
)

// Metadata holds the recognised front-matter keys of a post.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	// Date is whatever the front-matter held: time.Time for a YAML date
	// literal, a string, or nil when absent.
	Date any
}

// Parse splits content and decodes its metadata.
//
// Parse never loses the body: on a malformed block it returns empty Metadata,
// the best available body and the error so the caller can report it.
func Parse(content []byte) (Metadata, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Metadata{}, body, err
	}
	if !had {
		return Metadata{}, body, nil
	}

	fields, err := ParseYAML(fm)
	if err != nil {
		return Metadata{}, body, fmt.Errorf("parse yaml frontmatter: %w", err)
	}
	return FromFields(fields), body, nil
}

// FromFields extracts Metadata from decoded YAML fields.
func FromFields(fields map[string]any) Metadata {
	return Metadata{
		Title:       scalarString(fields["title"]),
		Description: scalarString(fields["description"]),
		Tags:        stringList(fields["tags"]),
		Date:        fields["date"],
	}
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(scalarString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}
