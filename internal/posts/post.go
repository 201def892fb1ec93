// Package posts discovers Markdown sources and turns them into Posts ready
// for templating.
package posts

import (
	"html/template"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical date format for posts.
const DateLayout = "2006-01-02"

// Post is a single blog entry, rebuilt from its source on every run.
type Post struct {
	Slug        string
	SourceHash  string
	Title       string
	Date        string
	Description string
	Tags        []string
	Content     template.HTML
	SourcePath  string
}

// Key returns the slug.
func (p *Post) Key() string { return p.Slug }

// Fingerprint returns the hash of the raw source bytes.
func (p *Post) Fingerprint() string { return p.SourceHash }

// Year is the first four characters of the date, used for archive grouping.
func (p *Post) Year() string {
	n := 0
	for i := range p.Date {
		if n == 4 {
			return p.Date[:i]
		}
		n++
	}
	return p.Date
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeDate converts a raw front-matter date into the string used on pages.
// A time.Time becomes YYYY-MM-DD in UTC, a string is returned unchanged, and
// anything else falls back to now.
func NormalizeDate(v any, now time.Time) string {
	switch d := v.(type) {
	case time.Time:
		return d.UTC().Format(DateLayout)
	case *time.Time:
		if d != nil {
			return d.UTC().Format(DateLayout)
		}
	case string:
		return d
	}
	return now.UTC().Format(DateLayout)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Sort orders posts newest first. Parseable dates sort before unparseable
// ones, unparseable dates compare lexically descending and ties fall back to
// slug ascending.
func Sort(list []*Post) {
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i], list[j])
	})
}

func less(a, b *Post) bool {
	ta, okA := parseDate(a.Date)
	tb, okB := parseDate(b.Date)
	switch {
	case okA && okB:
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
	case okA != okB:
		return okA
	default:
		if a.Date != b.Date {
			return a.Date > b.Date
		}
	}
	return a.Slug < b.Slug
}

// YearGroup is a set of posts sharing a publication year.
type YearGroup struct {
	Year  string
	Posts []*Post
}

// GroupByYear groups posts by Year. Four-digit years come first, descending;
// other groups follow in order of first appearance. Posts keep the input
// order within each group.
func GroupByYear(list []*Post) []YearGroup {
	index := map[string]int{}
	groups := make([]YearGroup, 0)
	for _, p := range list {
		y := p.Year()
		i, ok := index[y]
		if !ok {
			i = len(groups)
			index[y] = i
			groups = append(groups, YearGroup{Year: y})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		yi, yj := isYear(groups[i].Year), isYear(groups[j].Year)
		if yi != yj {
			return yi
		}
		return yi && groups[i].Year > groups[j].Year
	})
	return groups
}
