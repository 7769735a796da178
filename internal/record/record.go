package record

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Placeholder is the positional marker filled at execution time.
const Placeholder = "{}"

// Record is a stored command.
type Record struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	UsageCount int64  `json:"usage_count"`
}

// HasPlaceholders reports whether the text still contains positional markers.
func (r Record) HasPlaceholders() bool {
	return strings.Contains(r.Text, Placeholder)
}

// Normalize returns the canonical form of command text: NFC normalized and
// trimmed of surrounding whitespace. Every store applies it before text is
// used as a uniqueness key.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Filter restricts a store query.
type Filter struct {
	// Pattern is a regular expression matched against the text. Patterns
	// that do not compile are matched as literal substrings. Empty matches all.
	Pattern string

	// UsedOnly keeps only records with a usage count above zero.
	UsedOnly bool
}

// Expression returns the regular expression the filter pattern stands for.
// Returns "" when the filter matches all text.
func (f Filter) Expression() string {
	if f.Pattern == "" {
		return ""
	}
	if _, err := regexp.Compile(f.Pattern); err != nil {
		return regexp.QuoteMeta(f.Pattern)
	}
	return f.Pattern
}

// Matcher compiles the filter into a predicate over records.
func (f Filter) Matcher() func(Record) bool {
	expr := f.Expression()
	var re *regexp.Regexp
	if expr != "" {
		re = regexp.MustCompile(expr)
	}
	return func(r Record) bool {
		if f.UsedOnly && r.UsageCount <= 0 {
			return false
		}
		return re == nil || re.MatchString(r.Text)
	}
}

// Apply returns the records accepted by the filter, preserving order.
func (f Filter) Apply(records []Record) []Record {
	match := f.Matcher()
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}
