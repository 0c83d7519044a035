// Package text holds the substring extraction primitives every
// extractor is built on, plus small parsing helpers for page data.
//
// A missing delimiter is never an error here: the functions report
// ok=false (or an empty string) and leave the cursor where it was,
// so one absent field does not abort the parsing of a whole page.
package text

import (
	"iter"
	"strings"
)

// Extract returns the text between the first begin at or after pos
// and the next end after it, together with the offset just past end.
// If either delimiter is missing, or pos is outside txt, it returns
// ("", pos, false).
func Extract(txt, begin, end string, pos int) (string, int, bool) {
	first, last, ok := locate(txt, begin, end, pos)
	if !ok {
		return "", pos, false
	}
	return txt[first:last], last + len(end), true
}

// ExtractAll is like Extract but the returned span includes
// both delimiters.
func ExtractAll(txt, begin, end string, pos int) (string, int, bool) {
	first, last, ok := locate(txt, begin, end, pos)
	if !ok {
		return "", pos, false
	}
	start := first - len(begin)
	stop := last + len(end)
	return txt[start:stop], stop, true
}

// ExtractIter yields every begin...end match from pos onwards, in
// document order.
func ExtractIter(txt, begin, end string, pos int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if begin == "" && end == "" {
			return
		}
		for {
			value, next, ok := Extract(txt, begin, end, pos)
			if !ok || next <= pos {
				return
			}
			pos = next
			if !yield(value) {
				return
			}
		}
	}
}

// ExtractFrom returns a function that extracts consecutive fields
// from txt, keeping the cursor between calls. A missing field
// yields "" and does not move the cursor.
func ExtractFrom(txt string, pos int) func(begin, end string) string {
	return NewCursor(txt, pos).Extract
}

// Extr is Extract without the cursor: the field or "".
func Extr(txt, begin, end string) string {
	value, _, _ := Extract(txt, begin, end, 0)
	return value
}

// Rextract searches backwards for the last begin before pos, then
// forwards for end. The returned offset is the start of begin.
// A negative pos searches the whole text.
func Rextract(txt, begin, end string, pos int) (string, int, bool) {
	limit := pos
	if limit < 0 || limit > len(txt) {
		limit = len(txt)
	}
	first := strings.LastIndex(txt[:limit], begin)
	if first < 0 {
		return "", pos, false
	}
	start := first + len(begin)
	last := strings.Index(txt[start:], end)
	if last < 0 {
		return "", pos, false
	}
	return txt[start : start+last], first, true
}

// Rule is one field of ExtractRules. An empty Key advances the
// cursor without storing anything.
type Rule struct {
	Key   string
	Begin string
	End   string
}

// ExtractRules applies rules left to right, storing each match in
// values under its key. Missing fields are stored as "".
func ExtractRules(txt string, rules []Rule, pos int, values map[string]any) (map[string]any, int) {
	if values == nil {
		values = make(map[string]any, len(rules))
	}
	for _, rule := range rules {
		value, next, _ := Extract(txt, rule.Begin, rule.End, pos)
		pos = next
		if rule.Key != "" {
			values[rule.Key] = value
		}
	}
	return values, pos
}

func locate(txt, begin, end string, pos int) (int, int, bool) {
	if pos < 0 || pos > len(txt) {
		return 0, 0, false
	}
	idx := strings.Index(txt[pos:], begin)
	if idx < 0 {
		return 0, 0, false
	}
	first := pos + idx + len(begin)
	idx = strings.Index(txt[first:], end)
	if idx < 0 {
		return 0, 0, false
	}
	return first, first + idx, true
}
