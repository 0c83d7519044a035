// Package formatter renders "{field!conversion:spec}" format strings
// against message metadata.
//
// Fields may index into nested values ("{user[name]}", "{tags[0]}"),
// list alternatives ("{title|id}", the first non-empty wins) and apply
// a conversion (l u c C t s r j U S d T) and a format spec. Besides the
// usual fill/align/width/precision specs, four extra specs exist:
//
//	?<before>/<after>/    wrap non-empty values, drop empty ones
//	L<max>/<repl>/        replace values longer than max characters
//	J<sep>/               join list elements with sep
//	R<old>/<new>/         replace every old with new
package formatter

import (
	"strings"
	"sync"

	"gdl/util"
)

type Formatter struct {
	source   string
	segments []segment
	Default  any
}

type segment struct {
	literal string
	field   *field
}

type field struct {
	alternatives []accessor
	format       func(any) string
}

var cache sync.Map

type cacheKey struct {
	format string
	def    string
}

// Parse compiles format. Compiled formatters are cached per format
// string and default.
func Parse(format string, def string) (*Formatter, error) {
	key := cacheKey{format, def}
	if f, ok := cache.Load(key); ok {
		return f.(*Formatter), nil
	}
	f, err := compile(format)
	if err != nil {
		return nil, err
	}
	if def != "" {
		f.Default = def
	}
	cache.Store(key, f)
	return f, nil
}

// MustParse is Parse for format strings known at compile time.
func MustParse(format string) *Formatter {
	f, err := Parse(format, "")
	if err != nil {
		panic(err)
	}
	return f
}

// Format applies kwdict to the format string.
func (f *Formatter) Format(kwdict map[string]any) string {
	return f.FormatDefault(kwdict, f.Default)
}

// FormatDefault is Format with def in place of missing fields.
func (f *Formatter) FormatDefault(kwdict map[string]any, def any) string {
	var sb strings.Builder
	for _, seg := range f.segments {
		if seg.field == nil {
			sb.WriteString(seg.literal)
			continue
		}
		sb.WriteString(seg.field.apply(kwdict, def))
	}
	return sb.String()
}

func (f *Formatter) String() string {
	return f.source
}

// Format is a convenience wrapper for one-off format strings.
func Format(format string, kwdict map[string]any) (string, error) {
	f, err := Parse(format, "")
	if err != nil {
		return "", err
	}
	return f.Format(kwdict), nil
}

func (fd *field) apply(kwdict map[string]any, def any) string {
	var value any
	found := false
	if len(fd.alternatives) == 1 {
		value, found = fd.alternatives[0].lookup(kwdict)
	} else {
		for _, acc := range fd.alternatives {
			v, ok := acc.lookup(kwdict)
			if ok && truthy(v) {
				value, found = v, true
				break
			}
		}
	}
	if !found || value == nil {
		value = def
	}
	return fd.format(value)
}

func compile(format string) (*Formatter, error) {
	f := &Formatter{source: format}
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			f.segments = append(f.segments, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '{':
			if i+1 < len(format) && format[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := matchingBrace(format, i)
			if end < 0 {
				return nil, util.NewInputError("invalid format string %q: unclosed '{'", format)
			}
			fd, err := parseField(format[i+1 : end])
			if err != nil {
				return nil, util.NewInputError("invalid format string %q: %v", format, err)
			}
			flush()
			f.segments = append(f.segments, segment{field: fd})
			i = end
		case '}':
			if i+1 < len(format) && format[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, util.NewInputError("invalid format string %q: single '}'", format)
		default:
			literal.WriteByte(c)
		}
	}
	flush()
	return f, nil
}

// matchingBrace finds the '}' closing the field opened at start.
// Brackets in the field name may contain braces.
func matchingBrace(format string, start int) int {
	depth := 0
	inBracket := false
	for i := start + 1; i < len(format); i++ {
		switch format[i] {
		case '[':
			inBracket = true
		case ']':
			inBracket = false
		case '{':
			if !inBracket {
				depth++
			}
		case '}':
			if inBracket {
				continue
			}
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

func parseField(spec string) (*field, error) {
	name, formatSpec, conversion := splitField(spec)
	if name == "" {
		return nil, errEmptyField
	}
	format, err := buildFormat(formatSpec, conversion)
	if err != nil {
		return nil, err
	}
	fd := &field{format: format}
	for _, alt := range strings.Split(name, "|") {
		acc, err := parseAccessor(alt)
		if err != nil {
			return nil, err
		}
		fd.alternatives = append(fd.alternatives, acc)
	}
	return fd, nil
}

// splitField separates "name!c:spec" outside of brackets.
func splitField(spec string) (name, formatSpec, conversion string) {
	inBracket := false
	nameEnd := len(spec)
scan:
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '[':
			inBracket = true
		case ']':
			inBracket = false
		case '!', ':':
			if !inBracket {
				nameEnd = i
				break scan
			}
		}
	}
	name = spec[:nameEnd]
	rest := spec[nameEnd:]
	if strings.HasPrefix(rest, "!") && len(rest) >= 2 {
		conversion = rest[1:2]
		rest = rest[2:]
	}
	if strings.HasPrefix(rest, ":") {
		formatSpec = rest[1:]
	}
	return name, formatSpec, conversion
}
