package formatter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errBadSpec = errors.New("invalid format spec")

func buildFormat(spec, conversion string) (func(any) string, error) {
	format, err := buildSpec(spec)
	if err != nil {
		return nil, err
	}
	if conversion == "" {
		return format, nil
	}
	convert, ok := conversions[conversion]
	if !ok {
		return nil, fmt.Errorf("unknown conversion %q", conversion)
	}
	return func(value any) string {
		return format(convert(value))
	}, nil
}

func buildSpec(spec string) (func(any) string, error) {
	if spec == "" {
		return toString, nil
	}
	switch spec[0] {
	case '?':
		return parseOptional(spec)
	case 'L':
		return parseMaxLen(spec)
	case 'J':
		return parseJoin(spec)
	case 'R':
		return parseReplace(spec)
	}
	return parseStandard(spec)
}

// splitSpec splits "<x>a/b/rest" into a, b and rest.
func splitSpec(spec string) (string, string, string, error) {
	parts := strings.SplitN(spec[1:], "/", 3)
	if len(parts) != 3 {
		return "", "", "", errBadSpec
	}
	return parts[0], parts[1], parts[2], nil
}

func parseOptional(spec string) (func(any) string, error) {
	before, after, rest, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	format, err := buildSpec(rest)
	if err != nil {
		return nil, err
	}
	return func(value any) string {
		if !truthy(value) {
			return ""
		}
		return before + format(value) + after
	}, nil
}

func parseMaxLen(spec string) (func(any) string, error) {
	maxLen, replacement, rest, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	limit, err := strconv.Atoi(maxLen)
	if err != nil {
		return nil, errBadSpec
	}
	format, err := buildSpec(rest)
	if err != nil {
		return nil, err
	}
	return func(value any) string {
		out := format(value)
		if utf8.RuneCountInString(out) <= limit {
			return out
		}
		return replacement
	}, nil
}

func parseJoin(spec string) (func(any) string, error) {
	separator, rest, _ := strings.Cut(spec[1:], "/")
	format, err := buildSpec(rest)
	if err != nil {
		return nil, err
	}
	return func(value any) string {
		var items []string
		switch v := value.(type) {
		case string:
			for _, r := range v {
				items = append(items, string(r))
			}
		case []string:
			items = v
		case []any:
			for _, item := range v {
				items = append(items, toString(item))
			}
		default:
			return format(value)
		}
		return format(strings.Join(items, separator))
	}, nil
}

func parseReplace(spec string) (func(any) string, error) {
	old, replacement, rest, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	format, err := buildSpec(rest)
	if err != nil {
		return nil, err
	}
	return func(value any) string {
		return format(strings.ReplaceAll(toString(value), old, replacement))
	}, nil
}

var standardSpec = regexp.MustCompile(`^(?:(.)?([<>=^]))?([-+ ])?(#)?(0)?(\d+)?([,_])?(?:\.(\d+))?([bcdeEfFgGnosxX%])?$`)

type standard struct {
	fill      string
	align     byte
	sign      byte
	zero      bool
	width     int
	grouping  byte
	precision int
	verb      byte
}

func parseStandard(spec string) (func(any) string, error) {
	m := standardSpec.FindStringSubmatch(spec)
	if m == nil {
		return nil, errBadSpec
	}
	st := standard{fill: m[1], precision: -1}
	if m[2] != "" {
		st.align = m[2][0]
	}
	if m[3] != "" {
		st.sign = m[3][0]
	}
	st.zero = m[5] != ""
	if m[6] != "" {
		st.width, _ = strconv.Atoi(m[6])
	}
	if m[7] != "" {
		st.grouping = m[7][0]
	}
	if m[8] != "" {
		st.precision, _ = strconv.Atoi(m[8])
	}
	if m[9] != "" {
		st.verb = m[9][0]
	}
	return st.render, nil
}

func (st standard) render(value any) string {
	var body string
	numeric := false
	negative := false

	f, isFloat := value.(float64)
	n, isInt := asInt64(value)

	switch {
	case strings.IndexByte("bdoxXn", st.verb) >= 0 && st.verb != 0 && (isInt || isFloat):
		if !isInt {
			n = int64(f)
		}
		numeric, negative = true, n < 0
		body = formatInt(abs64(n), st.verb, st.grouping)
	case strings.IndexByte("eEfFgG%", st.verb) >= 0 && st.verb != 0 && (isInt || isFloat):
		if isInt {
			f = float64(n)
		}
		numeric, negative = true, f < 0
		body = formatFloat(math.Abs(f), st.verb, st.precision)
	case (st.verb == 0 || st.verb == 's') && isInt && !isBool(value):
		numeric, negative = st.verb == 0, n < 0
		if numeric {
			body = formatInt(abs64(n), 'd', st.grouping)
		} else {
			body = toString(value)
		}
	case st.verb == 0 && isFloat:
		numeric, negative = true, f < 0
		if st.precision >= 0 {
			body = strconv.FormatFloat(math.Abs(f), 'g', st.precision, 64)
		} else {
			body = pyFloat(math.Abs(f))
		}
	default:
		body = toString(value)
		if st.precision >= 0 && utf8.RuneCountInString(body) > st.precision {
			body = string([]rune(body)[:st.precision])
		}
	}

	sign := ""
	if numeric {
		switch {
		case negative:
			sign = "-"
		case st.sign == '+':
			sign = "+"
		case st.sign == ' ':
			sign = " "
		}
	}

	fill, align := st.fill, st.align
	if fill == "" {
		fill = " "
	}
	if st.zero && st.fill == "" {
		fill = "0"
		if align == 0 && numeric {
			align = '='
		}
	}
	if align == 0 {
		if numeric {
			align = '>'
		} else {
			align = '<'
		}
	}

	padding := st.width - utf8.RuneCountInString(sign+body)
	if padding <= 0 {
		return sign + body
	}
	switch align {
	case '<':
		return sign + body + strings.Repeat(fill, padding)
	case '^':
		left := padding / 2
		return strings.Repeat(fill, left) + sign + body + strings.Repeat(fill, padding-left)
	case '=':
		return sign + strings.Repeat(fill, padding) + body
	default:
		return strings.Repeat(fill, padding) + sign + body
	}
}

func formatInt(n int64, verb byte, grouping byte) string {
	var s string
	switch verb {
	case 'b':
		s = strconv.FormatInt(n, 2)
	case 'o':
		s = strconv.FormatInt(n, 8)
	case 'x':
		s = strconv.FormatInt(n, 16)
	case 'X':
		s = strings.ToUpper(strconv.FormatInt(n, 16))
	default:
		s = strconv.FormatInt(n, 10)
	}
	if grouping == 0 || len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(grouping)
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

func formatFloat(f float64, verb byte, precision int) string {
	if precision < 0 {
		precision = 6
	}
	switch verb {
	case '%':
		return strconv.FormatFloat(f*100, 'f', precision, 64) + "%"
	case 'F':
		verb = 'f'
	}
	return strconv.FormatFloat(f, verb, precision, 64)
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isBool(value any) bool {
	_, ok := value.(bool)
	return ok
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
