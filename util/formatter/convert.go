package formatter

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gdl/models"
	"gdl/text"

	"github.com/bytedance/sonic"
)

var conversions = map[string]func(any) any{
	"l": func(v any) any { return strings.ToLower(toString(v)) },
	"u": func(v any) any { return strings.ToUpper(toString(v)) },
	"c": func(v any) any { return capitalize(toString(v)) },
	"C": func(v any) any { return capwords(toString(v)) },
	"t": func(v any) any { return strings.TrimSpace(toString(v)) },
	"s": func(v any) any { return toString(v) },
	"r": repr,
	"j": func(v any) any {
		out, err := sonic.ConfigStd.MarshalToString(v)
		if err != nil {
			return toString(v)
		}
		return out
	},
	"U": func(v any) any { return text.Unescape(toString(v)) },
	"S": func(v any) any { return toPlainString(v) },
	"d": func(v any) any {
		if t, ok := v.(time.Time); ok {
			return t
		}
		if t, ok := text.ParseTimestamp(toString(v)); ok {
			return t
		}
		return v
	},
	"T": func(v any) any {
		if t, ok := v.(time.Time); ok {
			return t.Unix()
		}
		return v
	},
}

// toString mirrors how the values print in format strings:
// nil as "None", booleans as "True"/"False", lists as "['a', 'b']".
func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case float64:
		return pyFloat(v)
	case float32:
		return pyFloat(float64(v))
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case []string:
		items := make([]string, len(v))
		for i := range v {
			items[i] = repr(v[i]).(string)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []any:
		items := make([]string, len(v))
		for i := range v {
			items[i] = repr(v[i]).(string)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		return mapString(v)
	case models.Metadata:
		return mapString(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// toPlainString joins lists with ", " and renders nil as "".
func toPlainString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ", ")
	case []any:
		items := make([]string, len(v))
		for i := range v {
			items[i] = toPlainString(v[i])
		}
		return strings.Join(items, ", ")
	}
	return toString(value)
}

func repr(value any) any {
	if s, ok := value.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
	}
	return toString(value)
}

func mapString(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	items := make([]string, len(keys))
	for i, key := range keys {
		items[i] = repr(key).(string) + ": " + repr(m[key]).(string)
	}
	return "{" + strings.Join(items, ", ") + "}"
}

func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func capwords(s string) string {
	words := strings.Fields(s)
	for i := range words {
		words[i] = capitalize(words[i])
	}
	return strings.Join(words, " ")
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	}
	if n, ok := asInt64(value); ok {
		return n != 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return true
}
