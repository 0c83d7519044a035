package formatter

import (
	"errors"
	"strconv"
	"strings"

	"gdl/models"
)

var errEmptyField = errors.New("empty field name")

type step struct {
	key     string
	index   int
	isIndex bool
	slice   bool
	start   *int
	stop    *int
	stride  *int
}

type accessor struct {
	key   string
	steps []step
}

// parseAccessor splits "user[name][0]" or "user.name" into
// its root key and the steps below it.
func parseAccessor(name string) (accessor, error) {
	name = strings.TrimSpace(name)
	end := strings.IndexAny(name, ".[")
	if end < 0 {
		return accessor{key: name}, nil
	}
	acc := accessor{key: name[:end]}
	rest := name[end:]
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			next := strings.IndexAny(rest, ".[")
			if next < 0 {
				next = len(rest)
			}
			acc.steps = append(acc.steps, step{key: rest[:next]})
			rest = rest[next:]
		case '[':
			close := strings.IndexByte(rest, ']')
			if close < 0 {
				return acc, errors.New("missing ']' in field name")
			}
			acc.steps = append(acc.steps, parseStep(rest[1:close]))
			rest = rest[close+1:]
		default:
			return acc, errors.New("unexpected character in field name")
		}
	}
	return acc, nil
}

func parseStep(key string) step {
	if strings.Contains(key, ":") {
		parts := strings.SplitN(key, ":", 3)
		st := step{key: key, slice: true}
		bounds := []**int{&st.start, &st.stop, &st.stride}
		for i, part := range parts {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				*bounds[i] = &n
			}
		}
		return st
	}
	if n, err := strconv.Atoi(key); err == nil {
		return step{key: key, index: n, isIndex: true}
	}
	return step{key: key}
}

func (acc accessor) lookup(kwdict map[string]any) (any, bool) {
	value, ok := kwdict[acc.key]
	if !ok {
		return nil, false
	}
	for _, st := range acc.steps {
		value, ok = st.apply(value)
		if !ok {
			return nil, false
		}
	}
	return value, true
}

func (st step) apply(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		out, ok := v[st.key]
		return out, ok
	case models.Metadata:
		out, ok := v[st.key]
		return out, ok
	case map[string]string:
		out, ok := v[st.key]
		return out, ok
	case []any:
		return indexSlice(v, st)
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return indexSlice(items, st)
	case string:
		runes := []rune(v)
		items := make([]any, len(runes))
		for i := range runes {
			items[i] = string(runes[i])
		}
		out, ok := indexSlice(items, st)
		if !ok {
			return nil, false
		}
		if list, isList := out.([]any); isList {
			var sb strings.Builder
			for _, r := range list {
				sb.WriteString(r.(string))
			}
			return sb.String(), true
		}
		return out, true
	}
	return nil, false
}

func indexSlice(items []any, st step) (any, bool) {
	n := len(items)
	if st.slice {
		return sliceItems(items, st)
	}
	if !st.isIndex {
		return nil, false
	}
	i := st.index
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, false
	}
	return items[i], true
}

// sliceItems follows the bounds rules of "[start:stop:stride]"; a
// negative stride walks backwards and a zero stride matches nothing.
func sliceItems(items []any, st step) (any, bool) {
	n := len(items)
	stride := 1
	if st.stride != nil {
		stride = *st.stride
	}
	if stride == 0 {
		return nil, false
	}
	if stride > 0 {
		start, stop := 0, n
		if st.start != nil {
			start = clampIndex(*st.start, n)
		}
		if st.stop != nil {
			stop = clampIndex(*st.stop, n)
		}
		if stride == 1 {
			if start > stop {
				return []any{}, true
			}
			return items[start:stop], true
		}
		out := []any{}
		for i := start; i < stop; i += stride {
			out = append(out, items[i])
		}
		return out, true
	}

	start, stop := n-1, -1
	if st.start != nil {
		start = clampReverse(*st.start, n)
	}
	if st.stop != nil {
		stop = clampReverse(*st.stop, n)
	}
	out := []any{}
	for i := start; i > stop; i += stride {
		out = append(out, items[i])
	}
	return out, true
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

func clampReverse(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(-1, min(i, n-1))
}
