package text

import (
	"net/url"
	"path"
	"strings"
)

// FilenameFromURL returns the unquoted last path segment of rawURL.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	var p string
	if err != nil {
		p = rawURL
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
	} else {
		p = u.EscapedPath()
	}
	name := p[strings.LastIndex(p, "/")+1:]
	return Unquote(name)
}

// ExtFromURL returns the lower-case extension of the url's filename.
func ExtFromURL(rawURL string) string {
	_, ext := splitExt(FilenameFromURL(rawURL))
	return ext
}

// NameExtFromURL stores "filename" and "extension" of rawURL in data.
// Extensions longer than 16 characters are kept in the filename.
func NameExtFromURL(rawURL string, data map[string]any) map[string]any {
	if data == nil {
		data = make(map[string]any, 2)
	}
	filename := FilenameFromURL(rawURL)
	name, ext := splitExt(filename)
	if len(ext) <= 16 {
		data["filename"] = name
		data["extension"] = ext
	} else {
		data["filename"] = filename
		data["extension"] = ""
	}
	return data
}

func splitExt(filename string) (string, string) {
	ext := path.Ext(filename)
	if ext == filename {
		return filename, ""
	}
	return strings.TrimSuffix(filename, ext), strings.ToLower(strings.TrimPrefix(ext, "."))
}

// RootFromURL returns scheme and host of rawURL, "https" if absent.
func RootFromURL(rawURL string) string {
	u, err := url.Parse(EnsureHTTPScheme(rawURL, ""))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// EnsureHTTPScheme prefixes scheme ("https://" by default) to urls
// not starting with "http".
func EnsureHTTPScheme(rawURL, scheme string) string {
	if rawURL == "" || strings.HasPrefix(rawURL, "http") {
		return rawURL
	}
	if scheme == "" {
		scheme = "https://"
	}
	return scheme + strings.TrimLeft(rawURL, "/:")
}

// URLJoin resolves ref against base. It returns ref unchanged
// when either side cannot be parsed.
func URLJoin(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// ParseQuery keeps the first value of every key.
func ParseQuery(qs string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.FieldsFunc(qs, func(r rune) bool { return r == '&' || r == ';' }) {
		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil || key == "" {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			continue
		}
		if _, exists := result[key]; !exists {
			result[key] = value
		}
	}
	return result
}

func Unquote(value string) string {
	unquoted, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return unquoted
}

// CleanPath makes value usable as a single path segment.
func CleanPath(value string) string {
	value = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, value)
	value = strings.TrimSpace(value)
	if value == "." || value == ".." {
		return "_"
	}
	return value
}
