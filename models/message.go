package models

import (
	"maps"
	"strings"

	"gdl/enums"
)

const (
	// ExtractorKey on a queue message selects the child extractor,
	// either a *Extractor or its code name.
	ExtractorKey = "_extractor"
	// ArchiveKeyField overrides the archive key computed from ArchiveFmt.
	ArchiveKeyField = "_archive_key"
)

// Metadata is the keyword mapping carried by directory, url and queue messages.
type Metadata map[string]any

type Message struct {
	Kind     enums.MessageKind
	Version  int
	URL      string
	Metadata Metadata
}

func NewVersion(version int) *Message {
	return &Message{
		Kind:    enums.MessageKindVersion,
		Version: version,
	}
}

func NewDirectory(metadata Metadata) *Message {
	return &Message{
		Kind:     enums.MessageKindDirectory,
		Metadata: ensure(metadata),
	}
}

func NewURL(url string, metadata Metadata) *Message {
	return &Message{
		Kind:     enums.MessageKindURL,
		URL:      url,
		Metadata: ensure(metadata),
	}
}

func NewQueue(url string, metadata Metadata) *Message {
	return &Message{
		Kind:     enums.MessageKindQueue,
		URL:      url,
		Metadata: ensure(metadata),
	}
}

// Clone returns a copy whose metadata can be used
// independently of the producer's map.
func (msg *Message) Clone() *Message {
	if msg == nil {
		return nil
	}
	clone := *msg
	clone.Metadata = msg.Metadata.Clone()
	return &clone
}

func (msg *Message) String() string {
	switch msg.Kind {
	case enums.MessageKindURL, enums.MessageKindQueue:
		return string(msg.Kind) + "(" + msg.URL + ")"
	default:
		return string(msg.Kind)
	}
}

// Clone deep-copies nested maps and slices. Other values are shared.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for key, value := range m {
		out[key] = cloneValue(value)
	}
	return out
}

// Merge copies every key of other into m, overwriting existing keys.
func (m Metadata) Merge(other Metadata) Metadata {
	maps.Copy(m, other)
	return m
}

// Public returns the keys not prefixed with an underscore.
func (m Metadata) Public() Metadata {
	out := make(Metadata, len(m))
	for key, value := range m {
		if strings.HasPrefix(key, "_") {
			continue
		}
		out[key] = value
	}
	return out
}

func (m Metadata) String(key string) string {
	return AsString(m[key])
}

func (m Metadata) Int(key string) int {
	value, _ := AsInt(m[key])
	return value
}

func ensure(metadata Metadata) Metadata {
	if metadata == nil {
		return make(Metadata)
	}
	return metadata
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Metadata:
		return v.Clone()
	case map[string]any:
		return map[string]any(Metadata(v).Clone())
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return value
	}
}
