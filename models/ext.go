package models

import (
	"iter"
	"net/http"
	"regexp"
)

type Extractor struct {
	Name        string
	CodeName    string
	Category    string
	Subcategory string
	URLPattern  *regexp.Regexp
	Example     string
	Host        []string

	// format strings used by the download job
	DirectoryFmt []string
	FilenameFmt  string
	ArchiveFmt   string

	New func(*ExtractorContext) (Producer, error)
}

// Producer yields the message stream of one extractor instance.
// The sequence is single-pass; a failing producer yields (nil, err)
// once and stops.
type Producer interface {
	Items() iter.Seq2[*Message, error]
}

// Initializer is implemented by producers that need to run
// checks or log in before their first message.
type Initializer interface {
	Initialize() error
}

// MetadataProvider and ImagesProvider are the two halves of a
// single-page gallery, see common.GalleryItems.
type MetadataProvider interface {
	Metadata(page string) (Metadata, error)
}

type ImagesProvider interface {
	Images(page string) ([]*Image, error)
}

type Image struct {
	URL      string
	Metadata Metadata
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Match reports the named groups of the extractor pattern for url,
// plus "match" holding the whole match. It returns nil on no match.
func (extractor *Extractor) Match(url string) map[string]string {
	if extractor.URLPattern == nil {
		return nil
	}
	matches := extractor.URLPattern.FindStringSubmatch(url)
	if matches == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range extractor.URLPattern.SubexpNames() {
		if name != "" {
			groups[name] = matches[i]
		}
	}
	groups["match"] = matches[0]
	return groups
}

// FuncProducer adapts a plain sequence to Producer.
type FuncProducer iter.Seq2[*Message, error]

func (fn FuncProducer) Items() iter.Seq2[*Message, error] {
	return iter.Seq2[*Message, error](fn)
}
