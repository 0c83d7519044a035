package job

import (
	"path/filepath"
	"strings"

	"gdl/config"
	"gdl/models"
	"gdl/text"
	"gdl/util"
	"gdl/util/formatter"
)

const defaultFilenameFmt = "{filename}.{extension}"

var defaultDirectoryFmt = []string{"{category}"}

// PathFormat turns metadata into target paths: a directory built from
// one format per segment below the base directory, and a filename.
type PathFormat struct {
	base        string
	directories []*formatter.Formatter
	filename    *formatter.Formatter

	directory string
}

// NewPathFormat compiles the formats of extractor. The "directory",
// "filename" and "base-directory" options take precedence.
func NewPathFormat(extractor *models.Extractor, opts models.OptionLookup) (*PathFormat, error) {
	lookup := func(key string) any {
		if opts == nil {
			return nil
		}
		value, _ := opts.Lookup(key)
		return value
	}

	directoryFmt := extractor.DirectoryFmt
	if custom := models.AsStrings(lookup("directory")); len(custom) > 0 {
		directoryFmt = custom
	}
	if len(directoryFmt) == 0 {
		directoryFmt = defaultDirectoryFmt
	}
	filenameFmt := models.AsString(lookup("filename"))
	if filenameFmt == "" {
		filenameFmt = extractor.FilenameFmt
	}
	if filenameFmt == "" {
		filenameFmt = defaultFilenameFmt
	}
	base := models.AsString(lookup("base-directory"))
	if base == "" {
		base = config.Env.BaseDirectory
	}

	p := &PathFormat{base: util.ExpandPath(base)}
	for _, segment := range directoryFmt {
		f, err := formatter.Parse(segment, "")
		if err != nil {
			return nil, err
		}
		p.directories = append(p.directories, f)
	}
	f, err := formatter.Parse(filenameFmt, "")
	if err != nil {
		return nil, err
	}
	p.filename = f
	p.directory = p.base
	return p, nil
}

// SetDirectory formats the directory segments for data. Missing
// fields format to nothing and segments that end up empty are dropped.
func (p *PathFormat) SetDirectory(data models.Metadata) {
	parts := []string{p.base}
	for _, f := range p.directories {
		segment := strings.TrimSpace(text.CleanPath(f.FormatDefault(data, "")))
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		parts = append(parts, segment)
	}
	p.directory = filepath.Join(parts...)
}

func (p *PathFormat) Directory() string {
	return p.directory
}

// Filename formats the filename for data. A missing extension is
// taken from url first.
func (p *PathFormat) Filename(url string, data models.Metadata) string {
	if _, ok := data["extension"]; !ok {
		text.NameExtFromURL(url, data)
	}
	return text.CleanPath(p.filename.Format(data))
}

// Build returns the full target path of a file.
func (p *PathFormat) Build(url string, data models.Metadata) string {
	return filepath.Join(p.directory, p.Filename(url, data))
}

// Reset returns to the base directory.
func (p *PathFormat) Reset() {
	p.directory = p.base
}
