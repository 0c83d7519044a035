package generic

import (
	"regexp"
	"strings"

	"gdl/models"
)

const urlPattern = `(?P<scheme>https?://)(?P<domain>[^/?&#]+)(?P<path>/[^?&#]*)?` +
	`(?:\?(?P<query>[^/?#]*))?(?:#(?P<fragment>.*))?$`

// Extractor handles urls explicitly prefixed with "g:" or "generic:".
var Extractor = &models.Extractor{
	Name:         "Generic",
	CodeName:     "generic",
	Category:     "generic",
	URLPattern:   regexp.MustCompile(`(?i)^(?P<generic>g(?:eneric)?:)` + urlPattern),
	Example:      "generic:https://www.example.org/",
	DirectoryFmt: []string{"{category}", "{pageurl}"},
	FilenameFmt:  "{filename}.{extension}",
	ArchiveFmt:   "{filename}.{extension}",
	New:          newPage,
}

// FallbackExtractor accepts any http url.
var FallbackExtractor = &models.Extractor{
	Name:         "Generic (fallback)",
	CodeName:     "generic:fallback",
	Category:     "generic",
	Subcategory:  "fallback",
	URLPattern:   regexp.MustCompile(`(?i)^` + urlPattern),
	Example:      "https://www.example.org/",
	DirectoryFmt: Extractor.DirectoryFmt,
	FilenameFmt:  Extractor.FilenameFmt,
	ArchiveFmt:   Extractor.ArchiveFmt,
	New:          newPage,
}

func newPage(ctx *models.ExtractorContext) (models.Producer, error) {
	url := ctx.Group("match")
	if prefix := ctx.Group("generic"); prefix != "" {
		url = strings.TrimPrefix(url, prefix)
		ctx.Logger().Warn("forcing use of generic information extractor")
	} else {
		ctx.Logger().Warn("falling back on generic information extractor")
	}
	return &Page{
		ctx:  ctx,
		url:  url,
		root: ctx.Group("scheme") + ctx.Group("domain"),
	}, nil
}
