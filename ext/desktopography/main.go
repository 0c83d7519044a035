package desktopography

import (
	"regexp"

	"gdl/models"
)

const (
	root        = "https://desktopography.net"
	basePattern = `^(?:https?://)?desktopography\.net`
)

var Extractor = &models.Extractor{
	Name:        "Desktopography",
	CodeName:    "desktopography:site",
	Category:    "desktopography",
	Subcategory: "site",
	URLPattern:  regexp.MustCompile(basePattern + `/?$`),
	Example:     "https://desktopography.net/",
	New:         newSite,
}

var ExhibitionExtractor = &models.Extractor{
	Name:        "Desktopography exhibition",
	CodeName:    "desktopography:exhibition",
	Category:    "desktopography",
	Subcategory: "exhibition",
	URLPattern:  regexp.MustCompile(basePattern + `/exhibition-(?P<year>[^/?#]+)/?`),
	Example:     "https://desktopography.net/exhibition-2020/",
	New:         newExhibition,
}

var EntryExtractor = &models.Extractor{
	Name:         "Desktopography entry",
	CodeName:     "desktopography:entry",
	Category:     "desktopography",
	Subcategory:  "entry",
	URLPattern:   regexp.MustCompile(basePattern + `/portfolios/(?P<entry>[\w-]+)`),
	Example:      "https://desktopography.net/portfolios/new-era/",
	DirectoryFmt: []string{"{category}", "{entry}"},
	FilenameFmt:  "{filename}.{extension}",
	ArchiveFmt:   "{filename}",
	New:          newEntry,
}

func newSite(ctx *models.ExtractorContext) (models.Producer, error) {
	return &Site{ctx: ctx}, nil
}

func newExhibition(ctx *models.ExtractorContext) (models.Producer, error) {
	return &Exhibition{ctx: ctx, year: ctx.Group("year")}, nil
}

func newEntry(ctx *models.ExtractorContext) (models.Producer, error) {
	return &Entry{ctx: ctx, entry: ctx.Group("entry")}, nil
}
