package wallhaven

import (
	"regexp"

	"gdl/models"
	"gdl/text"
)

const (
	root        = "https://wallhaven.cc"
	apiEndpoint = root + "/api/v1/search"
	perPage     = 24
)

var ImageExtractor = &models.Extractor{
	Name:        "Wallhaven",
	CodeName:    "wallhaven:image",
	Category:    "wallhaven",
	Subcategory: "image",
	URLPattern: regexp.MustCompile(
		`^(?:https?://)?(?:(?:alpha\.|www\.)?wallhaven\.cc/(?:w|wallpaper)|whvn\.cc)/(?P<id>[0-9a-z]+)`,
	),
	Example:      "https://wallhaven.cc/w/94x38z",
	DirectoryFmt: []string{"{category}"},
	FilenameFmt:  "{category}_{id}_{width}x{height}.{extension}",
	ArchiveFmt:   "{id}",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		return &Image{ctx: ctx, id: ctx.Group("id")}, nil
	},
}

var SearchExtractor = &models.Extractor{
	Name:         "Wallhaven search",
	CodeName:     "wallhaven:search",
	Category:     "wallhaven",
	Subcategory:  "search",
	URLPattern:   regexp.MustCompile(`^(?:https?://)?(?:alpha\.|www\.)?wallhaven\.cc/search\?(?P<query>[^#]+)`),
	Example:      "https://wallhaven.cc/search?q=landscape",
	DirectoryFmt: []string{"{category}", "{search[q]}"},
	FilenameFmt:  "{category}_{id}_{width}x{height}.{extension}",
	ArchiveFmt:   "s_{search[q]}_{id}",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		params := make(map[string]any)
		for key, value := range text.ParseQuery(ctx.Group("query")) {
			params[key] = value
		}
		return &Search{
			ctx:     ctx,
			params:  params,
			apiKey:  ctx.ConfigString("api-key", ""),
			useAPI:  ctx.ConfigBool("api", false),
			perPage: ctx.ConfigInt("per-page", perPage),
		}, nil
	},
}
