package directlink

import (
	"iter"
	"path"
	"regexp"

	"gdl/models"
	"gdl/text"
	"gdl/util"
)

var Extractor = &models.Extractor{
	Name:     "Direct link",
	CodeName: "directlink",
	Category: "directlink",
	URLPattern: regexp.MustCompile(
		`(?i)^https?://(?P<domain>[^/?#]+)/(?P<path>[^?#]+\.(?:jpe?g|jpe|png|gif|web[mp]|mp4|mkv|og[gmv]|opus))` +
			`(?:\?(?P<query>[^#]*))?(?:#(?P<fragment>.*))?$`,
	),
	Example:      "https://en.wikipedia.org/static/images/project-logos/enwiki.png",
	DirectoryFmt: []string{"{category}", "{domain}"},
	FilenameFmt:  "{filename}.{extension}",
	ArchiveFmt:   "{domain}/{path}/{filename}.{extension}",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		return models.FuncProducer(items(ctx)), nil
	},
}

func items(ctx *models.ExtractorContext) iter.Seq2[*models.Message, error] {
	url := ctx.Group("match")
	filePath := text.Unquote(ctx.Group("path"))

	data := models.Metadata{
		"domain":   ctx.Group("domain"),
		"path":     path.Dir(filePath),
		"query":    text.Unquote(ctx.Group("query")),
		"fragment": text.Unquote(ctx.Group("fragment")),
	}
	if host, err := util.ExtractBaseHost(url); err == nil {
		data["host"] = host
	}
	text.NameExtFromURL(url, data)

	return func(yield func(*models.Message, error) bool) {
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(data.Clone()), nil) {
			return
		}
		yield(models.NewURL(url, data), nil)
	}
}
