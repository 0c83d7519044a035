package recursive

import (
	"iter"
	"regexp"
	"strings"

	"gdl/models"
	"gdl/text"
)

var Extractor = &models.Extractor{
	Name:       "Recursive",
	CodeName:   "recursive",
	Category:   "recursive",
	URLPattern: regexp.MustCompile(`^r(?:ecursive)?:(?P<url>.+)$`),
	Example:    "recursive:https://pastebin.com/raw/FLwrCYsT",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		return models.FuncProducer(items(ctx)), nil
	},
}

var absoluteURL = regexp.MustCompile(`https?://[^\s"'<>]+`)

// items queues every link of the page. Plain text pages are scanned
// for absolute urls, html pages for anchors.
func items(ctx *models.ExtractorContext) iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		url := text.EnsureHTTPScheme(ctx.Group("url"), "")
		resp, err := ctx.Request(url, nil)
		if err != nil {
			yield(nil, err)
			return
		}
		page := resp.Text()

		var links []string
		if strings.Contains(resp.Header.Get("Content-Type"), "html") || strings.Contains(page, "<a ") {
			links = text.Links(page, resp.URL)
		} else {
			links = absoluteURL.FindAllString(page, -1)
		}

		if !yield(models.NewVersion(1), nil) {
			return
		}
		seen := make(map[string]struct{}, len(links))
		for _, link := range links {
			if _, ok := seen[link]; ok || link == url {
				continue
			}
			seen[link] = struct{}{}
			if !yield(models.NewQueue(link, nil), nil) {
				return
			}
		}
	}
}
