package generic

import (
	"iter"
	neturl "net/url"
	"path"
	"regexp"
	"strings"

	"gdl/ext/common"
	"gdl/models"
	"gdl/text"
	"gdl/util"

	"github.com/PuerkitoBio/goquery"
)

var mediaURLPattern = regexp.MustCompile(
	`(?i)https?://[^/?&#"'>\s]+[^?&#"'>\s]+\.(?:jpe?g|jpe|png|gif|web[mp]|mp4|mkv|og[gmv]|opus)` +
		`(?:\?[^/?#"'>\s]*)?(?:#[^/?#"'>\s]*)?`,
)

var metaRules = []struct {
	key      string
	selector string
}{
	{"descr", `meta[name="description"]`},
	{"keywords", `meta[name="keywords"]`},
	{"language", `meta[name="language"]`},
	{"name", `meta[itemprop="name"]`},
	{"copyright", `meta[name="copyright"]`},
	{"og_site", `meta[property="og:site"]`},
	{"og_site_name", `meta[property="og:site_name"]`},
	{"og_title", `meta[property="og:title"]`},
	{"og_descr", `meta[property="og:description"]`},
}

// Page collects the images of an arbitrary web page.
type Page struct {
	ctx  *models.ExtractorContext
	url  string
	root string
}

func (p *Page) Items() iter.Seq2[*models.Message, error] {
	return common.GalleryItems(p.ctx, p.url, p)
}

func (p *Page) Metadata(page string) (models.Metadata, error) {
	data := models.Metadata{"pageurl": p.url}
	if host, err := util.ExtractBaseHost(p.url); err == nil {
		data["host"] = host
	}
	if title := strings.TrimSpace(text.Extr(page, "<title>", "</title>")); title != "" {
		data["title"] = text.Unescape(title)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return data, nil
	}
	for _, rule := range metaRules {
		content, ok := doc.Find(rule.selector).First().Attr("content")
		if ok && content != "" {
			data[rule.key] = content
		}
	}
	return data, nil
}

// Images finds the src and srcset urls of img, video and source
// elements, plus every absolute url with a media file extension.
func (p *Page) Images(page string) ([]*models.Image, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, util.NewExtractionError("failed to parse page: %v", err)
	}

	var candidates []string
	doc.Find("img, video, source").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			candidates = append(candidates, src)
		}
		if srcset, ok := s.Attr("srcset"); ok {
			if fields := strings.Fields(srcset); len(fields) > 0 {
				candidates = append(candidates, fields[0])
			}
		}
	})
	candidates = append(candidates, mediaURLPattern.FindAllString(page, -1)...)

	base := p.baseURL(doc)
	seen := make(map[string]struct{}, len(candidates))
	var images []*models.Image
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || strings.HasPrefix(candidate, "data:") {
			continue
		}
		url := text.URLJoin(base, text.Unescape(candidate))
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		images = append(images, &models.Image{
			URL:      url,
			Metadata: models.Metadata{"imageurl": url},
		})
	}
	return images, nil
}

// baseURL resolves relative urls: a <base> element wins, otherwise
// the page url itself, minus its last segment if that is a file.
func (p *Page) baseURL(doc *goquery.Document) string {
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && href != "" {
		return text.URLJoin(p.url, href)
	}
	u, err := neturl.Parse(p.url)
	if err != nil {
		return p.url
	}
	if path.Ext(u.Path) == "" && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
