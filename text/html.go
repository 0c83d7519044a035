package text

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	gohtml "golang.org/x/net/html"
)

// Unescape decodes html entities.
func Unescape(value string) string {
	return html.UnescapeString(value)
}

// SplitHTML returns the non-blank text nodes of an html fragment,
// trimmed and unescaped.
func SplitHTML(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var parts []string
	for _, node := range doc.Nodes {
		collectText(node, &parts)
	}
	return parts
}

// RemoveHTML strips all tags and collapses whitespace.
func RemoveHTML(fragment string) string {
	return strings.Join(strings.Fields(strings.Join(SplitHTML(fragment), " ")), " ")
}

// Links returns the href of every <a> element, resolved against base.
func Links(page, base string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		links = append(links, URLJoin(base, href))
	})
	return links
}

func collectText(node *gohtml.Node, parts *[]string) {
	if node.Type == gohtml.TextNode {
		if value := strings.TrimSpace(node.Data); value != "" {
			*parts = append(*parts, value)
		}
		return
	}
	if node.Type == gohtml.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}
