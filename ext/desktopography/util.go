package desktopography

import (
	"iter"
	"strings"

	"gdl/models"
	"gdl/text"
)

const (
	exhibitionPrefix = `<a href="https://desktopography.net/exhibition-`
	portfolioPrefix  = `<a class="overlay-background" href="https://desktopography.net/portfolios/`
	wallpaperPrefix  = `<a target="_blank" href="`
	wallpaperButton  = `" class="wallpaper-button" download="`
)

// Site queues every exhibition linked from the front page.
type Site struct {
	ctx *models.ExtractorContext
}

func (s *Site) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		resp, err := s.ctx.Request(root+"/", nil)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(models.NewVersion(1), nil) {
			return
		}
		seen := make(map[string]struct{})
		for year := range text.ExtractIter(resp.Text(), exhibitionPrefix, `/"`, 0) {
			if _, ok := seen[year]; ok {
				continue
			}
			seen[year] = struct{}{}
			data := models.Metadata{
				models.ExtractorKey: ExhibitionExtractor,
				"exhibition_year":   year,
			}
			if !yield(models.NewQueue(root+"/exhibition-"+year+"/", data), nil) {
				return
			}
		}
	}
}

// Exhibition queues the entries of one yearly exhibition.
type Exhibition struct {
	ctx  *models.ExtractorContext
	year string
}

func (e *Exhibition) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		resp, err := e.ctx.Request(root+"/exhibition-"+e.year+"/", nil)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(models.NewVersion(1), nil) {
			return
		}
		for entry := range text.ExtractIter(resp.Text(), portfolioPrefix, `"`, 0) {
			entry = strings.Trim(entry, "/")
			if entry == "" {
				continue
			}
			data := models.Metadata{
				models.ExtractorKey: EntryExtractor,
				"exhibition_year":   e.year,
			}
			if !yield(models.NewQueue(root+"/portfolios/"+entry+"/", data), nil) {
				return
			}
		}
	}
}

// Entry yields every resolution offered for one wallpaper.
type Entry struct {
	ctx   *models.ExtractorContext
	entry string
}

func (e *Entry) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		resp, err := e.ctx.Request(root+"/portfolios/"+e.entry+"/", nil)
		if err != nil {
			yield(nil, err)
			return
		}
		page := resp.Text()

		data := models.Metadata{"entry": e.entry}
		if year, ok := e.ctx.ParentMetadata["exhibition_year"]; ok {
			data["exhibition_year"] = year
		}
		if title := text.Extr(page, "<h1", "</h1>"); title != "" {
			if _, rest, ok := strings.Cut(title, ">"); ok {
				data["title"] = text.RemoveHTML(rest)
			}
		}

		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(data.Clone()), nil) {
			return
		}
		for link := range text.ExtractIter(page, wallpaperPrefix, `">`, 0) {
			href, download, ok := strings.Cut(link, wallpaperButton)
			if !ok {
				continue
			}
			meta := wallpaperMetadata(download)
			meta.Merge(data)
			if !yield(models.NewURL(text.URLJoin(root+"/", href), meta), nil) {
				return
			}
		}
	}
}

// wallpaperMetadata splits a download name like
// "new-era_2560x1440.jpg" into its parts.
func wallpaperMetadata(download string) models.Metadata {
	meta := models.Metadata(text.NameExtFromURL(download, nil))
	name := meta.String("filename")
	title, resolution, _ := strings.Cut(name, "_")
	meta["entry_title"] = title
	if width, height, ok := strings.Cut(resolution, "x"); ok {
		meta["resolution"] = resolution
		meta["width"] = text.ParseInt(width, 0)
		meta["height"] = text.ParseInt(height, 0)
	}
	return meta
}
