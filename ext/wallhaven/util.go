package wallhaven

import (
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gdl/ext/common"
	"gdl/models"
	"gdl/text"
	"gdl/util"
	"gdl/util/cache"
)

const wallpaperTTL = time.Hour

// Image yields a single wallpaper.
type Image struct {
	ctx *models.ExtractorContext
	id  string
}

func (img *Image) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		wallpaperURL, data, err := getWallpaper(img.ctx, img.id)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(data.Clone()), nil) {
			return
		}
		yield(models.NewURL(wallpaperURL, data), nil)
	}
}

// Search yields the results of a search query, scraping the result
// pages or, with "api" enabled, through the json api.
type Search struct {
	ctx     *models.ExtractorContext
	params  map[string]any
	apiKey  string
	useAPI  bool
	perPage int
}

func (s *Search) Items() iter.Seq2[*models.Message, error] {
	if s.useAPI || s.apiKey != "" {
		return s.apiItems()
	}
	return s.pageItems()
}

// pageItems walks the html result pages. The site has no reliable
// next marker, so a short page ends the listing.
func (s *Search) pageItems() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(models.Metadata{"search": s.params}), nil) {
			return
		}

		searchURL := root + "/search"
		headers := map[string]string{
			"Referer":          searchURL,
			"X-Requested-With": "XMLHttpRequest",
		}
		pages := common.Numbered(1, func(page int) ([]string, bool, error) {
			params := s.query()
			params.Set("page", strconv.Itoa(page))
			resp, err := s.ctx.Request(searchURL, &models.RequestOptions{
				Headers: headers,
				Params:  params,
			})
			if err != nil {
				return nil, false, err
			}
			var ids []string
			for id := range text.ExtractIter(resp.Text(), `data-wallpaper-id="`, `"`, 0) {
				ids = append(ids, id)
			}
			return ids, len(ids) > 0, nil
		})
		pages.PageSize = s.perPage
		pages.Key = func(id string) string { return id }

		for id, err := range pages.Items() {
			if err != nil {
				yield(nil, err)
				return
			}
			wallpaperURL, data, err := getWallpaper(s.ctx, id)
			if err != nil {
				yield(nil, err)
				return
			}
			data["search"] = s.params
			if !yield(models.NewURL(wallpaperURL, data), nil) {
				return
			}
		}
	}
}

// apiItems pages through the json api until meta.last_page.
func (s *Search) apiItems() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		if s.apiKey == "" && strings.HasSuffix(models.AsString(s.params["purity"]), "1") {
			s.ctx.Shared.WarnOnce("wallhaven:nsfw", func() {
				s.ctx.Logger().Warn("nsfw results require an api key")
			})
		}
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(models.Metadata{"search": s.params}), nil) {
			return
		}

		pages := common.Numbered(1, func(page int) ([]*Wallpaper, bool, error) {
			params := s.query()
			params.Set("page", strconv.Itoa(page))
			if s.apiKey != "" {
				params.Set("apikey", s.apiKey)
			}
			resp, err := s.ctx.Request(apiEndpoint, &models.RequestOptions{Params: params})
			if err != nil {
				return nil, false, err
			}
			var result SearchResponse
			if err := resp.JSON(&result); err != nil {
				return nil, false, util.NewExtractionError("failed to decode search results: %v", err)
			}
			lastPage := resp.Get("meta.last_page").Int()
			return result.Data, int64(page) < lastPage, nil
		})
		pages.Key = func(w *Wallpaper) string { return w.ID }

		for wallpaper, err := range pages.Items() {
			if err != nil {
				yield(nil, err)
				return
			}
			data := apiMetadata(wallpaper)
			data["search"] = s.params
			if !yield(models.NewURL(wallpaper.Path, data), nil) {
				return
			}
		}
	}
}

func (s *Search) query() url.Values {
	params := make(url.Values, len(s.params)+1)
	for key, value := range s.params {
		params.Set(key, models.AsString(value))
	}
	return params
}

// getWallpaper returns the file url and metadata of a wallpaper,
// remembered for a while so repeated ids cost one request.
func getWallpaper(ctx *models.ExtractorContext, id string) (string, models.Metadata, error) {
	type result struct {
		url  string
		data models.Metadata
	}
	fetch := func() (result, error) {
		wallpaperURL, data, err := fetchWallpaper(ctx, id)
		return result{wallpaperURL, data}, err
	}
	var (
		res result
		err error
	)
	if ctx.Shared != nil {
		res, err = cache.Memoize(ctx.Shared.Cache, "wallhaven:wallpaper:"+id, wallpaperTTL, fetch)
	} else {
		res, err = fetch()
	}
	if err != nil {
		return "", nil, err
	}
	return res.url, res.data.Clone(), nil
}

func fetchWallpaper(ctx *models.ExtractorContext, id string) (string, models.Metadata, error) {
	resp, err := ctx.Request(root+"/w/"+id, nil)
	if err != nil {
		if e, ok := util.AsError(err); ok && e.StatusCode == http.StatusNotFound {
			return "", nil, util.NewNotFoundError("wallpaper")
		}
		return "", nil, err
	}
	extr := text.ExtractFrom(resp.Text(), 0)

	title := extr(`name="title" content="`, `"`)
	imageURL := extr(`property="og:image" content="`, `"`)
	resolution := extr(`<h3 class="showcase-resolution"`, `<`)
	colors := extr(`<ul `, `</ul>`)
	uploader := extr(`alt="`, `"`)
	date := extr(`datetime="`, `"`)
	category := extr(`Category</dt><dd>`, `<`)
	size := extr(`Size</dt><dd>`, `<`)
	views := extr(`Views</dt><dd>`, `<`)
	favorites := extr(`Favorites</dt><dd>`, `</dt>`)

	if imageURL == "" {
		return "", nil, util.NewExtractionError("no image url on wallpaper page %s", id)
	}

	resolution = resolution[strings.LastIndex(resolution, ">")+1:]
	width, height, _ := strings.Cut(strings.TrimSpace(resolution), "x")

	tagline := title
	if i := strings.LastIndex(title, " | "); i >= 0 {
		tagline = title[:i]
	}
	var tags []any
	for _, tag := range strings.Split(strings.TrimLeft(text.Unescape(tagline), "#"), ", #") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	var colorList []any
	for color := range text.ExtractIter(colors, "#", `"`, 0) {
		colorList = append(colorList, color)
	}
	favs, _, _ := strings.Cut(text.RemoveHTML(favorites), " ")

	data := models.Metadata{
		"id":          id,
		"width":       text.ParseInt(width, 0),
		"height":      text.ParseInt(height, 0),
		"colors":      colorList,
		"tags":        tags,
		"uploader":    text.Unescape(uploader),
		"wh_category": category,
		"size":        size,
		"filesize":    text.ParseBytes(size, 0),
		"views":       text.ParseInt(strings.ReplaceAll(views, ",", ""), 0),
		"favorites":   text.ParseInt(strings.ReplaceAll(favs, ",", ""), 0),
	}
	if parsed, ok := text.ParseDatetime(date, ""); ok {
		data["date"] = parsed
	}
	wallpaperURL := text.URLJoin(root+"/", imageURL)
	text.NameExtFromURL(wallpaperURL, data)
	return wallpaperURL, data, nil
}

func apiMetadata(w *Wallpaper) models.Metadata {
	colors := make([]any, len(w.Colors))
	for i, color := range w.Colors {
		colors[i] = strings.TrimPrefix(color, "#")
	}
	data := models.Metadata{
		"id":          w.ID,
		"width":       w.DimensionX,
		"height":      w.DimensionY,
		"colors":      colors,
		"wh_category": w.Category,
		"purity":      w.Purity,
		"filesize":    w.FileSize,
		"views":       w.Views,
		"favorites":   w.Favorites,
		"source":      w.Source,
	}
	if parsed, ok := text.ParseDatetime(w.CreatedAt, "2006-01-02 15:04:05"); ok {
		data["date"] = parsed
	}
	text.NameExtFromURL(w.Path, data)
	return data
}
