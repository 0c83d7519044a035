package redgifs

import (
	"iter"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gdl/ext/common"
	"gdl/models"
	"gdl/text"
	"gdl/util"
	"gdl/util/cache"
)

const tokenTTL = 23 * time.Hour

var defaultFormats = []string{"hd", "sd"}

// api wraps the v2 json api. Requests carry a temporary bearer token
// shared by all instances of a run.
type api struct {
	ctx     *models.ExtractorContext
	formats []string
	token   *Token
}

func newAPI(ctx *models.ExtractorContext) *api {
	formats := ctx.ConfigStrings("format")
	if len(formats) == 0 {
		formats = defaultFormats
	}
	return &api{ctx: ctx, formats: formats}
}

func (a *api) Initialize() error {
	fetch := func() (*Token, error) {
		return a.fetchToken()
	}
	var err error
	if a.ctx.Shared != nil {
		a.token, err = cache.Memoize(a.ctx.Shared.Cache, "redgifs:token", tokenTTL, fetch)
	} else {
		a.token, err = fetch()
	}
	return err
}

func (a *api) fetchToken() (*Token, error) {
	resp, err := a.ctx.Request(tokenEndpoint, &models.RequestOptions{Headers: baseAPIHeaders})
	if err != nil {
		return nil, err
	}
	var token Token
	if err := resp.JSON(&token); err != nil {
		return nil, util.NewExtractionError("failed to decode token: %v", err)
	}
	if token.AccessToken == "" {
		return nil, util.NewAuthenticationError("no temporary token issued")
	}
	return &token, nil
}

func (a *api) call(endpoint string, params url.Values, v any) error {
	headers := map[string]string{
		"Authorization": "Bearer " + a.token.AccessToken,
	}
	if a.token.Agent != "" {
		headers["User-Agent"] = a.token.Agent
	}
	maps.Copy(headers, baseAPIHeaders)
	resp, err := a.ctx.Request(endpoint, &models.RequestOptions{
		Headers: headers,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if err := resp.JSON(v); err != nil {
		return util.NewExtractionError("failed to decode response: %v", err)
	}
	return nil
}

func (a *api) gif(id string) (*Gif, error) {
	var response GifResponse
	err := a.call(gifEndpoint+id, url.Values{"views": {"true"}}, &response)
	if err != nil {
		if e, ok := util.AsError(err); ok && e.StatusCode == http.StatusNotFound {
			return nil, util.NewNotFoundError("gif")
		}
		return nil, err
	}
	if response.Gif == nil {
		return nil, util.NewNotFoundError("gif")
	}
	return response.Gif, nil
}

// fileURL picks the first available format of the configured order.
func (a *api) fileURL(gif *Gif) string {
	for _, format := range a.formats {
		var u string
		switch format {
		case "hd":
			u = gif.Urls.Hd
		case "sd":
			u = gif.Urls.Sd
		case "silent":
			u = gif.Urls.Silent
		case "poster":
			u = gif.Urls.Poster
		case "thumbnail":
			u = gif.Urls.Thumbnail
		}
		if u != "" {
			return u
		}
	}
	return gif.Urls.Hd
}

func (a *api) metadata(gif *Gif, fileURL string) models.Metadata {
	data := models.Metadata{
		"id":          gif.ID,
		"userName":    gif.UserName,
		"description": gif.Description,
		"tags":        gif.Tags,
		"niches":      gif.Niches,
		"width":       gif.Width,
		"height":      gif.Height,
		"duration":    gif.Duration,
		"hasAudio":    gif.HasAudio,
		"likes":       gif.Likes,
		"views":       gif.Views,
		"verified":    gif.Verified,
		"date":        time.Unix(gif.CreateDate, 0).UTC(),
	}
	text.NameExtFromURL(fileURL, data)
	return data
}

// Image yields one gif.
type Image struct {
	*api
	id string
}

func (img *Image) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		gif, err := img.gif(img.id)
		if err != nil {
			yield(nil, err)
			return
		}
		fileURL := img.fileURL(gif)
		data := img.metadata(gif, fileURL)
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(data.Clone()), nil) {
			return
		}
		yield(models.NewURL(fileURL, data), nil)
	}
}

// User yields every gif a user posted, page by page.
type User struct {
	*api
	user  string
	order string
}

func (u *User) Items() iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(models.Metadata{"userName": u.user}), nil) {
			return
		}

		pages := common.Numbered(1, func(page int) ([]*Gif, bool, error) {
			params := url.Values{
				"order": {u.order},
				"page":  {strconv.Itoa(page)},
			}
			var response SearchResponse
			if err := u.call(usersEndpoint+url.PathEscape(u.user)+"/search", params, &response); err != nil {
				return nil, false, err
			}
			return response.Gifs, response.Page < response.Pages, nil
		})
		pages.Key = func(gif *Gif) string { return gif.ID }

		for gif, err := range pages.Items() {
			if err != nil {
				yield(nil, err)
				return
			}
			fileURL := u.fileURL(gif)
			if !yield(models.NewURL(fileURL, u.metadata(gif, fileURL)), nil) {
				return
			}
		}
	}
}
