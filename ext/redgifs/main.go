package redgifs

import (
	"regexp"

	"gdl/models"
)

const (
	baseAPI       = "https://api.redgifs.com/v2/"
	tokenEndpoint = baseAPI + "auth/temporary"
	gifEndpoint   = baseAPI + "gifs/"
	usersEndpoint = baseAPI + "users/"
)

var baseAPIHeaders = map[string]string{
	"Referer": "https://www.redgifs.com/",
	"Origin":  "https://www.redgifs.com",
}

var ImageExtractor = &models.Extractor{
	Name:        "RedGifs",
	CodeName:    "redgifs:image",
	Category:    "redgifs",
	Subcategory: "image",
	URLPattern: regexp.MustCompile(
		`https?://(?:(?:www\.)?redgifs\.com/(?:watch|ifr)/|thumbs2\.redgifs\.com/)(?P<id>[^-/?#\.]+)`,
	),
	Host:         []string{"redgifs"},
	Example:      "https://www.redgifs.com/watch/squeakyhappyfox",
	DirectoryFmt: []string{"{category}", "{userName}"},
	FilenameFmt:  "{category}_{id}.{extension}",
	ArchiveFmt:   "{id}",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		return &Image{api: newAPI(ctx), id: ctx.Group("id")}, nil
	},
}

var UserExtractor = &models.Extractor{
	Name:         "RedGifs user",
	CodeName:     "redgifs:user",
	Category:     "redgifs",
	Subcategory:  "user",
	URLPattern:   regexp.MustCompile(`https?://(?:www\.)?redgifs\.com/users/(?P<user>[^/?#]+)`),
	Host:         []string{"redgifs"},
	Example:      "https://www.redgifs.com/users/someone",
	DirectoryFmt: []string{"{category}", "{userName}"},
	FilenameFmt:  "{category}_{id}.{extension}",
	ArchiveFmt:   "{id}",

	New: func(ctx *models.ExtractorContext) (models.Producer, error) {
		return &User{
			api:   newAPI(ctx),
			user:  ctx.Group("user"),
			order: ctx.ConfigString("order", "new"),
		}, nil
	},
}
