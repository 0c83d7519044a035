package redgifs

type Token struct {
	AccessToken string `json:"token"`
	Agent       string `json:"agent"`
}

type Urls struct {
	Silent    string `json:"silent"`
	Sd        string `json:"sd"`
	Hd        string `json:"hd"`
	Thumbnail string `json:"thumbnail"`
	HTML      string `json:"html"`
	Poster    string `json:"poster"`
}

type Gif struct {
	AvgColor    string   `json:"avgColor"`
	CreateDate  int64    `json:"createDate"`
	Description string   `json:"description"`
	Duration    float64  `json:"duration"`
	HasAudio    bool     `json:"hasAudio"`
	Height      int      `json:"height"`
	ID          string   `json:"id"`
	Likes       int      `json:"likes"`
	Niches      []string `json:"niches"`
	Sexuality   []string `json:"sexuality"`
	Tags        []string `json:"tags"`
	Urls        Urls     `json:"urls"`
	UserName    string   `json:"userName"`
	Verified    bool     `json:"verified"`
	Views       int      `json:"views"`
	Width       int      `json:"width"`
}

type GifResponse struct {
	Gif *Gif `json:"gif"`
}

type SearchResponse struct {
	Gifs  []*Gif `json:"gifs"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int    `json:"total"`
}
