package common

import (
	"iter"

	"gdl/models"
	"gdl/text"
)

// Gallery is a single page holding a set of images.
type Gallery interface {
	models.MetadataProvider
	models.ImagesProvider
}

// GalleryItems fetches pageURL and turns it into a message stream:
// Version, one Directory with the gallery metadata, then a Url per
// image numbered from 1.
func GalleryItems(
	ctx *models.ExtractorContext,
	pageURL string,
	gallery Gallery,
) iter.Seq2[*models.Message, error] {
	return func(yield func(*models.Message, error) bool) {
		resp, err := ctx.Request(pageURL, nil)
		if err != nil {
			yield(nil, err)
			return
		}
		page := resp.Text()

		data, err := gallery.Metadata(page)
		if err != nil {
			yield(nil, err)
			return
		}
		images, err := gallery.Images(page)
		if err != nil {
			yield(nil, err)
			return
		}
		if data == nil {
			data = make(models.Metadata)
		}
		data["count"] = len(images)

		if !yield(models.NewVersion(1), nil) {
			return
		}
		if !yield(models.NewDirectory(data.Clone()), nil) {
			return
		}
		for i, image := range images {
			meta := data.Clone()
			meta.Merge(image.Metadata)
			meta["num"] = i + 1
			if _, ok := meta["extension"]; !ok {
				text.NameExtFromURL(image.URL, meta)
			}
			if !yield(models.NewURL(image.URL, meta), nil) {
				return
			}
		}
	}
}
