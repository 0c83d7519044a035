package ext

import (
	"gdl/config"
	"gdl/models"
	"gdl/util"
)

// Find returns the first enabled extractor whose pattern matches url
// together with the named groups of the match.
func Find(url string) (*models.Extractor, map[string]string, error) {
	for _, extractor := range List {
		groups := extractor.Match(url)
		if groups == nil {
			continue
		}
		if config.GetExtractorConfig(extractor).IsDisabled {
			continue
		}
		return extractor, groups, nil
	}
	if fallbackEnabled() {
		if groups := Fallback.Match(url); groups != nil {
			return Fallback, groups, nil
		}
	}
	return nil, nil, util.NewNoExtractorError(url)
}

// FromQueue resolves the extractor for a queued url, honoring an
// extractor preselected in the message metadata.
func FromQueue(url string, metadata models.Metadata) (*models.Extractor, map[string]string, error) {
	extractor := preselected(metadata)
	if extractor == nil {
		return Find(url)
	}
	groups := extractor.Match(url)
	if groups == nil {
		groups = map[string]string{"match": url}
	}
	return extractor, groups, nil
}

func ByCodeName(codeName string) *models.Extractor {
	for _, extractor := range List {
		if extractor.CodeName == codeName {
			return extractor
		}
	}
	if Fallback.CodeName == codeName {
		return Fallback
	}
	return nil
}

// ByCategory returns the extractors of category, all of them for "".
func ByCategory(category string) []*models.Extractor {
	var result []*models.Extractor
	for _, extractor := range List {
		if category == "" || extractor.Category == category {
			result = append(result, extractor)
		}
	}
	return result
}

func preselected(metadata models.Metadata) *models.Extractor {
	switch value := metadata[models.ExtractorKey].(type) {
	case *models.Extractor:
		return value
	case string:
		return ByCodeName(value)
	}
	return nil
}

func fallbackEnabled() bool {
	enabled, _ := models.AsBool(config.Interpolate(
		[]string{"extractor", Fallback.Category},
		"enabled",
		false,
	))
	return enabled
}
