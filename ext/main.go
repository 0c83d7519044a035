package ext

import (
	"gdl/ext/desktopography"
	"gdl/ext/directlink"
	"gdl/ext/generic"
	"gdl/ext/recursive"
	"gdl/ext/redgifs"
	"gdl/ext/wallhaven"
	"gdl/models"
)

// List holds every extractor in matching order.
var List = []*models.Extractor{
	desktopography.Extractor,
	desktopography.ExhibitionExtractor,
	desktopography.EntryExtractor,
	wallhaven.ImageExtractor,
	wallhaven.SearchExtractor,
	redgifs.ImageExtractor,
	redgifs.UserExtractor,
	directlink.Extractor,
	recursive.Extractor,
	generic.Extractor,
}

// Fallback is tried on urls no other extractor supports when
// extractor.generic.enabled is set.
var Fallback = generic.FallbackExtractor
