package ext

import (
	"testing"

	"gdl/config"
	"gdl/enums"
	"gdl/ext/desktopography"
	"gdl/ext/directlink"
	"gdl/ext/generic"
	"gdl/ext/redgifs"
	"gdl/ext/wallhaven"
	"gdl/models"
	"gdl/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)

	extractor, groups, err := Find("https://wallhaven.cc/w/94x38z")
	require.NoError(t, err)
	assert.Same(t, wallhaven.ImageExtractor, extractor)
	assert.Equal(t, "94x38z", groups["id"])
	assert.Equal(t, "https://wallhaven.cc/w/94x38z", groups["match"])

	extractor, _, err = Find("https://example.org/file.png")
	require.NoError(t, err)
	assert.Same(t, directlink.Extractor, extractor)

	_, _, err = Find("https://example.org/page")
	require.Error(t, err)
	assert.True(t, util.IsKind(err, enums.ErrorKindNoExtractor))
	assert.Equal(t, 64, util.ExitCode(err))
}

func TestFindDisabledAndFallback(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)
	require.NoError(t, config.LoadBytes([]byte(`
extractor:
  directlink:
    disabled: true
  generic:
    enabled: true
`)))

	extractor, groups, err := Find("https://example.org/file.png")
	require.NoError(t, err)
	assert.Same(t, generic.FallbackExtractor, extractor)
	assert.Equal(t, "example.org", groups["domain"])
}

func TestFromQueue(t *testing.T) {
	config.Clear()
	url := "https://desktopography.net/portfolios/new-era/"

	extractor, groups, err := FromQueue(url, models.Metadata{models.ExtractorKey: desktopography.EntryExtractor})
	require.NoError(t, err)
	assert.Same(t, desktopography.EntryExtractor, extractor)
	assert.Equal(t, "new-era", groups["entry"])

	// a preselected class is used even when its pattern does not match
	extractor, groups, err = FromQueue("https://mirror.example.org/x", models.Metadata{models.ExtractorKey: "desktopography:entry"})
	require.NoError(t, err)
	assert.Same(t, desktopography.EntryExtractor, extractor)
	assert.Equal(t, map[string]string{"match": "https://mirror.example.org/x"}, groups)

	extractor, _, err = FromQueue(url, nil)
	require.NoError(t, err)
	assert.Same(t, desktopography.EntryExtractor, extractor)
}

func TestRegistry(t *testing.T) {
	seen := make(map[string]bool)
	for _, extractor := range List {
		assert.False(t, seen[extractor.CodeName], extractor.CodeName)
		seen[extractor.CodeName] = true
		require.NotNil(t, extractor.New, extractor.CodeName)
		if extractor.Example != "" {
			found, _, err := Find(extractor.Example)
			require.NoError(t, err, extractor.Example)
			assert.Same(t, extractor, found, extractor.Example)
		}
	}
	assert.Same(t, wallhaven.SearchExtractor, ByCodeName("wallhaven:search"))
	assert.Nil(t, ByCodeName("nope"))
	assert.Len(t, ByCategory("desktopography"), 3)
}

func TestFindPrefersSiteOverDirectLink(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)

	extractor, groups, err := Find("https://thumbs2.redgifs.com/SqueakyHappyFox.mp4")
	require.NoError(t, err)
	assert.Same(t, redgifs.ImageExtractor, extractor)
	assert.Equal(t, "SqueakyHappyFox", groups["id"])

	extractor, groups, err = Find("https://www.redgifs.com/users/someone")
	require.NoError(t, err)
	assert.Same(t, redgifs.UserExtractor, extractor)
	assert.Equal(t, "someone", groups["user"])
}
