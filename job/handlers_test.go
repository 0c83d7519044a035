package job

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"gdl/config"
	"gdl/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup map[string]any

func (l lookup) Lookup(key string) (any, bool) {
	value, ok := l[key]
	return value, ok
}

type memArchive struct {
	mu      sync.Mutex
	entries map[string]string
}

func (a *memArchive) Check(key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.entries[key]
	return ok, nil
}

func (a *memArchive) Add(key, extractor, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[key] = url
	return nil
}

func TestPathFormat(t *testing.T) {
	extractor := &models.Extractor{
		Category:     "wallhaven",
		DirectoryFmt: []string{"{category}", "{search[q]}"},
		FilenameFmt:  "{category}_{id}.{extension}",
	}
	p, err := NewPathFormat(extractor, lookup{"base-directory": "/data"})
	require.NoError(t, err)
	assert.Equal(t, "/data", p.Directory())

	data := models.Metadata{
		"category": "wallhaven",
		"search":   map[string]any{"q": "cats/dogs"},
		"id":       "abc",
	}
	p.SetDirectory(data)
	assert.Equal(t, filepath.Join("/data", "wallhaven", "cats_dogs"), p.Directory())
	assert.Equal(t,
		filepath.Join("/data", "wallhaven", "cats_dogs", "wallhaven_abc.png"),
		p.Build("https://w.wallhaven.cc/full/ab/abc.png", data),
	)

	p.Reset()
	assert.Equal(t, "/data", p.Directory())

	// missing fields leave no "None" segment behind
	p.SetDirectory(models.Metadata{"category": "wallhaven"})
	assert.Equal(t, filepath.Join("/data", "wallhaven"), p.Directory())
}

func TestPathFormatOverrides(t *testing.T) {
	extractor := &models.Extractor{Category: "directlink"}
	p, err := NewPathFormat(extractor, lookup{
		"base-directory": "/out",
		"directory":      []any{"{domain}", "{missing:?/x/}"},
		"filename":       "{name}-{num:>02}.{extension}",
	})
	require.NoError(t, err)

	data := models.Metadata{"domain": "example.org", "name": "pic", "num": 3, "extension": "jpg"}
	p.SetDirectory(data)
	assert.Equal(t, filepath.Join("/out", "example.org", "pic-03.jpg"), p.Build("https://example.org/pic.jpg", data))

	_, err = NewPathFormat(extractor, lookup{"filename": "{unclosed"})
	assert.Error(t, err)
}

func TestDownloadJob(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)
	base := t.TempDir()
	config.Set(nil, "base-directory", base)

	notes := &models.Extractor{
		Name:         "notes",
		CodeName:     "notes",
		Category:     "notes",
		URLPattern:   regexp.MustCompile(`^notes:`),
		DirectoryFmt: []string{"{category}", "{title}"},
		ArchiveFmt:   "{filename}",
		New: func(ctx *models.ExtractorContext) (models.Producer, error) {
			return models.FuncProducer(func(yield func(*models.Message, error) bool) {
				emit(yield,
					models.NewVersion(1),
					models.NewDirectory(models.Metadata{"title": "A/B"}),
					models.NewURL("text:hello", models.Metadata{"filename": "one", "extension": "txt"}),
					models.NewURL("text:world", models.Metadata{"filename": "two", "extension": "txt"}),
					models.NewURL("ytdl:https://video.test/1", models.Metadata{"filename": "three", "extension": "mp4"}),
				)
			}), nil
		},
	}

	archive := &memArchive{entries: make(map[string]string)}
	run := func() *DownloadJob {
		handler := NewDownloadJob(archive)
		j, err := NewWithExtractor("notes:x", notes, nil, handler, testOptions())
		require.NoError(t, err)
		require.True(t, j.Run(context.Background()).OK())
		return handler
	}

	handler := run()
	downloaded, skipped, failed := handler.Stats()
	assert.Equal(t, int64(2), downloaded)
	assert.Equal(t, int64(1), skipped)
	assert.Equal(t, int64(0), failed)
	assert.Equal(t, int64(len("hello")+len("world")), handler.Bytes())

	content, err := os.ReadFile(filepath.Join(base, "notes", "A_B", "one.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.Contains(t, archive.entries, "notesone")
	assert.Contains(t, archive.entries, "notestwo")

	handler = run()
	downloaded, skipped, _ = handler.Stats()
	assert.Equal(t, int64(0), downloaded)
	assert.Equal(t, int64(3), skipped)
}

func TestDownloadJobExistingFile(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)
	base := t.TempDir()
	config.Set(nil, "base-directory", base)

	target := filepath.Join(base, "fake", "single", "kept.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	single := fake("single", `^single:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield, models.NewVersion(1), models.NewURL("text:new", models.Metadata{
			"filename":             "kept",
			"extension":            "txt",
			models.ArchiveKeyField: "kept",
		}))
	})
	single.DirectoryFmt = []string{"{category}", "{subcategory}"}

	archive := &memArchive{entries: make(map[string]string)}
	handler := NewDownloadJob(archive)
	j, err := NewWithExtractor("single:x", single, nil, handler, testOptions())
	require.NoError(t, err)
	require.True(t, j.Run(context.Background()).OK())

	_, skipped, _ := handler.Stats()
	assert.Equal(t, int64(1), skipped)
	content, _ := os.ReadFile(target)
	assert.Equal(t, "old", string(content))
	assert.Contains(t, archive.entries, "fakekept")
}

func TestKeywordJob(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)

	extractor := fake("kw", `^kw:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield,
			models.NewVersion(1),
			models.NewDirectory(models.Metadata{"title": "T", "search": map[string]any{"q": "cats"}}),
			models.NewURL("file:1", models.Metadata{"id": 1, "_hidden": "x"}),
			models.NewURL("file:2", models.Metadata{"id": 2}),
		)
	})

	var out bytes.Buffer
	j, err := NewWithExtractor("kw:x", extractor, nil, NewKeywordJob(&out), testOptions())
	require.NoError(t, err)
	outcome := j.Run(context.Background())
	assert.True(t, outcome.OK())

	expected := "Keywords for directory names:\n" +
		"-----------------------------\n" +
		"category\n  fake\n" +
		"search[q]\n  cats\n" +
		"subcategory\n  kw\n" +
		"title\n  T\n" +
		"\n" +
		"Keywords for filenames and --filter:\n" +
		"------------------------------------\n" +
		"category\n  fake\n" +
		"id\n  1\n" +
		"subcategory\n  kw\n" +
		"\n"
	assert.Equal(t, expected, out.String())
}

func TestHashJob(t *testing.T) {
	config.Clear()
	t.Cleanup(config.Clear)

	sums := func(title string) (string, string, int) {
		extractor := fake("hash", `^hash:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
			emit(yield,
				models.NewVersion(1),
				models.NewDirectory(models.Metadata{"title": title, "a": 1, "b": 2}),
				models.NewURL("https://x.test/1.jpg", nil),
				models.NewQueue("https://x.test/more", nil),
			)
		})
		handler := NewHashJob()
		j, err := NewWithExtractor("hash:x", extractor, nil, handler, testOptions())
		require.NoError(t, err)
		require.True(t, j.Run(context.Background()).OK())
		return handler.Sums()
	}

	urls1, meta1, count := sums("one")
	urls2, meta2, _ := sums("one")
	urls3, meta3, _ := sums("two")

	assert.Equal(t, 2, count)
	assert.Equal(t, urls1, urls2)
	assert.Equal(t, meta1, meta2)
	assert.Equal(t, urls1, urls3)
	assert.NotEqual(t, meta1, meta3)
	assert.Len(t, urls1, 40)
}

func TestURLJobPrintQueue(t *testing.T) {
	extractor := tree(map[string][]string{"root": {"a"}})
	var out bytes.Buffer
	handler := NewURLJob(&out)
	handler.PrintQueue = true

	config.Clear()
	t.Cleanup(config.Clear)
	j, err := NewWithExtractor("tree:root", extractor, extractor.Match("tree:root"), handler, testOptions())
	require.NoError(t, err)
	require.True(t, j.Run(context.Background()).OK())
	assert.Equal(t, "file:root\n| tree:a\n", out.String())
}
