package job

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"gdl/config"
	"gdl/enums"
	"gdl/ext/exttest"
	"gdl/metrics"
	"gdl/models"
	"gdl/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake builds an extractor around fn.
func fake(name, pattern string, fn func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool)) *models.Extractor {
	return &models.Extractor{
		Name:        name,
		CodeName:    name,
		Category:    "fake",
		Subcategory: name,
		URLPattern:  regexp.MustCompile(pattern),
		New: func(ctx *models.ExtractorContext) (models.Producer, error) {
			return models.FuncProducer(func(yield func(*models.Message, error) bool) {
				fn(ctx, yield)
			}), nil
		},
	}
}

func emit(yield func(*models.Message, error) bool, messages ...*models.Message) bool {
	for _, msg := range messages {
		if !yield(msg, nil) {
			return false
		}
	}
	return true
}

// tree yields one file per url and queues the children listed for it.
func tree(children map[string][]string) *models.Extractor {
	var extractor *models.Extractor
	extractor = fake("tree", `^tree:(?P<node>\w+)$`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		node := ctx.Group("node")
		if !emit(yield, models.NewVersion(1), models.NewURL("file:"+node, nil)) {
			return
		}
		for _, child := range children[node] {
			queue := models.NewQueue("tree:"+child, models.Metadata{models.ExtractorKey: extractor})
			if !yield(queue, nil) {
				return
			}
		}
	})
	return extractor
}

func testOptions() *Options {
	return &Options{
		Restarts:   maxRestarts,
		NewSession: func(*models.Extractor) models.Requester {
			return &exttest.Session{}
		},
	}
}

func runURLs(t *testing.T, extractor *models.Extractor, url string, opts *Options) ([]string, Outcome) {
	t.Helper()
	config.Clear()
	t.Cleanup(config.Clear)

	var out bytes.Buffer
	j, err := NewWithExtractor(url, extractor, extractor.Match(url), NewURLJob(&out), opts)
	require.NoError(t, err)
	outcome := j.Run(context.Background())
	return strings.Fields(out.String()), outcome
}

func TestQueueExtractorOverride(t *testing.T) {
	session := &exttest.Session{Pages: map[string]string{
		"https://other.test/page/42": `<img src="https://cdn.other.test/42.png">`,
	}}
	child := fake("child", `^https://other\.test/page/(?P<id>\d+)$`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		resp, err := ctx.Request(ctx.MatchedURL, nil)
		if err != nil {
			yield(nil, err)
			return
		}
		src := regexp.MustCompile(`src="([^"]+)"`).FindStringSubmatch(resp.Text())[1]
		emit(yield,
			models.NewVersion(1),
			models.NewDirectory(models.Metadata{"id": ctx.Group("id"), "from": ctx.ParentMetadata.String("from")}),
			models.NewURL(src, nil),
		)
	})
	root := fake("root", `^root:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield,
			models.NewVersion(1),
			models.NewQueue("https://other.test/page/42", models.Metadata{
				models.ExtractorKey: child,
				"from":              "root",
			}),
		)
	})

	opts := testOptions()
	opts.NewSession = func(*models.Extractor) models.Requester { return session }
	urls, outcome := runURLs(t, root, "root:x", opts)

	assert.True(t, outcome.OK())
	assert.Equal(t, []string{"https://cdn.other.test/42.png"}, urls)
	assert.Equal(t, []string{"https://other.test/page/42"}, session.Requests)
}

func TestQueueUnresolvable(t *testing.T) {
	root := fake("root", `^root:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield, models.NewVersion(1), models.NewQueue("https://unknown.test/", nil), models.NewURL("file:after", nil))
	})
	urls, outcome := runURLs(t, root, "root:x", testOptions())

	assert.Equal(t, []string{"file:after"}, urls)
	assert.Equal(t, enums.OutcomeStatusOK, outcome.Status)
	assert.Equal(t, 64, outcome.ExitCode())
}

func TestDepthGuard(t *testing.T) {
	var loop *models.Extractor
	loop = fake("loop", `^loop:(?P<n>\d+)$`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		var n int
		fmt.Sscan(ctx.Group("n"), &n)
		emit(yield,
			models.NewVersion(1),
			models.NewURL(fmt.Sprintf("file:%d", n), nil),
			models.NewQueue(fmt.Sprintf("loop:%d", n+1), models.Metadata{models.ExtractorKey: loop}),
		)
	})

	opts := testOptions()
	opts.MaxDepth = 2
	urls, outcome := runURLs(t, loop, "loop:0", opts)

	assert.Equal(t, []string{"file:0", "file:1", "file:2"}, urls)
	assert.True(t, outcome.OK())
}

func TestVisitedURLs(t *testing.T) {
	extractor := tree(map[string][]string{
		"root": {"a", "a", "root"},
		"a":    {"root"},
	})
	urls, _ := runURLs(t, extractor, "tree:root", testOptions())
	assert.Equal(t, []string{"file:root", "file:a"}, urls)
}

func TestQueueModes(t *testing.T) {
	children := map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1"},
		"b":    {"b1"},
	}

	urls, _ := runURLs(t, tree(children), "tree:root", testOptions())
	assert.Equal(t, []string{"file:root", "file:a", "file:a1", "file:b", "file:b1"}, urls)

	opts := testOptions()
	opts.QueueMode = enums.QueueModeBreadth
	urls, _ = runURLs(t, tree(children), "tree:root", opts)
	assert.Equal(t, []string{"file:root", "file:a", "file:b", "file:a1", "file:b1"}, urls)
}

func TestParallelQueue(t *testing.T) {
	children := map[string][]string{"root": {}}
	expected := []string{"file:root"}
	for i := range 12 {
		node := fmt.Sprintf("n%d", i)
		children["root"] = append(children["root"], node)
		expected = append(expected, "file:"+node)
	}

	opts := testOptions()
	opts.QueueMode = enums.QueueModeBreadth
	opts.ParallelQueue = 4
	urls, outcome := runURLs(t, tree(children), "tree:root", opts)

	assert.True(t, outcome.OK())
	assert.ElementsMatch(t, expected, urls)
}

func TestSignals(t *testing.T) {
	signals := map[string]error{
		"stop":      util.Stop("enough"),
		"terminate": util.Terminate("all done"),
	}
	var node *models.Extractor
	node = fake("node", `^node:(?P<name>\w+)$`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		name := ctx.Group("name")
		if name == "root" {
			emit(yield,
				models.NewVersion(1),
				models.NewQueue("node:stop", models.Metadata{models.ExtractorKey: node}),
				models.NewQueue("node:after", models.Metadata{models.ExtractorKey: node}),
				models.NewQueue("node:terminate", models.Metadata{models.ExtractorKey: node}),
				models.NewQueue("node:never", models.Metadata{models.ExtractorKey: node}),
			)
			return
		}
		if !emit(yield, models.NewVersion(1), models.NewURL("file:"+name, nil)) {
			return
		}
		if err, ok := signals[name]; ok {
			yield(nil, err)
			return
		}
	})

	urls, outcome := runURLs(t, node, "node:root", testOptions())

	assert.Equal(t, []string{"file:stop", "file:after", "file:terminate"}, urls)
	assert.Equal(t, enums.OutcomeStatusSignal, outcome.Status)
	assert.True(t, outcome.Terminated())
	assert.Equal(t, 0, outcome.ExitCode())
}

func TestErrorCodesAccumulate(t *testing.T) {
	var node *models.Extractor
	node = fake("node", `^node:(?P<name>\w+)$`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		switch ctx.Group("name") {
		case "root":
			emit(yield,
				models.NewVersion(1),
				models.NewQueue("node:missing", models.Metadata{models.ExtractorKey: node}),
				models.NewQueue("node:ok", models.Metadata{models.ExtractorKey: node}),
			)
		case "missing":
			yield(nil, util.NewNotFoundError("gallery"))
		default:
			emit(yield, models.NewVersion(1), models.NewURL("file:ok", nil))
		}
	})

	urls, outcome := runURLs(t, node, "node:root", testOptions())

	assert.Equal(t, []string{"file:ok"}, urls)
	assert.Equal(t, enums.OutcomeStatusOK, outcome.Status)
	assert.False(t, outcome.OK())
	assert.Equal(t, 8, outcome.ExitCode())
}

func TestUnsupportedVersion(t *testing.T) {
	extractor := fake("v2", `^v2:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield, models.NewVersion(2), models.NewURL("file:x", nil))
	})
	urls, outcome := runURLs(t, extractor, "v2:x", testOptions())

	assert.Empty(t, urls)
	assert.Equal(t, enums.OutcomeStatusError, outcome.Status)
	assert.ErrorIs(t, outcome.Err, util.ErrUnsupportedVersion)
	assert.Equal(t, 32, outcome.ExitCode())
}

func TestRestart(t *testing.T) {
	var runs atomic.Int32
	extractor := fake("restart", `^restart:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		if runs.Add(1) == 1 {
			emit(yield, models.NewVersion(1), models.NewURL("file:partial", nil))
			yield(nil, util.Restart("session expired"))
			return
		}
		emit(yield, models.NewVersion(1), models.NewURL("file:full", nil))
	})

	urls, outcome := runURLs(t, extractor, "restart:x", testOptions())
	assert.Equal(t, []string{"file:partial", "file:full"}, urls)
	assert.True(t, outcome.OK())
	assert.Equal(t, int32(2), runs.Load())

	forever := fake("forever", `^forever:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		yield(nil, util.Restart("again"))
	})
	opts := testOptions()
	opts.Restarts = 2
	_, outcome = runURLs(t, forever, "forever:x", opts)
	assert.Equal(t, enums.OutcomeStatusError, outcome.Status)
	assert.Equal(t, 4, outcome.ExitCode())
}

func TestRestartBreadth(t *testing.T) {
	leaves := tree(nil)
	var runs atomic.Int32
	extractor := fake("branch", `^branch:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		if !emit(yield,
			models.NewVersion(1),
			models.NewQueue("tree:a", models.Metadata{models.ExtractorKey: leaves}),
			models.NewQueue("tree:b", models.Metadata{models.ExtractorKey: leaves}),
		) {
			return
		}
		if runs.Add(1) == 1 {
			yield(nil, util.Restart("session expired"))
		}
	})

	opts := testOptions()
	opts.QueueMode = enums.QueueModeBreadth
	urls, outcome := runURLs(t, extractor, "branch:x", opts)
	assert.Equal(t, []string{"file:a", "file:b"}, urls)
	assert.True(t, outcome.OK())
	assert.Equal(t, int32(2), runs.Load())
}

func TestParentMetadata(t *testing.T) {
	seen := make(chan models.Metadata, 1)
	child := fake("child", `^child:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield, models.NewVersion(1), models.NewURL("file:child", models.Metadata{"own": 1}))
	})
	root := fake("root", `^root:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield, models.NewVersion(1), models.NewQueue("child:x", models.Metadata{
			models.ExtractorKey: child,
			"gallery":           "g1",
			"_private":          true,
		}))
	})

	config.Clear()
	t.Cleanup(config.Clear)
	opts := testOptions()
	opts.ParentMetadata = true
	handler := &recorder{urls: seen}
	j, err := NewWithExtractor("root:x", root, nil, handler, opts)
	require.NoError(t, err)
	require.True(t, j.Run(context.Background()).OK())

	data := <-seen
	assert.Equal(t, "g1", data["gallery"])
	assert.Equal(t, 1, data["own"])
	assert.Equal(t, "child", data["subcategory"])
	assert.NotContains(t, data, "_private")
}

type recorder struct {
	URLJob
	urls chan models.Metadata
}

func (r *recorder) HandleURL(job *Job, url string, data models.Metadata) error {
	r.urls <- data
	return nil
}

type directoryRecorder struct {
	URLJob
	albums      []any
	directories []string
}

func (r *directoryRecorder) HandleURL(job *Job, url string, data models.Metadata) error {
	r.albums = append(r.albums, job.Directory()["album"])
	r.directories = append(r.directories, job.Path().Directory())
	return nil
}

func TestDirectoryScoping(t *testing.T) {
	extractor := fake("album", `^album:`, func(ctx *models.ExtractorContext, yield func(*models.Message, error) bool) {
		emit(yield,
			models.NewVersion(1),
			models.NewURL("file:0", nil),
			models.NewDirectory(models.Metadata{"album": "A"}),
			models.NewURL("file:1", nil),
			models.NewDirectory(models.Metadata{"album": "B"}),
			models.NewURL("file:2", nil),
		)
	})
	extractor.DirectoryFmt = []string{"{category}", "{album}"}

	config.Clear()
	t.Cleanup(config.Clear)
	handler := &directoryRecorder{}
	j, err := NewWithExtractor("album:x", extractor, nil, handler, testOptions())
	require.NoError(t, err)
	require.True(t, j.Run(context.Background()).OK())

	base := util.ExpandPath(config.Env.BaseDirectory)
	assert.Equal(t, []any{nil, "A", "B"}, handler.albums)
	assert.Equal(t, []string{
		filepath.Join(base, "fake"),
		filepath.Join(base, "fake", "A"),
		filepath.Join(base, "fake", "B"),
	}, handler.directories)
}

func TestJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := testOptions()
	opts.Metrics = metrics.NewMetrics(reg)

	_, outcome := runURLs(t, tree(map[string][]string{"root": {"a"}}), "tree:root", opts)
	require.True(t, outcome.OK())

	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.JobsTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.MessagesTotal.WithLabelValues("url", "tree")))
	assert.Equal(t, 0.0, testutil.ToFloat64(opts.Metrics.QueueDepth))
}

func TestPrefetch(t *testing.T) {
	var produced atomic.Int32
	seq := func(yield func(*models.Message, error) bool) {
		for i := range 100 {
			produced.Add(1)
			if !yield(models.NewURL(fmt.Sprintf("file:%d", i), nil), nil) {
				return
			}
		}
	}

	var got []string
	for msg, err := range Prefetch(context.Background(), seq, 5) {
		require.NoError(t, err)
		got = append(got, msg.URL)
	}
	assert.Len(t, got, 100)
	assert.Equal(t, "file:0", got[0])
	assert.Equal(t, "file:99", got[99])

	produced.Store(0)
	count := 0
	for range Prefetch(context.Background(), seq, 5) {
		count++
		if count == 3 {
			break
		}
	}
	// returns only after the producer has stopped
	assert.LessOrEqual(t, produced.Load(), int32(3+5+1))
}

func TestPrefetchError(t *testing.T) {
	boom := util.NewExtractionError("boom")
	seq := func(yield func(*models.Message, error) bool) {
		if !yield(models.NewVersion(1), nil) {
			return
		}
		yield(nil, boom)
	}

	var errs []error
	var msgs int
	for msg, err := range Prefetch(context.Background(), seq, 2) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		require.NotNil(t, msg)
		msgs++
	}
	assert.Equal(t, 1, msgs)
	assert.Equal(t, []error{boom}, errs)
}

func TestPrefetchedJob(t *testing.T) {
	opts := testOptions()
	opts.Prefetch = 2
	urls, outcome := runURLs(t, tree(map[string][]string{"root": {"a", "b"}}), "tree:root", opts)
	assert.True(t, outcome.OK())
	assert.Equal(t, []string{"file:root", "file:a", "file:b"}, urls)
}

func TestPrefetchCopiesMessages(t *testing.T) {
	shared := models.Metadata{"n": 0}
	seq := func(yield func(*models.Message, error) bool) {
		for i := range 3 {
			shared["n"] = i
			msg := models.NewURL("file:x", shared)
			if !yield(msg, nil) {
				return
			}
		}
	}
	var seen []any
	for msg := range Prefetch(context.Background(), seq, 5) {
		seen = append(seen, msg.Metadata["n"])
	}
	assert.Equal(t, []any{0, 1, 2}, seen)
}
