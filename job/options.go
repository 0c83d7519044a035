package job

import (
	"gdl/config"
	"gdl/enums"
	"gdl/metrics"
	"gdl/models"
	"gdl/util/networking"
)

const (
	defaultMaxDepth     = 8
	defaultPrefetchSize = 5
	maxRestarts         = 3
)

// Options are shared by a root job and every job it spawns.
type Options struct {
	QueueMode     enums.QueueMode
	ParallelQueue int
	MaxDepth      int
	MaxQueue      int
	Prefetch      int
	Restarts      int

	// ParentMetadata copies the public keys of a queue message into
	// every message of the child job.
	ParentMetadata bool

	Shared  *models.SharedState
	Metrics *metrics.Metrics

	// NewSession builds the request capability of each extractor.
	NewSession func(*models.Extractor) models.Requester
}

// OptionsFromConfig reads the job options of the config file.
func OptionsFromConfig() *Options {
	path := []string{"extractor"}
	get := func(key string, def any) any {
		return config.Interpolate(path, key, def)
	}
	opts := &Options{
		QueueMode:     enums.QueueMode(models.AsString(get("queue-mode", string(enums.QueueModeDepth)))),
		ParallelQueue: asInt(get("parallel-queue", 1), 1),
		MaxDepth:      asInt(get("max-depth", defaultMaxDepth), defaultMaxDepth),
		MaxQueue:      asInt(get("max-queue", 0), 0),
		Restarts:      maxRestarts,
	}
	switch prefetch := get("prefetch", false).(type) {
	case bool:
		if prefetch {
			opts.Prefetch = defaultPrefetchSize
		}
	default:
		opts.Prefetch = asInt(prefetch, 0)
	}
	opts.ParentMetadata, _ = models.AsBool(get("parent-metadata", false))
	return opts
}

func (opts *Options) ensure() {
	if opts.QueueMode != enums.QueueModeBreadth {
		opts.QueueMode = enums.QueueModeDepth
	}
	if opts.ParallelQueue < 1 {
		opts.ParallelQueue = 1
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.Restarts < 0 {
		opts.Restarts = 0
	}
	if opts.Shared == nil {
		opts.Shared = models.NewSharedState()
	}
	if opts.NewSession == nil {
		opts.NewSession = func(extractor *models.Extractor) models.Requester {
			return networking.NewSession(extractor)
		}
	}
}

func asInt(value any, def int) int {
	if n, ok := models.AsInt(value); ok {
		return n
	}
	return def
}
