package job

import (
	"context"
	"sync"

	"gdl/config"
	"gdl/enums"
	"gdl/ext"
	"gdl/models"
	"gdl/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler receives the messages of a job in stream order. Handlers
// are shared by a job and all jobs spawned from its queue, which may
// run concurrently in breadth mode.
type Handler interface {
	HandleDirectory(job *Job, data models.Metadata) error
	HandleURL(job *Job, url string, data models.Metadata) error
	// HandleQueue reports whether url gets a child job.
	HandleQueue(job *Job, url string, data models.Metadata) (bool, error)
}

// Job drives one extractor instance and dispatches its messages.
type Job struct {
	ID        string
	URL       string
	Extractor *models.Extractor
	Parent    *Job
	Depth     int

	opts    *Options
	handler Handler
	ctx     *models.ExtractorContext
	path    *PathFormat
	log     *zap.SugaredLogger
	visited *visitedSet

	directory models.Metadata
	queued    int

	mu      sync.Mutex
	pending []*Job
	code    int
}

// New resolves url to an extractor and returns its job. An
// unsupported url fails here, before any request is made.
func New(url string, handler Handler, opts *Options) (*Job, error) {
	extractor, groups, err := ext.Find(url)
	if err != nil {
		return nil, err
	}
	return NewWithExtractor(url, extractor, groups, handler, opts)
}

// NewWithExtractor builds a job for an already resolved extractor.
func NewWithExtractor(
	url string,
	extractor *models.Extractor,
	groups map[string]string,
	handler Handler,
	opts *Options,
) (*Job, error) {
	if opts == nil {
		opts = OptionsFromConfig()
	}
	opts.ensure()
	visited := newVisitedSet()
	visited.add(url)
	return newJob(url, extractor, groups, handler, opts, nil, nil, visited)
}

func newJob(
	url string,
	extractor *models.Extractor,
	groups map[string]string,
	handler Handler,
	opts *Options,
	parent *Job,
	parentMetadata models.Metadata,
	visited *visitedSet,
) (*Job, error) {
	if groups == nil {
		groups = map[string]string{"match": url}
	}
	j := &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Extractor: extractor,
		Parent:    parent,
		opts:      opts,
		handler:   handler,
		log:       zap.S().Named(extractor.CodeName),
		visited:   visited,
	}
	if parent != nil {
		j.Depth = parent.Depth + 1
	}
	j.ctx = &models.ExtractorContext{
		MatchedURL:     url,
		MatchedGroups:  groups,
		Extractor:      extractor,
		Session:        opts.NewSession(extractor),
		Options:        config.ForExtractor(extractor.Category, extractor.Subcategory),
		ParentMetadata: parentMetadata,
		Shared:         opts.Shared,
		Log:            j.log,
	}
	path, err := NewPathFormat(extractor, j.ctx.Options)
	if err != nil {
		return nil, err
	}
	j.path = path
	return j, nil
}

// Context is the context the extractor instance was built with.
func (j *Job) Context() *models.ExtractorContext {
	return j.ctx
}

// Directory returns the metadata of the current directory scope.
func (j *Job) Directory() models.Metadata {
	return j.directory
}

func (j *Job) Path() *PathFormat {
	return j.path
}

func (j *Job) Logger() *zap.SugaredLogger {
	return j.log
}

// AddCode records exit bits without failing the job.
func (j *Job) AddCode(code int) {
	j.mu.Lock()
	j.code |= code
	j.mu.Unlock()
}

func (j *Job) exitCode() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.code
}

// Run drives the extractor to exhaustion. A restart signal starts
// the extraction over, at most Options.Restarts times.
func (j *Job) Run(ctx context.Context) Outcome {
	j.ctx.Context = ctx
	j.log.Debugf("job %s: %s", j.ID, j.URL)

	var err error
	for attempt := 0; ; attempt++ {
		err = j.dispatch(ctx)
		signal, ok := util.AsSignal(err)
		if !ok || signal.Kind != enums.SignalKindRestart {
			break
		}
		if attempt >= j.opts.Restarts {
			err = util.NewExtractionError("giving up after %d restarts", attempt)
			break
		}
		j.log.Infof("restarting extraction: %s", signal.Reason)
		j.reset()
	}

	outcome := outcomeFor(err, j.exitCode())
	j.report(outcome)
	j.opts.Metrics.Job(outcome.Status)
	return outcome
}

func (j *Job) dispatch(ctx context.Context) error {
	producer, err := j.Extractor.New(j.ctx)
	if err != nil {
		return err
	}
	if initializer, ok := producer.(models.Initializer); ok {
		if err := initializer.Initialize(); err != nil {
			return err
		}
	}

	items := producer.Items()
	if j.opts.Prefetch > 0 {
		items = Prefetch(ctx, items, j.opts.Prefetch)
	}
	for msg, err := range items {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.handle(ctx, msg); err != nil {
			return err
		}
	}
	return j.runPending(ctx)
}

func (j *Job) handle(ctx context.Context, msg *models.Message) error {
	j.opts.Metrics.Message(msg.Kind, j.Extractor.CodeName)

	switch msg.Kind {
	case enums.MessageKindVersion:
		if msg.Version != 1 {
			return util.ErrUnsupportedVersion
		}
	case enums.MessageKindDirectory:
		return j.setDirectory(j.prepare(msg.Metadata))
	case enums.MessageKindURL:
		if j.directory == nil {
			if err := j.setDirectory(j.prepare(nil)); err != nil {
				return err
			}
		}
		return j.handler.HandleURL(j, msg.URL, j.prepare(msg.Metadata))
	case enums.MessageKindQueue:
		return j.enqueue(ctx, msg.URL, j.prepare(msg.Metadata))
	}
	return nil
}

// prepare copies metadata and adds the keys every message carries.
func (j *Job) prepare(metadata models.Metadata) models.Metadata {
	data := metadata.Clone()
	if data == nil {
		data = make(models.Metadata)
	}
	if j.opts.ParentMetadata {
		for key, value := range j.ctx.ParentMetadata.Public() {
			if _, ok := data[key]; !ok {
				data[key] = value
			}
		}
	}
	data["category"] = j.Extractor.Category
	data["subcategory"] = j.Extractor.Subcategory
	return data
}

func (j *Job) setDirectory(data models.Metadata) error {
	j.directory = data
	j.path.SetDirectory(data)
	return j.handler.HandleDirectory(j, data)
}

func (j *Job) enqueue(ctx context.Context, url string, data models.Metadata) error {
	follow, err := j.handler.HandleQueue(j, url, data)
	if err != nil || !follow {
		return err
	}
	if j.opts.MaxQueue > 0 && j.queued >= j.opts.MaxQueue {
		j.opts.Shared.WarnOnce("max-queue:"+j.ID, func() {
			j.log.Warnf("max-queue of %d reached, skipping remaining urls", j.opts.MaxQueue)
		})
		return nil
	}
	if j.Depth >= j.opts.MaxDepth {
		j.log.Warnf("%v, skipping %s", util.ErrMaxDepth, url)
		return nil
	}
	if !j.visited.add(url) {
		j.log.Debugf("skipping already queued url %s", url)
		return nil
	}
	j.queued++

	extractor, groups, err := ext.FromQueue(url, data)
	if err != nil {
		j.log.Errorf("%v", err)
		j.AddCode(util.ExitCode(err))
		return nil
	}
	child, err := newJob(url, extractor, groups, j.handler, j.opts, j, data, j.visited)
	if err != nil {
		j.log.Errorf("%s: %v", url, err)
		j.AddCode(util.ExitCode(err))
		return nil
	}

	if j.opts.QueueMode == enums.QueueModeBreadth {
		root := j.root()
		root.mu.Lock()
		root.pending = append(root.pending, child)
		root.mu.Unlock()
		return nil
	}
	return j.runChild(ctx, child)
}

// runPending drains the breadth queue level by level. Only the root
// job holds one.
func (j *Job) runPending(ctx context.Context) error {
	if j.Parent != nil {
		return nil
	}
	for {
		j.mu.Lock()
		batch := j.pending
		j.pending = nil
		j.mu.Unlock()
		if len(batch) == 0 {
			return nil
		}
		if err := j.runBatch(ctx, batch); err != nil {
			return err
		}
	}
}

func (j *Job) runBatch(ctx context.Context, batch []*Job) error {
	if j.opts.ParallelQueue <= 1 {
		for _, child := range batch {
			if err := j.runChild(ctx, child); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.opts.ParallelQueue)
	for _, child := range batch {
		g.Go(func() error {
			return j.runChild(gctx, child)
		})
	}
	return g.Wait()
}

// runChild runs child and folds its outcome into j. Only a
// terminate signal travels further up.
func (j *Job) runChild(ctx context.Context, child *Job) error {
	j.opts.Metrics.EnterQueue()
	outcome := child.Run(ctx)
	j.opts.Metrics.LeaveQueue()

	if ctx.Err() != nil && errors.Is(outcome.Err, ctx.Err()) {
		// a sibling terminated the run
		return nil
	}
	j.AddCode(outcome.Code)
	if outcome.Terminated() {
		return outcome.Signal
	}
	return nil
}

func (j *Job) root() *Job {
	root := j
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

func (j *Job) reset() {
	j.directory = nil
	j.queued = 0
	j.path.Reset()
	j.mu.Lock()
	pending := j.pending
	j.pending = nil
	j.mu.Unlock()
	// the next attempt queues these again
	for _, child := range pending {
		j.visited.remove(child.URL)
	}
}

func (j *Job) report(outcome Outcome) {
	switch outcome.Status {
	case enums.OutcomeStatusError:
		j.log.Errorf("%s: %v", j.URL, outcome.Err)
	case enums.OutcomeStatusSignal:
		j.log.Debugf("%s: %v", j.URL, outcome.Signal)
	}
}

type visitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{urls: make(map[string]struct{})}
}

// add reports whether url was not in the set yet.
func (v *visitedSet) add(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.urls[url]; ok {
		return false
	}
	v.urls[url] = struct{}{}
	return true
}

func (v *visitedSet) remove(url string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.urls, url)
}
