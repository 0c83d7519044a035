package job

import (
	"os"
	"strings"
	"sync/atomic"

	"gdl/enums"
	"gdl/models"
	"gdl/util"
	"gdl/util/formatter"

	"github.com/pkg/errors"
)

const (
	textScheme = "text:"
	ytdlScheme = "ytdl:"
)

// DownloadJob stores every file url below the formatted target path.
type DownloadJob struct {
	Archive models.Archive
	// Config is copied for every download; Client is set per job.
	Config *models.DownloadConfig
	// Simulate resolves paths and updates nothing.
	Simulate bool

	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	bytes      atomic.Int64
}

func NewDownloadJob(archive models.Archive) *DownloadJob {
	return &DownloadJob{Archive: archive}
}

// Stats returns downloaded, skipped and failed file counts.
func (d *DownloadJob) Stats() (int64, int64, int64) {
	return d.downloaded.Load(), d.skipped.Load(), d.failed.Load()
}

func (d *DownloadJob) Bytes() int64 {
	return d.bytes.Load()
}

func (d *DownloadJob) HandleDirectory(job *Job, data models.Metadata) error {
	job.Logger().Debugf("directory: %s", job.Path().Directory())
	return nil
}

func (d *DownloadJob) HandleQueue(job *Job, url string, data models.Metadata) (bool, error) {
	return true, nil
}

func (d *DownloadJob) HandleURL(job *Job, url string, data models.Metadata) error {
	log := job.Logger()
	key := archiveKey(job.Extractor, data)
	if d.Archive != nil && key != "" {
		exists, err := d.Archive.Check(key)
		if err != nil {
			return errors.Wrap(err, "archive lookup failed")
		}
		if exists {
			log.Debugf("skipping %s: already in archive", key)
			d.result(job, enums.DownloadResultSkipped, 0)
			return nil
		}
	}

	path := job.Path().Build(url, data)
	if _, err := os.Stat(path); err == nil {
		log.Debugf("skipping %s: file exists", path)
		d.result(job, enums.DownloadResultSkipped, 0)
		return d.record(job, key, url)
	}
	if d.Simulate {
		log.Infof("%s", path)
		return nil
	}

	var (
		size int64
		err  error
	)
	switch {
	case strings.HasPrefix(url, textScheme):
		size, err = util.WriteTextFile(path, url[len(textScheme):])
	case strings.HasPrefix(url, ytdlScheme):
		job.opts.Shared.WarnOnce("ytdl", func() {
			log.Warnf("no downloader for %s urls", ytdlScheme)
		})
		d.result(job, enums.DownloadResultSkipped, 0)
		return nil
	default:
		size, err = util.DownloadFile(job.ctx.Context, url, path, d.configFor(job))
	}
	if err != nil {
		if job.ctx.Context != nil && job.ctx.Context.Err() != nil {
			return job.ctx.Context.Err()
		}
		log.Errorf("%s: %v", url, err)
		job.AddCode(util.ExitCode(err))
		d.result(job, enums.DownloadResultFailed, 0)
		return nil
	}
	log.Infof("%s", path)
	d.result(job, enums.DownloadResultDownloaded, size)
	return d.record(job, key, url)
}

func (d *DownloadJob) record(job *Job, key, url string) error {
	if d.Archive == nil || key == "" {
		return nil
	}
	return errors.Wrap(d.Archive.Add(key, job.Extractor.CodeName, url), "archive update failed")
}

func (d *DownloadJob) result(job *Job, result enums.DownloadResult, size int64) {
	switch result {
	case enums.DownloadResultDownloaded:
		d.downloaded.Add(1)
		d.bytes.Add(size)
	case enums.DownloadResultSkipped:
		d.skipped.Add(1)
	case enums.DownloadResultFailed:
		d.failed.Add(1)
	}
	job.opts.Metrics.Download(result, size)
}

type httpClientProvider interface {
	HTTPClient() models.HTTPClient
}

func (d *DownloadJob) configFor(job *Job) *models.DownloadConfig {
	var cfg models.DownloadConfig
	if d.Config != nil {
		cfg = *d.Config
	}
	if provider, ok := job.ctx.Session.(httpClientProvider); ok {
		cfg.Client = provider.HTTPClient()
	}
	return models.GetDownloadConfig(&cfg)
}

// archiveKey is ArchiveKeyField when the extractor supplied one, else
// the formatted ArchiveFmt. Keys are prefixed by category.
func archiveKey(extractor *models.Extractor, data models.Metadata) string {
	if key := data.String(models.ArchiveKeyField); key != "" {
		return extractor.Category + key
	}
	if extractor.ArchiveFmt == "" {
		return ""
	}
	key, err := formatter.Format(extractor.ArchiveFmt, data)
	if err != nil {
		return ""
	}
	return extractor.Category + key
}
