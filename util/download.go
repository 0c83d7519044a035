package util

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gdl/models"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var defaultDownloadClient = &http.Client{}

const partSuffix = ".part"

// DownloadFile fetches fileURL into filePath and returns the number of
// bytes written. Data goes to "<filePath>.part" first and is renamed
// once complete. Servers accepting range requests are fetched in
// concurrent chunks.
func DownloadFile(
	ctx context.Context,
	fileURL string,
	filePath string,
	config *models.DownloadConfig,
) (int64, error) {
	config = models.GetDownloadConfig(config)
	zap.S().Debugf("invoking downloader: %s", fileURL)

	if err := EnsureDownloadDir(filepath.Dir(filePath)); err != nil {
		return 0, err
	}
	partPath := filePath + partSuffix

	fileSize, ranged := getFileSize(ctx, fileURL, config)

	var written int64
	var err error
	if ranged && fileSize > config.ChunkSize {
		err = runChunkedDownload(ctx, fileURL, partPath, fileSize, config)
		written = int64(fileSize)
	} else {
		written, err = downloadFile(ctx, fileURL, partPath, config)
	}
	if err != nil {
		os.Remove(partPath)
		return 0, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if err := os.Rename(partPath, filePath); err != nil {
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}
	zap.S().Debugf("downloaded %s (%s)", filePath, humanize.Bytes(uint64(written)))
	return written, nil
}

// WriteTextFile stores inline "text:" content.
func WriteTextFile(filePath string, content string) (int64, error) {
	if err := EnsureDownloadDir(filepath.Dir(filePath)); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return int64(len(content)), nil
}

func EnsureDownloadDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			zap.S().Debugf("creating directory: %s", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		} else {
			return fmt.Errorf("error accessing directory: %w", err)
		}
	}
	return nil
}

func clientFor(config *models.DownloadConfig) models.HTTPClient {
	if config.Client != nil {
		return config.Client
	}
	return defaultDownloadClient
}

func newDownloadRequest(
	ctx context.Context,
	method string,
	fileURL string,
	config *models.DownloadConfig,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}
	for _, cookie := range config.Cookies {
		req.AddCookie(cookie)
	}
	return req, nil
}

func runChunkedDownload(
	ctx context.Context,
	fileURL string,
	filePath string,
	fileSize int,
	config *models.DownloadConfig,
) error {
	// reduce concurrency if it's greater
	// than the number of available CPUs
	maxProcs := runtime.GOMAXPROCS(0)
	concurrency := min(config.Concurrency, int(math.Max(1, float64(maxProcs-1))))

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := file.Truncate(int64(fileSize)); err != nil {
		return fmt.Errorf("failed to allocate file space: %w", err)
	}

	numChunks := int(math.Ceil(float64(fileSize) / float64(config.ChunkSize)))

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	var downloadErr error
	var errOnce sync.Once
	var completedBytes atomic.Int64

	downloadCtx, cancelDownload := context.WithCancel(ctx)
	defer cancelDownload()

	for i := range numChunks {
		wg.Add(1)

		go func(chunkIndex int) {
			defer wg.Done()

			start := chunkIndex * config.ChunkSize
			end := min(start+config.ChunkSize, fileSize) - 1

			// respect concurrency limit
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-downloadCtx.Done():
				return
			}

			err := downloadChunkToFile(downloadCtx, fileURL, file, start, end, config)
			if err != nil {
				errOnce.Do(func() {
					downloadErr = fmt.Errorf("chunk %d: %w", chunkIndex, err)
					cancelDownload()
				})
				return
			}

			done := completedBytes.Add(int64(end - start + 1))
			if config.ProgressUpdater != nil {
				config.ProgressUpdater(float64(done) / float64(fileSize))
			}
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return downloadErr
}

// getFileSize reports the remote size and whether the server
// honours range requests.
func getFileSize(
	ctx context.Context,
	fileURL string,
	config *models.DownloadConfig,
) (int, bool) {
	size, ranged, err := getFileSizeWithHead(ctx, fileURL, config)
	if err != nil {
		zap.S().Debugf("HEAD request failed: %v, trying fallback", err)
	} else if size > 0 && ranged {
		return size, true
	}
	rangeSize, err := getFileSizeWithRange(ctx, fileURL, config)
	if err != nil {
		zap.S().Debugf("range probe failed: %v", err)
		return size, false
	}
	if rangeSize > 0 {
		return rangeSize, true
	}
	return size, false
}

func getFileSizeWithHead(
	ctx context.Context,
	fileURL string,
	config *models.DownloadConfig,
) (int, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	req, err := newDownloadRequest(reqCtx, http.MethodHead, fileURL, config)
	if err != nil {
		return 0, false, err
	}
	resp, err := clientFor(config).Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("failed to execute HEAD request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false, fmt.Errorf("HEAD request failed: status code %d", resp.StatusCode)
	}
	ranged := strings.EqualFold(resp.Header.Get("Accept-Ranges"), "bytes")
	return int(max(resp.ContentLength, 0)), ranged, nil
}

func getFileSizeWithRange(
	ctx context.Context,
	fileURL string,
	config *models.DownloadConfig,
) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	req, err := newDownloadRequest(reqCtx, http.MethodGet, fileURL, config)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := clientFor(config).Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return 0, nil
	}
	// format is typically "bytes 0-0/1234" where 1234 is the total size
	if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
		parts := strings.Split(contentRange, "/")
		if len(parts) == 2 {
			size, err := strconv.Atoi(parts[1])
			if err == nil && size > 0 {
				return size, nil
			}
		}
	}
	return 0, nil
}

func downloadChunkToFile(
	ctx context.Context,
	fileURL string,
	file *os.File,
	start int,
	end int,
	config *models.DownloadConfig,
) error {
	var lastErr error

	for attempt := 0; attempt <= config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}
		err := downloadAndWriteChunk(ctx, fileURL, file, start, end, config)
		if err == nil {
			return nil
		}
		zap.S().Debugf("chunk %d-%d download failed: %v", start, end, err)
		lastErr = err
	}

	return fmt.Errorf("all %d attempts failed: %w", config.RetryAttempts+1, lastErr)
}

func downloadAndWriteChunk(
	ctx context.Context,
	fileURL string,
	file *os.File,
	start int,
	end int,
	config *models.DownloadConfig,
) error {
	reqCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	req, err := newDownloadRequest(reqCtx, http.MethodGet, fileURL, config)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := clientFor(config).Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// WriteAt is safe for concurrent use on distinct ranges
	writer := io.NewOffsetWriter(file, int64(start))
	n, err := io.CopyBuffer(writer, io.LimitReader(resp.Body, int64(end-start+1)), make([]byte, 32*1024))
	if err != nil {
		return fmt.Errorf("failed to write chunk data: %w", err)
	}
	if n != int64(end-start+1) {
		return fmt.Errorf("short chunk: got %d of %d bytes", n, end-start+1)
	}
	return nil
}

func downloadFile(
	ctx context.Context,
	fileURL string,
	filePath string,
	config *models.DownloadConfig,
) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}
		written, err := streamToFile(ctx, fileURL, filePath, config)
		if err == nil {
			return written, nil
		}
		// client errors other than 429 will not go away on retry
		if e, ok := AsError(err); ok && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests {
			return 0, err
		}
		zap.S().Debugf("download attempt %d failed: %v", attempt+1, err)
		lastErr = err
	}
	return 0, lastErr
}

func streamToFile(
	ctx context.Context,
	fileURL string,
	filePath string,
	config *models.DownloadConfig,
) (int64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	req, err := newDownloadRequest(reqCtx, http.MethodGet, fileURL, config)
	if err != nil {
		return 0, err
	}
	resp, err := clientFor(config).Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, NewHTTPError(resp.StatusCode, resp.Status, fileURL)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// use a fixed-size buffer for
	// copying to avoid large allocations (32KB)
	buf := make([]byte, 32*1024)
	written, err := io.CopyBuffer(file, resp.Body, buf)
	if err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if config.ProgressUpdater != nil {
		config.ProgressUpdater(1)
	}
	return written, nil
}
