package job

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"sync"

	"gdl/models"

	"github.com/bytedance/sonic"
)

var sortedJSON = sonic.Config{SortMapKeys: true}.Froze()

// HashJob fingerprints the output of an extractor: one digest over
// every file url and one over the public metadata of all messages.
// Queued urls are hashed, not followed.
type HashJob struct {
	mu       sync.Mutex
	urls     hash.Hash
	metadata hash.Hash
	count    int
}

func NewHashJob() *HashJob {
	return &HashJob{urls: sha1.New(), metadata: sha1.New()}
}

func (h *HashJob) HandleDirectory(job *Job, data models.Metadata) error {
	return h.addMetadata(data)
}

func (h *HashJob) HandleURL(job *Job, url string, data models.Metadata) error {
	h.mu.Lock()
	h.urls.Write([]byte(url))
	h.count++
	h.mu.Unlock()
	return h.addMetadata(data)
}

func (h *HashJob) HandleQueue(job *Job, url string, data models.Metadata) (bool, error) {
	h.mu.Lock()
	h.urls.Write([]byte(url))
	h.count++
	h.mu.Unlock()
	return false, h.addMetadata(data)
}

func (h *HashJob) addMetadata(data models.Metadata) error {
	buf, err := sortedJSON.Marshal(data.Public())
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.metadata.Write(buf)
	h.mu.Unlock()
	return nil
}

// Sums returns the hex digests of urls and metadata and the number
// of urls seen.
func (h *HashJob) Sums() (string, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return hex.EncodeToString(h.urls.Sum(nil)),
		hex.EncodeToString(h.metadata.Sum(nil)),
		h.count
}
