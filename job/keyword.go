package job

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"gdl/models"
	"gdl/util"
)

// KeywordJob prints the metadata keys available to format strings:
// those of the first directory and of the first file. A job that
// queues urls has its first queue message printed and followed.
type KeywordJob struct {
	mu  sync.Mutex
	out io.Writer

	printedDirectory bool
	followed         map[*Job]bool
}

func NewKeywordJob(out io.Writer) *KeywordJob {
	return &KeywordJob{out: out, followed: make(map[*Job]bool)}
}

func (k *KeywordJob) HandleDirectory(job *Job, data models.Metadata) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.printedDirectory {
		return nil
	}
	k.printedDirectory = true
	k.print("Keywords for directory names:", data)
	return nil
}

func (k *KeywordJob) HandleURL(job *Job, url string, data models.Metadata) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.print("Keywords for filenames and --filter:", data)
	return util.Stop("keywords printed")
}

func (k *KeywordJob) HandleQueue(job *Job, url string, data models.Metadata) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.followed[job] {
		return false, nil
	}
	k.followed[job] = true
	k.print("Keywords for --chapter-filter:", data)
	fmt.Fprintf(k.out, "Following %s\n\n", url)
	return true, nil
}

func (k *KeywordJob) print(title string, data models.Metadata) {
	fmt.Fprintln(k.out, title)
	fmt.Fprintln(k.out, strings.Repeat("-", len(title)))
	writeKeywords(k.out, "", data.Public())
	fmt.Fprintln(k.out)
}

func writeKeywords(out io.Writer, prefix string, data map[string]any) {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		name := key
		if prefix != "" {
			name = prefix + "[" + key + "]"
		}
		switch value := data[key].(type) {
		case models.Metadata:
			writeKeywords(out, name, value)
		case map[string]any:
			writeKeywords(out, name, value)
		default:
			fmt.Fprintf(out, "%s\n  %s\n", name, models.AsString(value))
		}
	}
}
