package job

import (
	"fmt"
	"io"
	"sync"

	"gdl/models"
)

// URLJob prints file urls instead of downloading them. Queued urls
// are followed unless PrintQueue is set, in which case they are
// printed with a "| " prefix.
type URLJob struct {
	PrintQueue bool

	mu  sync.Mutex
	out io.Writer
}

func NewURLJob(out io.Writer) *URLJob {
	return &URLJob{out: out}
}

func (u *URLJob) HandleDirectory(job *Job, data models.Metadata) error {
	return nil
}

func (u *URLJob) HandleURL(job *Job, url string, data models.Metadata) error {
	return u.println(url)
}

func (u *URLJob) HandleQueue(job *Job, url string, data models.Metadata) (bool, error) {
	if u.PrintQueue {
		return false, u.println("| " + url)
	}
	return true, nil
}

func (u *URLJob) println(line string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err := fmt.Fprintln(u.out, line)
	return err
}
