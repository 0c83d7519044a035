package models

import (
	"time"

	"github.com/guregu/null/v6/zero"
)

type ArchiveEntry struct {
	Entry     string      `gorm:"primaryKey;size:512"`
	Extractor string      `gorm:"not null;index;size:128"`
	URL       zero.String `gorm:"size:2048"`
	CreatedAt time.Time
}

// Archive records processed items so later runs can skip them.
type Archive interface {
	Check(key string) (bool, error)
	Add(key, extractor, url string) error
}
