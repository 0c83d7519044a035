package database

import (
	"gdl/models"

	"github.com/guregu/null/v6/zero"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Archive is the gorm backed download archive.
type Archive struct {
	db *gorm.DB
}

var _ models.Archive = (*Archive)(nil)

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// OpenArchive opens dsn and returns an archive on top of it.
func OpenArchive(dsn string) (*Archive, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewArchive(db), nil
}

func (a *Archive) Check(key string) (bool, error) {
	var count int64
	err := a.db.
		Model(&models.ArchiveEntry{}).
		Where("entry = ?", key).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Archive) Add(key, extractor, url string) error {
	entry := &models.ArchiveEntry{
		Entry:     key,
		Extractor: extractor,
		URL:       zero.StringFrom(url),
	}
	return a.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).
		Error
}

func (a *Archive) Get(key string) (*models.ArchiveEntry, error) {
	var entry models.ArchiveEntry
	err := a.db.
		Where("entry = ?", key).
		First(&entry).
		Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
