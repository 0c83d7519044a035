package database

import (
	"time"

	"gdl/models"
)

type ExtractorCount struct {
	Extractor string
	Count     int64
}

func GetArchiveCount() (int64, error) {
	var count int64
	err := DB.
		Model(&models.ArchiveEntry{}).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func GetArchiveCountSince(since time.Time) (int64, error) {
	var count int64
	err := DB.
		Model(&models.ArchiveEntry{}).
		Where("created_at >= ?", since).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func GetArchiveCountByExtractor() ([]ExtractorCount, error) {
	var counts []ExtractorCount
	err := DB.
		Model(&models.ArchiveEntry{}).
		Select("extractor, COUNT(*) AS count").
		Group("extractor").
		Order("count DESC, extractor").
		Scan(&counts).
		Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
