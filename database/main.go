package database

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gdl/models"
	"gdl/util"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Start opens the archive database named by dsn and installs it as DB.
func Start(dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to dsn and migrates the archive schema. A "mysql://"
// prefix selects mysql, anything else is a sqlite file path or
// ":memory:".
func Open(dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	if strings.HasPrefix(dsn, "mysql://") {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrateDatabase(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, util.NewInputError("empty archive dsn")
	}
	if rest, ok := strings.CutPrefix(dsn, "mysql://"); ok {
		if !strings.Contains(rest, "parseTime") {
			sep := "?"
			if strings.Contains(rest, "?") {
				sep = "&"
			}
			rest += sep + "charset=utf8mb4&parseTime=True"
		}
		return mysql.Open(rest), nil
	}
	if dsn != ":memory:" {
		if err := util.EnsureDownloadDir(filepath.Dir(util.ExpandPath(dsn))); err != nil {
			return nil, err
		}
		dsn = util.ExpandPath(dsn)
	}
	return sqlite.Open(dsn), nil
}

func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ArchiveEntry{},
	)
}
