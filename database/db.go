// Package database opens the sqlite store of the development backend.
package database

import (
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/shyamgroup/backoffice/config"
	"github.com/shyamgroup/backoffice/database/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

func initModels(db *gorm.DB) error {
	models := []any{
		&model.User{},
		&model.Record{},
		&model.Upload{},
		&model.ActivityLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string) (*gorm.DB, error) {
	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	var dsn string
	if dbPath == MemoryPath {
		// each Open gets its own named shared-cache database
		dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	} else {
		if err := os.MkdirAll(path.Dir(dbPath), fs.ModePerm); err != nil {
			return nil, err
		}
		dsn = dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dbPath == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, err
	}

	if err := initModels(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Close checkpoints the WAL and closes db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	_ = db.Exec("PRAGMA wal_checkpoint;").Error
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsEmpty reports whether table has no rows.
func IsEmpty(db *gorm.DB, table string) (bool, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count == 0, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
