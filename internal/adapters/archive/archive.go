// Package archive persists the long-form records into a SQLite table so the
// reshaped dataset can be queried outside the dashboard.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/pkg/logger"
)

const defaultBatchSize = 500

// Row is one stored record.
type Row struct {
	ID      uint      `gorm:"primaryKey"`
	Date    time.Time `gorm:"not null;index"`
	Month   string    `gorm:"size:7;not null;index"`
	Country string    `gorm:"size:3;not null;index"`
	Value   float64   `gorm:"not null"`
}

// TableName pins the table name.
func (Row) TableName() string { return "records" }

// Archive writes datasets to a SQLite file.
type Archive struct {
	db        *gorm.DB
	batchSize int
	log       logger.Logger
}

// Open opens (creating if needed) the database at path and migrates the
// records table.
func Open(path string, opts ...Option) (*Archive, error) {
	a := &Archive{batchSize: defaultBatchSize, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		a.log.Warn(context.Background(), "wal mode not enabled", logger.Error(err))
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("%w: migrate: %w", ErrOpen, err)
	}
	a.db = db
	return a, nil
}

// Save replaces the table contents with ds and returns the number of rows
// written.
func (a *Archive) Save(ctx context.Context, ds model.Dataset) (int, error) {
	rows := make([]Row, 0, len(ds.Records))
	for _, r := range ds.Records {
		rows = append(rows, Row{
			Date:    r.Date.UTC(),
			Month:   r.Month,
			Country: r.Country,
			Value:   r.Value,
		})
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM records").Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, a.batchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSave, err)
	}
	a.log.Info(ctx, "records archived", logger.Int("rows", len(rows)))
	return len(rows), nil
}

// Count returns the number of stored rows.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.WithContext(ctx).Model(&Row{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return n, nil
}

// Month returns the stored records of one month ordered by country.
func (a *Archive) Month(ctx context.Context, month string) ([]model.Record, error) {
	var rows []Row
	err := a.db.WithContext(ctx).
		Where("month = ?", month).
		Order("country").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Record{Date: r.Date.UTC(), Month: r.Month, Country: r.Country, Value: r.Value})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
