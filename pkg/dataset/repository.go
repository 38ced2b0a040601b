package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&SampleRow{}, &Upload{})
}

// ReplaceAll swaps the persisted record set for the given snapshot in one
// transaction. A new upload replaces the whole dataset; there are no partial
// updates.
func (r *Repository) ReplaceAll(ctx context.Context, snapshotID string, records []models.SampleRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SampleRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]SampleRow, 0, len(records))
		for i, rec := range records {
			rows = append(rows, newSampleRow(snapshotID, i, rec))
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

// LoadCurrent reads the persisted snapshot back in workbook order.
func (r *Repository) LoadCurrent(ctx context.Context) (string, []models.SampleRecord, error) {
	var rows []SampleRow
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return "", nil, err
	}
	if len(rows) == 0 {
		return "", nil, nil
	}
	records := make([]models.SampleRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return rows[0].SnapshotID, records, nil
}

func (r *Repository) RecordUpload(ctx context.Context, upload *Upload) error {
	upload.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *Repository) LatestUpload(ctx context.Context) (*Upload, error) {
	var upload Upload
	result := r.db.WithContext(ctx).Order("created_at DESC").First(&upload)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNoUploads
	}
	return &upload, result.Error
}
