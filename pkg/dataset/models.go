package dataset

import (
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
	"gorm.io/datatypes"
)

// SampleRow is the persisted form of one dataset record. Position preserves
// the workbook row order so first-seen deduplication survives a restart.
type SampleRow struct {
	ID          uint       `json:"-" gorm:"primaryKey;autoIncrement;column:id"`
	SnapshotID  string     `json:"snapshot_id" gorm:"column:snapshot_id;index"`
	Position    int        `json:"position" gorm:"column:position"`
	Project     string     `json:"project" gorm:"column:project"`
	PatientID   string     `json:"patient_id" gorm:"column:patient_id"`
	Visit       string     `json:"visit" gorm:"column:visit"`
	Omics       string     `json:"omics" gorm:"column:omics"`
	Tissue      string     `json:"tissue" gorm:"column:tissue"`
	SampleID    string     `json:"sample_id" gorm:"column:sample_id"`
	CollectedAt *time.Time `json:"collected_at,omitempty" gorm:"column:collected_at"`
}

func (SampleRow) TableName() string {
	return "dataset_records"
}

func (r SampleRow) toRecord() models.SampleRecord {
	return models.SampleRecord{
		Project:   r.Project,
		PatientID: r.PatientID,
		Visit:     r.Visit,
		Omics:     r.Omics,
		Tissue:    r.Tissue,
		SampleID:  r.SampleID,
		Date:      r.CollectedAt,
	}
}

func newSampleRow(snapshotID string, position int, rec models.SampleRecord) SampleRow {
	return SampleRow{
		SnapshotID:  snapshotID,
		Position:    position,
		Project:     rec.Project,
		PatientID:   rec.PatientID,
		Visit:       rec.Visit,
		Omics:       rec.Omics,
		Tissue:      rec.Tissue,
		SampleID:    rec.SampleID,
		CollectedAt: rec.Date,
	}
}

// Upload is the audit row recorded for every replace operation.
type Upload struct {
	ID          string            `json:"id" gorm:"primaryKey;column:id"`
	FileName    string            `json:"file_name" gorm:"column:file_name"`
	UploadedBy  string            `json:"uploaded_by" gorm:"column:uploaded_by"`
	RecordCount int               `json:"record_count" gorm:"column:record_count"`
	Summary     datatypes.JSONMap `json:"summary" gorm:"column:summary"`
	CreatedAt   time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Upload) TableName() string {
	return "dataset_uploads"
}
