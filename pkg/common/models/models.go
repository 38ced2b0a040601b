package models

import (
	"time"
)

// Dataset column contract. Column names in uploaded workbooks must match
// these exactly; a workbook missing any of them is rejected before
// validation.
var RequiredColumns = []string{"Project", "PatientID", "Visit", "Omics", "Tissue", "SampleID", "Date"}

// SampleRecord is one row of the clinical dataset: a single physical sample
// keyed by project, patient, visit, assay and tissue.
type SampleRecord struct {
	Project   string     `json:"project"`
	PatientID string     `json:"patient_id"`
	Visit     string     `json:"visit"`
	Omics     string     `json:"omics"`
	Tissue    string     `json:"tissue"`
	SampleID  string     `json:"sample_id"`
	Date      *time.Time `json:"date,omitempty"`
}

// Key identifies a record for duplicate detection. Two records sharing a Key
// refer to the same logical sample slot even when their SampleIDs differ.
type Key struct {
	PatientID string `json:"patient_id"`
	Visit     string `json:"visit"`
	Omics     string `json:"omics"`
	Tissue    string `json:"tissue"`
}

func (r SampleRecord) Key() Key {
	return Key{PatientID: r.PatientID, Visit: r.Visit, Omics: r.Omics, Tissue: r.Tissue}
}

// Table is the generic tabular shape every aggregate is rendered into.
// Columns carries the display order; Rows hold values keyed by column name.
// The same structure feeds both the JSON API and the spreadsheet exporter.
type Table struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // dataset.replaced, dataset.rejected
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// ValidationSummary is the roll-up shown alongside the per-axis findings.
type ValidationSummary struct {
	TotalRecords       int     `json:"total_records"`
	ValidRecords       int     `json:"valid_records"`
	InvalidVisit       int     `json:"invalid_visit"`
	InvalidOmicsTissue int     `json:"invalid_omics_tissue"`
	InvalidProject     int     `json:"invalid_project"`
	DuplicateRecords   int     `json:"duplicate_records"`
	ValidPercent       float64 `json:"valid_percent"`
}

type UploadResponse struct {
	SnapshotID string            `json:"snapshot_id"`
	FileName   string            `json:"file_name,omitempty"`
	UploadedBy string            `json:"uploaded_by,omitempty"`
	Summary    ValidationSummary `json:"summary"`
	Timestamp  time.Time         `json:"timestamp"`
}
