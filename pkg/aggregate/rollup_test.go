package aggregate

import (
	"testing"
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
)

func TestRollupBreakdownWithTotals(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S1"),
		rec("COREA", "P1", "V2", "SNP", "Whole blood", "S2"),
		rec("COREA", "P2", "V1", "SNP", "Whole blood", "S3"),
		rec("COREA", "P1", "V1", "Protein", "Serum", "S4"),
	}

	rollup := Rollup(records)
	if rollup.Patients != 2 {
		t.Fatalf("expected 2 distinct patients, got %d", rollup.Patients)
	}
	if rollup.Samples != 4 {
		t.Fatalf("expected 4 distinct samples, got %d", rollup.Samples)
	}

	// Protein group first: one visit row plus its total.
	rows := rollup.Breakdown.Rows
	if rows[0]["Omics"] != "Protein" || rows[0]["Visit"] != "V1" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1]["Visit"] != "Total" || rows[1]["Patients"] != 1 {
		t.Fatalf("unexpected Protein total: %v", rows[1])
	}

	// SNP total row: P1 appears at both visits but counts once.
	last := rows[len(rows)-1]
	if last["Omics"] != "SNP" || last["Visit"] != "Total" {
		t.Fatalf("unexpected last row: %v", last)
	}
	if last["Patients"] != 2 || last["Samples"] != 3 {
		t.Fatalf("SNP totals must be distinct counts: %v", last)
	}
}

func TestRollupEmptyInput(t *testing.T) {
	rollup := Rollup(nil)
	if rollup.Patients != 0 || rollup.Samples != 0 || !rollup.Breakdown.Empty() {
		t.Fatalf("expected zero rollup, got %+v", rollup)
	}
}

func TestSummarizeOverview(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	records := []models.SampleRecord{
		{Project: "COREA", PatientID: "P1", Visit: "V1", Omics: "SNP", Tissue: "Whole blood", SampleID: "S1", Date: &d1},
		{Project: "PRISM", PatientID: "P1", Visit: "V1", Omics: "SNP", Tissue: "Whole blood", SampleID: "S2", Date: &d2},
		{Project: "PRISM", PatientID: "P2", Visit: "V2", Omics: "Protein", Tissue: "Serum", SampleID: "S3"},
	}

	overview := Summarize(records)
	if overview.Patients != 2 || overview.Samples != 3 || overview.Projects != 2 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
	if overview.LatestDate == nil || !overview.LatestDate.Equal(d2) {
		t.Fatalf("expected latest date %v, got %v", d2, overview.LatestDate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	overview := Summarize(nil)
	if overview.Patients != 0 || overview.LatestDate != nil {
		t.Fatalf("expected empty overview, got %+v", overview)
	}
}
