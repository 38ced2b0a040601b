package aggregate

import (
	"testing"
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
)

func TestSampleMatrixPivot(t *testing.T) {
	d1 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)
	records := []models.SampleRecord{
		{Project: "COREA", PatientID: "P1", Visit: "V1", Omics: "SNP", Tissue: "Whole blood", SampleID: "S1", Date: &d2},
		{Project: "COREA", PatientID: "P1", Visit: "V1", Omics: "Protein", Tissue: "Serum", SampleID: "S2", Date: &d1},
		{Project: "COREA", PatientID: "P2", Visit: "V2", Omics: "SNP", Tissue: "Whole blood", SampleID: "S3"},
	}

	table := SampleMatrix(records)
	want := []string{"PatientID", "Visit", "Date", "Protein (Serum)", "SNP (Whole blood)"}
	if len(table.Columns) != len(want) {
		t.Fatalf("unexpected columns: %v", table.Columns)
	}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Fatalf("expected column %q at %d, got %q", col, i, table.Columns[i])
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("expected one row per patient-visit, got %d", len(table.Rows))
	}
	first := table.Rows[0]
	if first["PatientID"] != "P1" || first["SNP (Whole blood)"] != "S1" || first["Protein (Serum)"] != "S2" {
		t.Fatalf("unexpected P1 row: %v", first)
	}
	if first["Date"] != "2024-02-10" {
		t.Fatalf("expected earliest date per row, got %v", first["Date"])
	}
	second := table.Rows[1]
	if second["Protein (Serum)"] != "" {
		t.Fatalf("missing slot must be blank, got %v", second["Protein (Serum)"])
	}
}

func TestSamplePathsLayout(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S1"),
	}

	table := SamplePaths(records)
	if len(table.Rows) != 1 {
		t.Fatalf("expected one path row, got %d", len(table.Rows))
	}
	path := table.Rows[0]["Path"]
	if path != "/data/COREA/P1/V1/SNP/Whole blood/S1" {
		t.Fatalf("unexpected path: %v", path)
	}
}

func TestSampleTablesEmptyInput(t *testing.T) {
	if table := SampleMatrix(nil); !table.Empty() {
		t.Fatalf("expected empty matrix, got %+v", table)
	}
	if table := SamplePaths(nil); !table.Empty() {
		t.Fatalf("expected empty paths, got %+v", table)
	}
}
