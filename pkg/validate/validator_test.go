package validate

import (
	"testing"

	"github.com/wonlab/omics-status/pkg/common/models"
	"github.com/wonlab/omics-status/pkg/schema"
)

func rec(project, patient, visit, omics, tissue, sample string) models.SampleRecord {
	return models.SampleRecord{
		Project:   project,
		PatientID: patient,
		Visit:     visit,
		Omics:     omics,
		Tissue:    tissue,
		SampleID:  sample,
	}
}

func TestClassifyFlagsUnknownVisit(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V9", "SNP", "Whole blood", "S1"),
	}

	report := Classify(records, schema.Default())
	if len(report.InvalidVisit) != 1 {
		t.Fatalf("expected 1 invalid visit record, got %d", len(report.InvalidVisit))
	}
	if len(report.Valid) != 0 {
		t.Fatalf("record with unknown visit must not be valid, got %d valid", len(report.Valid))
	}
}

func TestClassifyDuplicatesKeepFirst(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S1"),
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S2"),
	}

	report := Classify(records, schema.Default())
	if len(report.Duplicates) != 2 {
		t.Fatalf("expected both colliding records reported, got %d", len(report.Duplicates))
	}
	if len(report.Valid) != 1 {
		t.Fatalf("expected exactly one valid representative, got %d", len(report.Valid))
	}
	if report.Valid[0].SampleID != "S1" {
		t.Fatalf("expected first-seen record to win, got %s", report.Valid[0].SampleID)
	}
}

func TestClassifyRejectsDisallowedPairing(t *testing.T) {
	// Urine is a valid tissue for Metabolites but not for Protein.
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "Protein", "Urine", "S1"),
	}

	report := Classify(records, schema.Default())
	if len(report.InvalidOmicsTissue) != 1 {
		t.Fatalf("expected pairing violation, got %d", len(report.InvalidOmicsTissue))
	}
	if len(report.Valid) != 0 {
		t.Fatal("disallowed pairing must not be valid")
	}
}

func TestClassifyBucketsAreNotExclusive(t *testing.T) {
	records := []models.SampleRecord{
		rec("NOPE", "P1", "V9", "SNP", "Whole blood", "S1"),
	}

	report := Classify(records, schema.Default())
	if len(report.InvalidVisit) != 1 || len(report.InvalidProject) != 1 {
		t.Fatalf("expected record in both visit and project buckets, got %d/%d",
			len(report.InvalidVisit), len(report.InvalidProject))
	}
}

func TestClassifyMissingFieldIsInvalid(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "", "SNP", "Whole blood", "S1"),
		rec("COREA", "P2", "V1", "", "Whole blood", "S2"),
	}

	report := Classify(records, schema.Default())
	if len(report.InvalidVisit) != 1 {
		t.Fatalf("empty visit should be invalid, got %d", len(report.InvalidVisit))
	}
	if len(report.InvalidOmicsTissue) != 1 {
		t.Fatalf("empty omics should fail the pairing check, got %d", len(report.InvalidOmicsTissue))
	}
	if len(report.Valid) != 0 {
		t.Fatalf("expected no valid records, got %d", len(report.Valid))
	}
}

func TestClassifyValidSubsetIsIdempotent(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S1"),
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S2"),
		rec("PRISM", "P2", "V2", "Protein", "Serum", "S3"),
		rec("BAD", "P3", "V1", "SNP", "Whole blood", "S4"),
	}

	s := schema.Default()
	once := Classify(records, s).Valid
	twice := Classify(once, s).Valid

	if len(once) != len(twice) {
		t.Fatalf("expected idempotent valid subset, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("valid subset changed on second pass at index %d", i)
		}
	}
}

func TestSummaryGuardsEmptyInput(t *testing.T) {
	report := Classify(nil, schema.Default())
	summary := report.Summary()
	if summary.TotalRecords != 0 || summary.ValidPercent != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
	if !report.Clean() {
		t.Fatal("empty input must be clean")
	}
}

func TestSummaryCounts(t *testing.T) {
	records := []models.SampleRecord{
		rec("COREA", "P1", "V1", "SNP", "Whole blood", "S1"),
		rec("COREA", "P2", "V9", "SNP", "Whole blood", "S2"),
		rec("COREA", "P3", "V1", "Protein", "Urine", "S3"),
		rec("NOPE", "P4", "V1", "SNP", "Whole blood", "S4"),
	}

	summary := Classify(records, schema.Default()).Summary()
	if summary.TotalRecords != 4 || summary.ValidRecords != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.InvalidVisit != 1 || summary.InvalidOmicsTissue != 1 || summary.InvalidProject != 1 {
		t.Fatalf("unexpected axis counts: %+v", summary)
	}
	if summary.ValidPercent != 25 {
		t.Fatalf("expected 25%% valid, got %v", summary.ValidPercent)
	}
}
