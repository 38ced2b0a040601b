package dataset

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wonlab/omics-status/pkg/common/models"
	"github.com/wonlab/omics-status/pkg/observability/metrics"
	"github.com/wonlab/omics-status/pkg/schema"
	"github.com/wonlab/omics-status/pkg/validate"
)

// The snapshot gauges must follow every snapshot install, not just uploads,
// so a restarted service reports its warmed record set on /metrics.
func TestSwapSnapshotUpdatesGauges(t *testing.T) {
	svc := NewService(nil, schema.Default())

	records := []models.SampleRecord{
		{Project: "COREA", PatientID: "P1", Visit: "V1", Omics: "SNP", Tissue: "Whole blood", SampleID: "S1"},
		{Project: "COREA", PatientID: "P1", Visit: "V1", Omics: "Protein", Tissue: "Serum", SampleID: "S2"},
		{Project: "COREA", PatientID: "P2", Visit: "V9", Omics: "SNP", Tissue: "Whole blood", SampleID: "S3"},
	}
	report := validate.Classify(records, schema.Default())
	if len(report.Valid) != 2 {
		t.Fatalf("expected 2 valid records in fixture, got %d", len(report.Valid))
	}

	svc.swapSnapshot("snap-1", records, len(report.Valid))

	id, got := svc.Snapshot()
	if id != "snap-1" || len(got) != 3 {
		t.Fatalf("expected installed snapshot snap-1 with 3 records, got %q with %d", id, len(got))
	}

	rr := httptest.NewRecorder()
	metrics.WritePrometheus(rr)
	body := rr.Body.String()
	if !strings.Contains(body, "omicstatus_snapshot_records 3") {
		t.Fatalf("snapshot record gauge not updated:\n%s", body)
	}
	if !strings.Contains(body, "omicstatus_snapshot_valid_records 2") {
		t.Fatalf("snapshot valid gauge not updated:\n%s", body)
	}
}
