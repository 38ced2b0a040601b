// Package validate classifies an uploaded record set against the reference
// schema. Findings are data, not errors: every record is reported under each
// axis it violates, and the valid subset is what the aggregation layer
// consumes.
package validate

import (
	"sort"

	"github.com/wonlab/omics-status/pkg/common/models"
	"github.com/wonlab/omics-status/pkg/schema"
)

// Report holds the outcome of one classification pass. The invalid buckets
// are not mutually exclusive; a record with a bad visit and a bad project
// appears in both. Duplicates lists every member of a colliding key group,
// while Valid keeps exactly one representative per key (first seen in upload
// order).
type Report struct {
	Total              int                   `json:"total"`
	InvalidVisit       []models.SampleRecord `json:"invalid_visit"`
	InvalidOmicsTissue []models.SampleRecord `json:"invalid_omics_tissue"`
	InvalidProject     []models.SampleRecord `json:"invalid_project"`
	Duplicates         []models.SampleRecord `json:"duplicates"`
	Valid              []models.SampleRecord `json:"valid"`
}

// Classify runs the four per-record checks over the whole record set. It is a
// pure function of its inputs; the input slice is never modified.
func Classify(records []models.SampleRecord, s *schema.Schema) Report {
	report := Report{Total: len(records)}

	keyCounts := make(map[models.Key]int, len(records))
	for _, rec := range records {
		keyCounts[rec.Key()]++
	}

	seen := make(map[models.Key]struct{}, len(records))
	for _, rec := range records {
		visitOK := s.VisitValid(rec.Visit)
		projectOK := s.ProjectValid(rec.Project)
		pairOK := s.OmicsValid(rec.Omics) && s.TissueValid(rec.Tissue) && s.PairAllowed(rec.Omics, rec.Tissue)

		if !visitOK {
			report.InvalidVisit = append(report.InvalidVisit, rec)
		}
		if !pairOK {
			report.InvalidOmicsTissue = append(report.InvalidOmicsTissue, rec)
		}
		if !projectOK {
			report.InvalidProject = append(report.InvalidProject, rec)
		}
		if keyCounts[rec.Key()] > 1 {
			report.Duplicates = append(report.Duplicates, rec)
		}

		if visitOK && projectOK && pairOK {
			key := rec.Key()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				report.Valid = append(report.Valid, rec)
			}
		}
	}

	sortByKey(report.Duplicates)

	return report
}

// Summary condenses the report into the counters surfaced on the dashboard.
// The percentage is guarded against an empty record set.
func (r Report) Summary() models.ValidationSummary {
	summary := models.ValidationSummary{
		TotalRecords:       r.Total,
		ValidRecords:       len(r.Valid),
		InvalidVisit:       len(r.InvalidVisit),
		InvalidOmicsTissue: len(r.InvalidOmicsTissue),
		InvalidProject:     len(r.InvalidProject),
		DuplicateRecords:   len(r.Duplicates),
	}
	if r.Total > 0 {
		summary.ValidPercent = float64(len(r.Valid)) / float64(r.Total) * 100
	}
	return summary
}

// Clean reports whether every record passed every check.
func (r Report) Clean() bool {
	return len(r.InvalidVisit) == 0 &&
		len(r.InvalidOmicsTissue) == 0 &&
		len(r.InvalidProject) == 0 &&
		len(r.Duplicates) == 0
}

// Duplicate report rows are grouped by key so colliding records sit next to
// each other regardless of their upload position.
func sortByKey(records []models.SampleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.PatientID != b.PatientID {
			return a.PatientID < b.PatientID
		}
		if a.Visit != b.Visit {
			return a.Visit < b.Visit
		}
		if a.Omics != b.Omics {
			return a.Omics < b.Omics
		}
		return a.Tissue < b.Tissue
	})
}
