package aggregate

import (
	"github.com/wonlab/omics-status/pkg/common/models"
)

// Selection is a hierarchical omics → tissue → visit filter. An omics entry
// with an empty tissue map accepts every tissue; a tissue entry with an empty
// visit list accepts every visit. The nesting is explicit rather than
// flattened into delimiter-joined map keys.
type Selection map[string]TissueSelection

type TissueSelection map[string][]string

// Matches reports whether a single record falls under the selection.
func (s Selection) Matches(rec models.SampleRecord) bool {
	tissues, ok := s[rec.Omics]
	if !ok {
		return false
	}
	if len(tissues) == 0 {
		return true
	}
	visits, ok := tissues[rec.Tissue]
	if !ok {
		return false
	}
	if len(visits) == 0 {
		return true
	}
	for _, visit := range visits {
		if visit == rec.Visit {
			return true
		}
	}
	return false
}

// Empty reports whether no omics is selected at all.
func (s Selection) Empty() bool {
	return len(s) == 0
}

// SelectUnion returns every record matching any selected (omics, tissue,
// visit) triple: the "show me everything under these filters" semantics.
func SelectUnion(records []models.SampleRecord, sel Selection) []models.SampleRecord {
	if sel.Empty() {
		return nil
	}
	return filterRecords(records, sel.Matches)
}

// SelectIntersection keeps only records of patients who hold every selected
// omics: the "patients with assay A and assay B" semantics. A patient counts
// as holding an omics when at least one of their records matches the
// selection entry for it. The returned records are the matching records of
// qualifying patients.
func SelectIntersection(records []models.SampleRecord, sel Selection) []models.SampleRecord {
	if sel.Empty() {
		return nil
	}

	held := make(map[string]map[string]struct{})
	for _, rec := range records {
		if !sel.Matches(rec) {
			continue
		}
		if held[rec.PatientID] == nil {
			held[rec.PatientID] = make(map[string]struct{})
		}
		held[rec.PatientID][rec.Omics] = struct{}{}
	}

	qualified := make(map[string]struct{}, len(held))
	for patient, omicsSet := range held {
		complete := true
		for omics := range sel {
			if _, ok := omicsSet[omics]; !ok {
				complete = false
				break
			}
		}
		if complete {
			qualified[patient] = struct{}{}
		}
	}

	return filterRecords(records, func(r models.SampleRecord) bool {
		if _, ok := qualified[r.PatientID]; !ok {
			return false
		}
		return sel.Matches(r)
	})
}
