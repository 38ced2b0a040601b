// Package aggregate computes the dashboard cross-tabulations over the valid
// record subset. Every operation is a pure function and returns an empty
// result for an empty input. Patient counts are always distinct-patient
// cardinalities, never raw row counts: one patient may contribute several
// sample rows per visit.
package aggregate

import (
	"sort"

	"github.com/wonlab/omics-status/pkg/common/models"
)

type groupKey struct {
	primary   string
	secondary string
}

// ProjectPatientCounts builds the per-cohort table: one row per observed
// (omics, tissue) pair within the project, one column per observed visit,
// each cell the distinct-patient count. The Total column is the distinct
// count across all visits for that pair, which is not the sum of the visit
// cells since a patient can attend several visits. A closing Total row
// aggregates the whole project.
func ProjectPatientCounts(records []models.SampleRecord, project string) models.Table {
	subset := filterRecords(records, func(r models.SampleRecord) bool { return r.Project == project })
	return patientCounts(subset, "Omics", "Tissue", func(r models.SampleRecord) groupKey {
		return groupKey{primary: r.Omics, secondary: r.Tissue}
	})
}

// OmicsPatientCounts builds the per-assay table: one row per observed
// (tissue, project) pair for the assay, pivoted over visits the same way.
func OmicsPatientCounts(records []models.SampleRecord, omics string) models.Table {
	subset := filterRecords(records, func(r models.SampleRecord) bool { return r.Omics == omics })
	return patientCounts(subset, "Tissue", "Project", func(r models.SampleRecord) groupKey {
		return groupKey{primary: r.Tissue, secondary: r.Project}
	})
}

func patientCounts(records []models.SampleRecord, primaryCol, secondaryCol string, key func(models.SampleRecord) groupKey) models.Table {
	if len(records) == 0 {
		return models.Table{}
	}

	visits := distinctSorted(records, func(r models.SampleRecord) string { return r.Visit })

	perVisit := make(map[groupKey]map[string]map[string]struct{})
	perGroup := make(map[groupKey]map[string]struct{})
	allVisit := make(map[string]map[string]struct{})
	allPatients := make(map[string]struct{})

	for _, rec := range records {
		k := key(rec)
		if perVisit[k] == nil {
			perVisit[k] = make(map[string]map[string]struct{})
			perGroup[k] = make(map[string]struct{})
		}
		if perVisit[k][rec.Visit] == nil {
			perVisit[k][rec.Visit] = make(map[string]struct{})
		}
		if allVisit[rec.Visit] == nil {
			allVisit[rec.Visit] = make(map[string]struct{})
		}
		perVisit[k][rec.Visit][rec.PatientID] = struct{}{}
		perGroup[k][rec.PatientID] = struct{}{}
		allVisit[rec.Visit][rec.PatientID] = struct{}{}
		allPatients[rec.PatientID] = struct{}{}
	}

	keys := make([]groupKey, 0, len(perGroup))
	for k := range perGroup {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].primary != keys[j].primary {
			return keys[i].primary < keys[j].primary
		}
		return keys[i].secondary < keys[j].secondary
	})

	columns := append([]string{primaryCol, secondaryCol}, visits...)
	columns = append(columns, "Total")

	table := models.Table{Columns: columns}
	for _, k := range keys {
		row := map[string]interface{}{
			primaryCol:   k.primary,
			secondaryCol: k.secondary,
		}
		for _, visit := range visits {
			row[visit] = len(perVisit[k][visit])
		}
		row["Total"] = len(perGroup[k])
		table.Rows = append(table.Rows, row)
	}

	totalRow := map[string]interface{}{
		primaryCol:   "Total",
		secondaryCol: "",
	}
	for _, visit := range visits {
		totalRow[visit] = len(allVisit[visit])
	}
	totalRow["Total"] = len(allPatients)
	table.Rows = append(table.Rows, totalRow)

	return table
}

func filterRecords(records []models.SampleRecord, keep func(models.SampleRecord) bool) []models.SampleRecord {
	var out []models.SampleRecord
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func distinctSorted(records []models.SampleRecord, field func(models.SampleRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		v := field(rec)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Projects lists the distinct project codes present in the record set.
func Projects(records []models.SampleRecord) []string {
	return distinctSorted(records, func(r models.SampleRecord) string { return r.Project })
}

// OmicsTypes lists the distinct assay types present in the record set.
func OmicsTypes(records []models.SampleRecord) []string {
	return distinctSorted(records, func(r models.SampleRecord) string { return r.Omics })
}
