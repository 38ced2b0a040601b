package aggregate

import (
	"sort"
	"strings"

	"github.com/wonlab/omics-status/pkg/common/models"
)

// Combination is the set of distinct assay types a patient holds any valid
// record for, rendered as a sorted " + "-joined label, together with the
// number of patients sharing exactly that set.
type Combination struct {
	Label    string `json:"label"`
	Patients int    `json:"patients"`
}

// Combinations groups patients by their assay combination. Ordering is by
// descending patient count, then ascending label so ties resolve the same
// way on every run.
func Combinations(records []models.SampleRecord) []Combination {
	patientOmics := make(map[string]map[string]struct{})
	for _, rec := range records {
		if patientOmics[rec.PatientID] == nil {
			patientOmics[rec.PatientID] = make(map[string]struct{})
		}
		patientOmics[rec.PatientID][rec.Omics] = struct{}{}
	}

	counts := make(map[string]int)
	for _, omicsSet := range patientOmics {
		omicsList := make([]string, 0, len(omicsSet))
		for omics := range omicsSet {
			omicsList = append(omicsList, omics)
		}
		sort.Strings(omicsList)
		counts[strings.Join(omicsList, " + ")]++
	}

	combos := make([]Combination, 0, len(counts))
	for label, count := range counts {
		combos = append(combos, Combination{Label: label, Patients: count})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Patients != combos[j].Patients {
			return combos[i].Patients > combos[j].Patients
		}
		return combos[i].Label < combos[j].Label
	})
	return combos
}

// CombinationTable renders the combination grouping as a dashboard table.
func CombinationTable(records []models.SampleRecord) models.Table {
	combos := Combinations(records)
	if len(combos) == 0 {
		return models.Table{}
	}
	table := models.Table{Columns: []string{"Combination", "Patients"}}
	for _, combo := range combos {
		table.Rows = append(table.Rows, map[string]interface{}{
			"Combination": combo.Label,
			"Patients":    combo.Patients,
		})
	}
	return table
}
