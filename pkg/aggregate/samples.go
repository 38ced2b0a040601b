package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
)

// SampleMatrix pivots a filtered record subset into one row per
// (patient, visit) with a SampleID column for every observed (omics, tissue)
// pair, labelled "<omics> (<tissue>)". The Date column carries the earliest
// collection date among the row's samples. When a slot holds several sample
// rows the first in input order wins.
func SampleMatrix(records []models.SampleRecord) models.Table {
	if len(records) == 0 {
		return models.Table{}
	}

	type slotKey struct {
		patient string
		visit   string
	}

	pairLabels := make(map[string]struct{})
	slots := make(map[slotKey]map[string]string)
	slotDates := make(map[slotKey]*time.Time)
	var order []slotKey

	for _, rec := range records {
		label := fmt.Sprintf("%s (%s)", rec.Omics, rec.Tissue)
		pairLabels[label] = struct{}{}

		slot := slotKey{patient: rec.PatientID, visit: rec.Visit}
		if slots[slot] == nil {
			slots[slot] = make(map[string]string)
			order = append(order, slot)
		}
		if _, ok := slots[slot][label]; !ok {
			slots[slot][label] = rec.SampleID
		}
		if rec.Date != nil {
			if current := slotDates[slot]; current == nil || rec.Date.Before(*current) {
				d := *rec.Date
				slotDates[slot] = &d
			}
		}
	}

	labels := make([]string, 0, len(pairLabels))
	for label := range pairLabels {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	sort.Slice(order, func(i, j int) bool {
		if order[i].patient != order[j].patient {
			return order[i].patient < order[j].patient
		}
		return order[i].visit < order[j].visit
	})

	table := models.Table{Columns: append([]string{"PatientID", "Visit", "Date"}, labels...)}
	for _, slot := range order {
		row := map[string]interface{}{
			"PatientID": slot.patient,
			"Visit":     slot.visit,
		}
		if d := slotDates[slot]; d != nil {
			row["Date"] = d.Format("2006-01-02")
		} else {
			row["Date"] = ""
		}
		for _, label := range labels {
			if sampleID, ok := slots[slot][label]; ok {
				row[label] = sampleID
			} else {
				row[label] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// SamplePaths maps each record to its storage location, following the
// repository layout /data/<Project>/<PatientID>/<Visit>/<Omics>/<Tissue>/<SampleID>.
func SamplePaths(records []models.SampleRecord) models.Table {
	if len(records) == 0 {
		return models.Table{}
	}
	table := models.Table{Columns: []string{"PatientID", "Visit", "Omics", "Tissue", "SampleID", "Path"}}
	for _, rec := range records {
		table.Rows = append(table.Rows, map[string]interface{}{
			"PatientID": rec.PatientID,
			"Visit":     rec.Visit,
			"Omics":     rec.Omics,
			"Tissue":    rec.Tissue,
			"SampleID":  rec.SampleID,
			"Path": fmt.Sprintf("/data/%s/%s/%s/%s/%s/%s",
				rec.Project, rec.PatientID, rec.Visit, rec.Omics, rec.Tissue, rec.SampleID),
		})
	}
	return table
}
