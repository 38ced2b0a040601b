package aggregate

import (
	"sort"
	"time"

	"github.com/wonlab/omics-status/pkg/common/models"
)

// RollupSummary describes any filtered record subset: overall distinct
// patient and sample cardinalities plus a breakdown by (omics, tissue,
// visit). Each (omics, tissue) group closes with a Total row whose counts
// are distinct across all visits, not a column sum.
type RollupSummary struct {
	Patients  int          `json:"patients"`
	Samples   int          `json:"samples"`
	Breakdown models.Table `json:"breakdown"`
}

func Rollup(records []models.SampleRecord) RollupSummary {
	if len(records) == 0 {
		return RollupSummary{}
	}

	type pairKey struct {
		omics  string
		tissue string
	}
	type cellKey struct {
		pair  pairKey
		visit string
	}

	cellPatients := make(map[cellKey]map[string]struct{})
	cellSamples := make(map[cellKey]map[string]struct{})
	pairPatients := make(map[pairKey]map[string]struct{})
	pairSamples := make(map[pairKey]map[string]struct{})
	allPatients := make(map[string]struct{})
	allSamples := make(map[string]struct{})

	for _, rec := range records {
		pair := pairKey{omics: rec.Omics, tissue: rec.Tissue}
		cell := cellKey{pair: pair, visit: rec.Visit}
		if cellPatients[cell] == nil {
			cellPatients[cell] = make(map[string]struct{})
			cellSamples[cell] = make(map[string]struct{})
		}
		if pairPatients[pair] == nil {
			pairPatients[pair] = make(map[string]struct{})
			pairSamples[pair] = make(map[string]struct{})
		}
		cellPatients[cell][rec.PatientID] = struct{}{}
		cellSamples[cell][rec.SampleID] = struct{}{}
		pairPatients[pair][rec.PatientID] = struct{}{}
		pairSamples[pair][rec.SampleID] = struct{}{}
		allPatients[rec.PatientID] = struct{}{}
		allSamples[rec.SampleID] = struct{}{}
	}

	pairs := make([]pairKey, 0, len(pairPatients))
	for pair := range pairPatients {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].omics != pairs[j].omics {
			return pairs[i].omics < pairs[j].omics
		}
		return pairs[i].tissue < pairs[j].tissue
	})

	breakdown := models.Table{Columns: []string{"Omics", "Tissue", "Visit", "Patients", "Samples"}}
	for _, pair := range pairs {
		var visits []string
		for cell := range cellPatients {
			if cell.pair == pair {
				visits = append(visits, cell.visit)
			}
		}
		sort.Strings(visits)
		for _, visit := range visits {
			cell := cellKey{pair: pair, visit: visit}
			breakdown.Rows = append(breakdown.Rows, map[string]interface{}{
				"Omics":    pair.omics,
				"Tissue":   pair.tissue,
				"Visit":    visit,
				"Patients": len(cellPatients[cell]),
				"Samples":  len(cellSamples[cell]),
			})
		}
		breakdown.Rows = append(breakdown.Rows, map[string]interface{}{
			"Omics":    pair.omics,
			"Tissue":   pair.tissue,
			"Visit":    "Total",
			"Patients": len(pairPatients[pair]),
			"Samples":  len(pairSamples[pair]),
		})
	}

	return RollupSummary{
		Patients:  len(allPatients),
		Samples:   len(allSamples),
		Breakdown: breakdown,
	}
}

// Overview summarises the whole valid subset for the dashboard landing view.
type Overview struct {
	Patients   int        `json:"patients"`
	Samples    int        `json:"samples"`
	Projects   int        `json:"projects"`
	LatestDate *time.Time `json:"latest_date,omitempty"`
}

func Summarize(records []models.SampleRecord) Overview {
	overview := Overview{Samples: len(records)}
	patients := make(map[string]struct{})
	projects := make(map[string]struct{})
	for _, rec := range records {
		patients[rec.PatientID] = struct{}{}
		projects[rec.Project] = struct{}{}
		if rec.Date != nil && (overview.LatestDate == nil || rec.Date.After(*overview.LatestDate)) {
			d := *rec.Date
			overview.LatestDate = &d
		}
	}
	overview.Patients = len(patients)
	overview.Projects = len(projects)
	return overview
}
