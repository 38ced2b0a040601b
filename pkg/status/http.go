// Package status exposes the dashboard query surface: cross-tabulated
// patient counts, assay combinations, hierarchical selection filters and
// sample listings, each available as JSON or as an xlsx download.
package status

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wonlab/omics-status/pkg/aggregate"
	"github.com/wonlab/omics-status/pkg/common/logger"
	"github.com/wonlab/omics-status/pkg/common/models"
	"github.com/wonlab/omics-status/pkg/dataset"
	"github.com/wonlab/omics-status/pkg/export"
	"github.com/wonlab/omics-status/pkg/observability/metrics"
)

type Handler struct {
	service *dataset.Service
}

func NewHandler(service *dataset.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/status/overview", h.handleOverview).Methods(http.MethodGet)
	router.HandleFunc("/status/projects", h.handleProjects).Methods(http.MethodGet)
	router.HandleFunc("/status/projects/{project}/counts", h.handleProjectCounts).Methods(http.MethodGet)
	router.HandleFunc("/status/projects/{project}/combinations", h.handleCombinations).Methods(http.MethodGet)
	router.HandleFunc("/status/omics", h.handleOmics).Methods(http.MethodGet)
	router.HandleFunc("/status/omics/{omics}/counts", h.handleOmicsCounts).Methods(http.MethodGet)
	router.HandleFunc("/status/selection/union", h.handleSelectionUnion).Methods(http.MethodPost)
	router.HandleFunc("/status/selection/intersection", h.handleSelectionIntersection).Methods(http.MethodPost)
	router.HandleFunc("/status/samples/paths", h.handleSamplePaths).Methods(http.MethodGet)
	router.HandleFunc("/status/schema", h.handleSchema).Methods(http.MethodGet)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	overview := aggregate.Summarize(h.service.ValidRecords())
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	projects := aggregate.Projects(h.service.ValidRecords())
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (h *Handler) handleOmics(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	omics := aggregate.OmicsTypes(h.service.ValidRecords())
	writeJSON(w, http.StatusOK, map[string]interface{}{"omics": omics})
}

func (h *Handler) handleProjectCounts(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	project := mux.Vars(r)["project"]
	table := aggregate.ProjectPatientCounts(h.service.ValidRecords(), project)
	respondTable(w, r, fmt.Sprintf("%s_patient_counts", project), table)
}

func (h *Handler) handleOmicsCounts(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	omics := mux.Vars(r)["omics"]
	table := aggregate.OmicsPatientCounts(h.service.ValidRecords(), omics)
	respondTable(w, r, fmt.Sprintf("%s_patient_counts", omics), table)
}

func (h *Handler) handleCombinations(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	project := mux.Vars(r)["project"]
	records := h.service.ValidRecords()
	scoped := scopeToProject(records, project)
	table := aggregate.CombinationTable(scoped)
	respondTable(w, r, fmt.Sprintf("%s_combinations", project), table)
}

// SelectionRequest scopes a hierarchical omics → tissue → visit filter,
// optionally to a single project.
type SelectionRequest struct {
	Project   string              `json:"project,omitempty"`
	Selection aggregate.Selection `json:"selection"`
}

type SelectionResponse struct {
	Patients  int          `json:"patients"`
	Samples   int          `json:"samples"`
	Breakdown models.Table `json:"breakdown"`
	Matrix    models.Table `json:"sample_matrix"`
	NoData    bool         `json:"no_data"`
}

func (h *Handler) handleSelectionUnion(w http.ResponseWriter, r *http.Request) {
	h.handleSelection(w, r, aggregate.SelectUnion)
}

func (h *Handler) handleSelectionIntersection(w http.ResponseWriter, r *http.Request) {
	h.handleSelection(w, r, aggregate.SelectIntersection)
}

func (h *Handler) handleSelection(w http.ResponseWriter, r *http.Request, apply func([]models.SampleRecord, aggregate.Selection) []models.SampleRecord) {
	metrics.IncQueries()

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Selection.Empty() {
		http.Error(w, "selection must choose at least one omics", http.StatusBadRequest)
		return
	}

	records := scopeToProject(h.service.ValidRecords(), req.Project)
	matched := apply(records, req.Selection)
	rollup := aggregate.Rollup(matched)
	matrix := aggregate.SampleMatrix(matched)

	if wantsExcel(r) {
		sheets := []export.Sheet{
			{Name: "Breakdown", Table: rollup.Breakdown},
			{Name: "Samples", Table: matrix},
		}
		streamWorkbook(w, "selection", sheets)
		return
	}

	writeJSON(w, http.StatusOK, SelectionResponse{
		Patients:  rollup.Patients,
		Samples:   rollup.Samples,
		Breakdown: rollup.Breakdown,
		Matrix:    matrix,
		NoData:    len(matched) == 0,
	})
}

func (h *Handler) handleSamplePaths(w http.ResponseWriter, r *http.Request) {
	metrics.IncQueries()
	records := scopeToProject(h.service.ValidRecords(), r.URL.Query().Get("project"))
	table := aggregate.SamplePaths(records)
	respondTable(w, r, "sample_paths", table)
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	sch := h.service.Schema()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"visits":   sch.Visits,
		"projects": sch.Projects,
		"omics":    sch.Omics,
		"tissues":  sch.Tissues,
		"pairs":    sch.Pairs(),
	})
}

func scopeToProject(records []models.SampleRecord, project string) []models.SampleRecord {
	if project == "" {
		return records
	}
	var out []models.SampleRecord
	for _, rec := range records {
		if rec.Project == project {
			out = append(out, rec)
		}
	}
	return out
}

func wantsExcel(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

func respondTable(w http.ResponseWriter, r *http.Request, name string, table models.Table) {
	if wantsExcel(r) {
		streamWorkbook(w, name, []export.Sheet{{Name: "Data", Table: table}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"table":   table,
		"no_data": table.Empty(),
	})
}

func streamWorkbook(w http.ResponseWriter, name string, sheets []export.Sheet) {
	f, err := export.Workbook(sheets)
	if err != nil {
		logger.Log.WithError(err).Error("failed to build workbook")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	if err := f.Write(w); err != nil {
		logger.Log.WithError(err).Error("failed to stream workbook")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
