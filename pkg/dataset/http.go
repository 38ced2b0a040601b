package dataset

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wonlab/omics-status/pkg/common/logger"
	"github.com/wonlab/omics-status/pkg/observability/metrics"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/dataset", h.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/dataset/validation", h.handleValidation).Methods(http.MethodGet)
	router.HandleFunc("/dataset/validation/summary", h.handleValidationSummary).Methods(http.MethodGet)
	router.HandleFunc("/dataset/uploads/latest", h.handleLatestUpload).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	resp, err := h.service.Replace(r.Context(), file, header.Filename, r.FormValue("uploaded_by"))
	if err != nil {
		if IsSchemaError(err) {
			metrics.IncUploadsRejected()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to replace dataset")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.IncUploadsAccepted()
	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) handleValidation(w http.ResponseWriter, r *http.Request) {
	report := h.service.Validation(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) handleValidationSummary(w http.ResponseWriter, r *http.Request) {
	report := h.service.Validation(r.Context())
	writeJSON(w, http.StatusOK, report.Summary())
}

func (h *HTTPHandler) handleLatestUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := h.service.LatestUpload(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUploads) {
			http.Error(w, "no uploads recorded", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch latest upload")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
