package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wonlab/omics-status/pkg/common/kafka"
	"github.com/wonlab/omics-status/pkg/common/logger"
	"github.com/wonlab/omics-status/pkg/common/models"
	"github.com/wonlab/omics-status/pkg/observability/metrics"
	"github.com/wonlab/omics-status/pkg/schema"
	"github.com/wonlab/omics-status/pkg/validate"
)

const EventDatasetReplaced = "dataset.replaced"

// Service owns the in-memory record set. Uploads replace the whole set under
// a write lock; reads see a consistent snapshot. Validation and aggregation
// stay pure functions over whatever snapshot a reader grabbed.
type Service struct {
	repo     *Repository
	producer *kafka.Producer
	cache    *redis.Client
	schema   *schema.Schema

	cacheTTL  time.Duration
	sheetName string
	maxRows   int

	mu         sync.RWMutex
	snapshotID string
	records    []models.SampleRecord
}

type Option func(*Service)

func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithProducer(producer *kafka.Producer) Option {
	return func(s *Service) {
		s.producer = producer
	}
}

func WithSheet(name string) Option {
	return func(s *Service) {
		s.sheetName = name
	}
}

func WithRowLimit(limit int) Option {
	return func(s *Service) {
		s.maxRows = limit
	}
}

func NewService(repo *Repository, sch *schema.Schema, opts ...Option) *Service {
	svc := &Service{repo: repo, schema: sch}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Warm loads the persisted snapshot into memory on startup. An empty
// database is not an error; the service simply starts with no data.
func (s *Service) Warm(ctx context.Context) error {
	snapshotID, records, err := s.repo.LoadCurrent(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted snapshot: %w", err)
	}
	valid := 0
	if len(records) > 0 {
		valid = len(validate.Classify(records, s.schema).Valid)
	}
	s.swapSnapshot(snapshotID, records, valid)
	if len(records) > 0 {
		logger.Log.WithFields(map[string]interface{}{
			"snapshot_id": snapshotID,
			"records":     len(records),
		}).Info("Loaded dataset snapshot")
	}
	return nil
}

// Replace parses the uploaded workbook, validates it, persists the new
// record set and swaps it in. Schema errors abort before anything is
// replaced; row-level findings never do.
func (s *Service) Replace(ctx context.Context, file io.Reader, fileName, uploadedBy string) (*models.UploadResponse, error) {
	records, err := ParseWorkbook(file, s.sheetName, s.maxRows)
	if err != nil {
		return nil, err
	}

	report := validate.Classify(records, s.schema)
	summary := report.Summary()
	snapshotID := uuid.New().String()

	if err := s.repo.ReplaceAll(ctx, snapshotID, records); err != nil {
		return nil, fmt.Errorf("persisting dataset snapshot: %w", err)
	}

	upload := &Upload{
		ID:          snapshotID,
		FileName:    fileName,
		UploadedBy:  uploadedBy,
		RecordCount: len(records),
		Summary:     summaryMap(summary),
	}
	if err := s.repo.RecordUpload(ctx, upload); err != nil {
		logger.Log.WithError(err).Warn("failed to record upload audit row")
	}

	s.cacheReport(ctx, snapshotID, report)

	if s.producer != nil {
		payload := map[string]interface{}{
			"snapshot_id":   snapshotID,
			"file_name":     fileName,
			"uploaded_by":   uploadedBy,
			"total_records": summary.TotalRecords,
			"valid_records": summary.ValidRecords,
			"replaced_at":   time.Now().UTC(),
		}
		if err := s.producer.PublishEvent(ctx, EventDatasetReplaced, "dashboard-service", payload); err != nil {
			logger.Log.WithError(err).Warn("failed to publish dataset event")
		}
	}

	s.swapSnapshot(snapshotID, records, summary.ValidRecords)

	logger.Log.WithFields(map[string]interface{}{
		"snapshot_id": snapshotID,
		"records":     len(records),
		"valid":       summary.ValidRecords,
	}).Info("Dataset replaced")

	return &models.UploadResponse{
		SnapshotID: snapshotID,
		FileName:   fileName,
		UploadedBy: uploadedBy,
		Summary:    summary,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// swapSnapshot installs a record set as the current snapshot and brings the
// snapshot gauges in line, so a warmed snapshot is reported the same way an
// uploaded one is.
func (s *Service) swapSnapshot(snapshotID string, records []models.SampleRecord, valid int) {
	s.mu.Lock()
	s.snapshotID = snapshotID
	s.records = records
	s.mu.Unlock()
	metrics.ObserveSnapshot(len(records), valid)
}

// Snapshot returns the current snapshot ID and records. Callers must treat
// the slice as read-only.
func (s *Service) Snapshot() (string, []models.SampleRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotID, s.records
}

// ValidRecords runs classification over the current snapshot and returns the
// valid subset. Recomputed on every call; the record sets involved are small
// enough that a cache would buy nothing but staleness bugs.
func (s *Service) ValidRecords() []models.SampleRecord {
	_, records := s.Snapshot()
	if len(records) == 0 {
		return nil
	}
	return validate.Classify(records, s.schema).Valid
}

// Validation serves the full classification report, via the cache when one
// is configured.
func (s *Service) Validation(ctx context.Context) validate.Report {
	snapshotID, records := s.Snapshot()
	if cached, ok := s.cachedReport(ctx, snapshotID); ok {
		return cached
	}
	report := validate.Classify(records, s.schema)
	s.cacheReport(ctx, snapshotID, report)
	return report
}

func (s *Service) LatestUpload(ctx context.Context) (*Upload, error) {
	return s.repo.LatestUpload(ctx)
}

func (s *Service) Schema() *schema.Schema {
	return s.schema
}

func (s *Service) cacheReport(ctx context.Context, snapshotID string, report validate.Report) {
	if s.cache == nil || snapshotID == "" {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, validationKey(snapshotID), payload, s.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).Debug("failed to cache validation report")
	}
}

func (s *Service) cachedReport(ctx context.Context, snapshotID string) (validate.Report, bool) {
	if s.cache == nil || snapshotID == "" {
		return validate.Report{}, false
	}
	payload, err := s.cache.Get(ctx, validationKey(snapshotID)).Bytes()
	if err != nil {
		return validate.Report{}, false
	}
	var report validate.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return validate.Report{}, false
	}
	return report, true
}

func validationKey(snapshotID string) string {
	return fmt.Sprintf("validation:%s", snapshotID)
}

func summaryMap(summary models.ValidationSummary) map[string]interface{} {
	return map[string]interface{}{
		"total_records":        summary.TotalRecords,
		"valid_records":        summary.ValidRecords,
		"invalid_visit":        summary.InvalidVisit,
		"invalid_omics_tissue": summary.InvalidOmicsTissue,
		"invalid_project":      summary.InvalidProject,
		"duplicate_records":    summary.DuplicateRecords,
		"valid_percent":        summary.ValidPercent,
	}
}
