package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	queriesServed   atomic.Int64
	uploadsAccepted atomic.Int64
	uploadsRejected atomic.Int64
	snapshotRecords atomic.Int64
	snapshotValid   atomic.Int64
)

func IncQueries() {
	queriesServed.Add(1)
}

func IncUploadsAccepted() {
	uploadsAccepted.Add(1)
}

func IncUploadsRejected() {
	uploadsRejected.Add(1)
}

func ObserveSnapshot(total, valid int) {
	snapshotRecords.Store(int64(total))
	snapshotValid.Store(int64(valid))
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP omicstatus_queries_served_total Dashboard queries served since start.\n")
	fmt.Fprintf(w, "# TYPE omicstatus_queries_served_total counter\n")
	fmt.Fprintf(w, "omicstatus_queries_served_total %d\n", queriesServed.Load())
	fmt.Fprintf(w, "# HELP omicstatus_uploads_accepted_total Dataset uploads accepted since start.\n")
	fmt.Fprintf(w, "# TYPE omicstatus_uploads_accepted_total counter\n")
	fmt.Fprintf(w, "omicstatus_uploads_accepted_total %d\n", uploadsAccepted.Load())
	fmt.Fprintf(w, "# HELP omicstatus_uploads_rejected_total Dataset uploads rejected since start.\n")
	fmt.Fprintf(w, "# TYPE omicstatus_uploads_rejected_total counter\n")
	fmt.Fprintf(w, "omicstatus_uploads_rejected_total %d\n", uploadsRejected.Load())
	fmt.Fprintf(w, "# HELP omicstatus_snapshot_records Records in the current dataset snapshot.\n")
	fmt.Fprintf(w, "# TYPE omicstatus_snapshot_records gauge\n")
	fmt.Fprintf(w, "omicstatus_snapshot_records %d\n", snapshotRecords.Load())
	fmt.Fprintf(w, "# HELP omicstatus_snapshot_valid_records Valid records in the current dataset snapshot.\n")
	fmt.Fprintf(w, "# TYPE omicstatus_snapshot_valid_records gauge\n")
	fmt.Fprintf(w, "omicstatus_snapshot_valid_records %d\n", snapshotValid.Load())
}

func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	}
}
