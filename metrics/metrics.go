package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WorkflowOperations counts audited operations by outcome (completed, rejected, failed)
	WorkflowOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "court_transfer_operations_total",
			Help: "Audited API operations by component, action and outcome.",
		},
		[]string{"component", "action", "outcome"},
	)

	// TransferDecisions counts committed status transitions
	TransferDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "court_transfer_decisions_total",
			Help: "Transfer request status transitions by resulting status.",
		},
		[]string{"status"},
	)

	// AuditWriteFailures counts audit entries that could not be persisted
	AuditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "court_transfer_audit_write_failures_total",
		Help: "Audit log entries that failed to persist.",
	})

	// AttachmentsSwept counts orphaned attachment objects removed by the sweep job
	AttachmentsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "court_transfer_attachments_swept_total",
		Help: "Orphaned attachment objects deleted by the sweep job.",
	})

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(WorkflowOperations, TransferDecisions, AuditWriteFailures, AttachmentsSwept)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
