package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	decisionsTotalCounter  *prometheus.CounterVec
	executionsTotalCounter *prometheus.CounterVec
	stepsTotalCounter      *prometheus.CounterVec
	approvalsTotalCounter  *prometheus.CounterVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		decisionsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_decisions_total",
				Help: "Total number of referral decisions by action.",
			},
			[]string{"action"},
		)

		executionsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_executions_total",
				Help: "Total number of workflow execution status transitions by status.",
			},
			[]string{"status"},
		)

		stepsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_steps_total",
				Help: "Total number of step terminal updates by status.",
			},
			[]string{"status"},
		)

		approvalsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_approvals_total",
				Help: "Total number of recorded approvals by approver role.",
			},
			[]string{"role"},
		)

		prometheus.MustRegister(
			decisionsTotalCounter,
			executionsTotalCounter,
			stepsTotalCounter,
			approvalsTotalCounter,
		)

		// Ensure counter vectors are visible at /metrics before first increment.
		for _, action := range []string{"accept", "review", "reject"} {
			decisionsTotalCounter.WithLabelValues(action)
		}
		for _, status := range []string{"running", "pending_approval", "completed", "failed"} {
			executionsTotalCounter.WithLabelValues(status)
			stepsTotalCounter.WithLabelValues(status)
		}
		for _, role := range []string{"qa_rn", "clinical_director"} {
			approvalsTotalCounter.WithLabelValues(role)
		}
	})
}

func IncDecision(action string) {
	Init()
	decisionsTotalCounter.WithLabelValues(action).Inc()
}

func IncExecutionStatus(status string) {
	Init()
	executionsTotalCounter.WithLabelValues(status).Inc()
}

func IncStepStatus(status string) {
	Init()
	stepsTotalCounter.WithLabelValues(status).Inc()
}

func IncApproval(role string) {
	Init()
	approvalsTotalCounter.WithLabelValues(role).Inc()
}
