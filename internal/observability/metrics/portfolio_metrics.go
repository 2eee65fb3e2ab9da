package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PortfolioMetrics tracks engine evaluations and the headline portfolio
// gauges refreshed by the snapshot worker.
type PortfolioMetrics struct {
	evaluations      *prometheus.CounterVec
	evaluationTime   *prometheus.HistogramVec
	integrityErrors  prometheus.Counter
	projectedCash    prometheus.Gauge
	overdueExposure  prometheus.Gauge
	openWorkflows    prometheus.Gauge
	versionConflicts prometheus.Counter
}

var (
	portfolioMetricsOnce sync.Once
	portfolioMetrics     *PortfolioMetrics
)

// Portfolio returns the process-wide metrics registry entry.
func Portfolio() *PortfolioMetrics {
	return PortfolioWithConfig(Config{})
}

func PortfolioWithConfig(cfg Config) *PortfolioMetrics {
	portfolioMetricsOnce.Do(func() {
		portfolioMetrics = newPortfolioMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return portfolioMetrics
}

func ResetPortfolioMetricsForTest() {
	if m := portfolioMetrics; m != nil {
		prometheus.DefaultRegisterer.Unregister(m.evaluations)
		prometheus.DefaultRegisterer.Unregister(m.evaluationTime)
		prometheus.DefaultRegisterer.Unregister(m.integrityErrors)
		prometheus.DefaultRegisterer.Unregister(m.projectedCash)
		prometheus.DefaultRegisterer.Unregister(m.overdueExposure)
		prometheus.DefaultRegisterer.Unregister(m.openWorkflows)
		prometheus.DefaultRegisterer.Unregister(m.versionConflicts)
	}
	portfolioMetricsOnce = sync.Once{}
	portfolioMetrics = nil
}

func newPortfolioMetrics(registerer prometheus.Registerer, cfg Config) *PortfolioMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "payora"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &PortfolioMetrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payora_evaluations_total",
			Help:        "Engine evaluations by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		evaluationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "payora_evaluation_duration_seconds",
			Help:        "Engine evaluation latency by operation.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"operation"}),
		integrityErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payora_integrity_violations_total",
			Help:        "Source records rejected for violating domain invariants.",
			ConstLabels: constLabels,
		}),
		projectedCash: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "payora_projected_cash_balance",
			Help:        "Projected cumulative cash balance at the forecast horizon.",
			ConstLabels: constLabels,
		}),
		overdueExposure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "payora_overdue_exposure",
			Help:        "Summed balances of unpaid bills past their due date.",
			ConstLabels: constLabels,
		}),
		openWorkflows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "payora_open_workflows",
			Help:        "Approval workflows still pending a decision.",
			ConstLabels: constLabels,
		}),
		versionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payora_workflow_version_conflicts_total",
			Help:        "Approver actions rejected by the optimistic version check.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.evaluations,
		m.evaluationTime,
		m.integrityErrors,
		m.projectedCash,
		m.overdueExposure,
		m.openWorkflows,
		m.versionConflicts,
	)

	return m
}

func (m *PortfolioMetrics) ObserveEvaluation(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(operation).Inc()
	m.evaluationTime.WithLabelValues(operation).Observe(seconds)
}

func (m *PortfolioMetrics) AddIntegrityViolations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.integrityErrors.Add(float64(n))
}

func (m *PortfolioMetrics) IncVersionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}

func (m *PortfolioMetrics) SetProjectedCash(balance float64) {
	if m == nil {
		return
	}
	m.projectedCash.Set(balance)
}

func (m *PortfolioMetrics) SetOverdueExposure(total float64) {
	if m == nil {
		return
	}
	m.overdueExposure.Set(total)
}

func (m *PortfolioMetrics) SetOpenWorkflows(count float64) {
	if m == nil {
		return
	}
	m.openWorkflows.Set(count)
}
