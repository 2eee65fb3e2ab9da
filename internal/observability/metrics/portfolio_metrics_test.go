package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvaluationMovesCounterAndHistogram(t *testing.T) {
	m := newPortfolioMetrics(prometheus.NewRegistry(), Config{})

	m.ObserveEvaluation("forecast", 0.25)
	m.ObserveEvaluation("forecast", 0.50)
	m.ObserveEvaluation("optimize", 0.10)

	if got := testutil.ToFloat64(m.evaluations.WithLabelValues("forecast")); got != 2 {
		t.Fatalf("expected 2 forecast evaluations, got %f", got)
	}
	if got := testutil.ToFloat64(m.evaluations.WithLabelValues("optimize")); got != 1 {
		t.Fatalf("expected 1 optimize evaluation, got %f", got)
	}
	if got := testutil.CollectAndCount(m.evaluationTime); got != 2 {
		t.Fatalf("expected 2 duration series, got %d", got)
	}
}

func TestIntegrityAndConflictCounters(t *testing.T) {
	m := newPortfolioMetrics(prometheus.NewRegistry(), Config{})

	m.AddIntegrityViolations(3)
	m.AddIntegrityViolations(0)
	m.AddIntegrityViolations(-1)
	if got := testutil.ToFloat64(m.integrityErrors); got != 3 {
		t.Fatalf("expected 3 integrity violations, got %f", got)
	}

	m.IncVersionConflict()
	m.IncVersionConflict()
	if got := testutil.ToFloat64(m.versionConflicts); got != 2 {
		t.Fatalf("expected 2 version conflicts, got %f", got)
	}
}

func TestPortfolioGauges(t *testing.T) {
	m := newPortfolioMetrics(prometheus.NewRegistry(), Config{ServiceName: "payora", Environment: "test"})

	m.SetProjectedCash(1234.5)
	m.SetOverdueExposure(800)
	m.SetOpenWorkflows(4)

	if got := testutil.ToFloat64(m.projectedCash); got != 1234.5 {
		t.Fatalf("expected projected cash 1234.5, got %f", got)
	}
	if got := testutil.ToFloat64(m.overdueExposure); got != 800 {
		t.Fatalf("expected overdue exposure 800, got %f", got)
	}
	if got := testutil.ToFloat64(m.openWorkflows); got != 4 {
		t.Fatalf("expected 4 open workflows, got %f", got)
	}
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *PortfolioMetrics
	m.ObserveEvaluation("forecast", 1)
	m.AddIntegrityViolations(1)
	m.IncVersionConflict()
	m.SetProjectedCash(1)
	m.SetOverdueExposure(1)
	m.SetOpenWorkflows(1)
}
