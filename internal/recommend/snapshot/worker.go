package snapshot

import (
	"context"
	"time"

	approvaldomain "github.com/smallbiznis/payora/internal/approval/domain"
	"github.com/smallbiznis/payora/internal/clock"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Repo      payabledomain.Repository
	Forecast  forecastdomain.Service
	Workflows approvaldomain.Repository
	Config    Config `optional:"true"`
}

// Worker periodically recomputes the headline portfolio numbers and pushes
// them into the metrics registry. It never mutates engine state.
type Worker struct {
	log       *zap.Logger
	clock     clock.Clock
	repo      payabledomain.Repository
	forecast  forecastdomain.Service
	workflows approvaldomain.Repository
	cfg       Config
}

func NewWorker(p Params) *Worker {
	cfg := p.Config.withDefaults()
	return &Worker{
		log:       p.Log.Named("recommend.snapshot"),
		clock:     p.Clock,
		repo:      p.Repo,
		forecast:  p.Forecast,
		workflows: p.Workflows,
		cfg:       cfg,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("portfolio snapshot run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	balance, err := w.repo.CashBalance(ctx)
	if err != nil {
		return err
	}

	eval := payabledomain.Evaluation{
		AsOf:            w.clock.Now(),
		StartingBalance: balance,
	}

	entries, err := w.forecast.Forecast(ctx, eval, w.cfg.HorizonDays)
	if err != nil {
		return err
	}

	m := metrics.Portfolio()
	if len(entries) > 0 {
		horizonBalance, _ := entries[len(entries)-1].CumulativeBalance.Float64()
		m.SetProjectedCash(horizonBalance)
	}

	overdue, err := w.overdueExposure(ctx, eval)
	if err != nil {
		return err
	}
	m.SetOverdueExposure(overdue)

	open, err := w.workflows.CountOpen(ctx)
	if err != nil {
		return err
	}
	m.SetOpenWorkflows(float64(open))

	return nil
}

func (w *Worker) overdueExposure(ctx context.Context, eval payabledomain.Evaluation) (float64, error) {
	day := eval.Day()
	bills, err := w.repo.ListBills(ctx, payabledomain.BillFilter{
		Statuses: []payabledomain.BillStatus{
			payabledomain.BillStatusOpen,
			payabledomain.BillStatusPartial,
		},
		DueBefore: &day,
	})
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, bill := range bills {
		amount, _ := bill.Balance.Float64()
		total += amount
	}
	return total, nil
}
