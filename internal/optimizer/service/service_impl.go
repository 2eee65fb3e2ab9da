package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/config"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	"github.com/smallbiznis/payora/internal/optimizer/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	vendoranalyticsdomain "github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	delayDays        = 7
	qualityThreshold = 0.7
)

var (
	materialSavings    = decimal.NewFromInt(100)
	negotiateThreshold = decimal.NewFromInt(-10000)
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      payabledomain.Repository
	Forecast  forecastdomain.Service
	Analytics vendoranalyticsdomain.Service
	Config    config.Config
}

// Service implements the per-bill payment decision.
type Service struct {
	log            *zap.Logger
	repo           payabledomain.Repository
	forecast       forecastdomain.Service
	analytics      vendoranalyticsdomain.Service
	defaultHorizon int
}

func NewService(p Params) domain.Service {
	return &Service{
		log:            p.Log.Named("optimizer.service"),
		repo:           p.Repo,
		forecast:       p.Forecast,
		analytics:      p.Analytics,
		defaultHorizon: p.Config.DefaultHorizonDays,
	}
}

func (s *Service) Optimize(ctx context.Context, eval payabledomain.Evaluation, bill payabledomain.Bill) (domain.PaymentOptimization, error) {
	if err := payabledomain.ValidateBill(bill); err != nil {
		return domain.PaymentOptimization{}, err
	}

	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("optimize", time.Since(start).Seconds())
	}()

	entries, err := s.forecastByDay(ctx, eval, []payabledomain.Bill{bill})
	if err != nil {
		return domain.PaymentOptimization{}, err
	}

	return s.optimizeWithForecast(ctx, eval, bill, entries)
}

// OptimizeMany evaluates bills element-wise and order-preserving. Integrity
// violations are collected into the result instead of aborting the batch;
// any other error stops the evaluation.
func (s *Service) OptimizeMany(ctx context.Context, eval payabledomain.Evaluation, bills []payabledomain.Bill) (domain.BatchResult, error) {
	if len(bills) == 0 {
		return domain.BatchResult{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("optimize_many", time.Since(start).Seconds())
	}()

	entries, err := s.forecastByDay(ctx, eval, bills)
	if err != nil {
		return domain.BatchResult{}, err
	}

	results := make([]*domain.PaymentOptimization, len(bills))
	violations := make([]*payabledomain.DataIntegrityError, len(bills))

	g, gctx := errgroup.WithContext(ctx)
	for i, bill := range bills {
		g.Go(func() error {
			if err := payabledomain.ValidateBill(bill); err != nil {
				var die payabledomain.DataIntegrityError
				if errors.As(err, &die) {
					violations[i] = &die
					return nil
				}
				return err
			}
			opt, err := s.optimizeWithForecast(gctx, eval, bill, entries)
			if err != nil {
				return err
			}
			results[i] = &opt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BatchResult{}, err
	}

	batch := domain.BatchResult{}
	for i := range bills {
		if violations[i] != nil {
			batch.Violations = append(batch.Violations, *violations[i])
			continue
		}
		if results[i] != nil {
			batch.Optimizations = append(batch.Optimizations, *results[i])
		}
	}
	metrics.Portfolio().AddIntegrityViolations(len(batch.Violations))
	return batch, nil
}

// forecastByDay builds one projection for the evaluation and indexes it by
// calendar day. The horizon stretches to cover the latest due date in the
// batch plus the delay window.
func (s *Service) forecastByDay(ctx context.Context, eval payabledomain.Evaluation, bills []payabledomain.Bill) (map[time.Time]forecastdomain.Entry, error) {
	horizon := s.defaultHorizon
	start := eval.Day()
	for _, bill := range bills {
		days := daysBetween(start, payabledomain.Day(bill.DueDate)) + delayDays
		if days > horizon {
			horizon = days
		}
	}

	entries, err := s.forecast.Forecast(ctx, eval, horizon)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]forecastdomain.Entry, len(entries))
	for _, entry := range entries {
		byDay[entry.Date] = entry
	}
	return byDay, nil
}

func (s *Service) optimizeWithForecast(
	ctx context.Context,
	eval payabledomain.Evaluation,
	bill payabledomain.Bill,
	entries map[time.Time]forecastdomain.Entry,
) (domain.PaymentOptimization, error) {
	vendor, err := s.repo.GetVendor(ctx, bill.VendorID)
	if err != nil {
		return domain.PaymentOptimization{}, err
	}

	analytics, err := s.analytics.Analyze(ctx, eval, vendor.ID)
	if err != nil {
		return domain.PaymentOptimization{}, err
	}

	dueDay := payabledomain.Day(bill.DueDate)
	opt := domain.PaymentOptimization{
		BillID:       bill.ID,
		VendorID:     bill.VendorID,
		DaysUntilDue: daysBetween(eval.Day(), dueDay),
		Discount:     discountFor(eval, bill, vendor),
	}

	// Cash-flow impact on the would-be payment date. A missing entry is
	// surfaced, never silently treated as healthy.
	if entry, ok := entries[dueDay]; ok {
		opt.CashFlowImpact = entry.CumulativeBalance.Sub(bill.Balance)
	} else {
		opt.CashFlowImpact = decimal.Zero
		opt.ForecastMissing = true
	}

	// Decision order is a deliberate tie-break: material discount capture
	// first, cash preservation second, vendor-quality delay last.
	switch {
	case opt.Discount != nil && opt.Discount.Savings.GreaterThan(materialSavings):
		opt.Action = domain.ActionPayImmediately
		opt.OptimalPayDate = opt.Discount.Deadline
		opt.Confidence = 0.9
	case !opt.ForecastMissing && opt.CashFlowImpact.LessThan(negotiateThreshold):
		opt.Action = domain.ActionNegotiateTerms
		opt.OptimalPayDate = dueDay
		opt.Confidence = 0.75
	case analytics.Scores.Quality < qualityThreshold:
		opt.Action = domain.ActionDelayPayment
		opt.OptimalPayDate = dueDay.AddDate(0, 0, delayDays)
		opt.Confidence = 0.65
	default:
		opt.Action = domain.ActionPayOnDueDate
		opt.OptimalPayDate = dueDay
		opt.Confidence = 0.8
	}

	return opt, nil
}

// discountFor recomputes discount eligibility per evaluation; the window is
// anchored to the bill's issue date and closes after issue + window days.
func discountFor(eval payabledomain.Evaluation, bill payabledomain.Bill, vendor payabledomain.Vendor) *domain.DiscountDetail {
	if !vendor.OffersEarlyPayDiscount() {
		return nil
	}

	deadline := payabledomain.Day(bill.IssueDate).AddDate(0, 0, vendor.EarlyPayWindowDays)
	if eval.Day().After(deadline) {
		return nil
	}

	savings := bill.TotalAmount.
		Mul(vendor.EarlyPayDiscountPercent).
		Div(decimal.NewFromInt(100)).
		Round(2)

	return &domain.DiscountDetail{
		Percent:  vendor.EarlyPayDiscountPercent,
		Deadline: deadline,
		Savings:  savings,
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
