package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/forecast/domain"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	baseConfidence  = 0.95
	confidenceDecay = 0.02
	confidenceFloor = 0.30
)

var (
	lowCashThreshold = decimal.NewFromInt(10000)
	heavyLoadFactor  = decimal.NewFromInt(2)
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     payabledomain.Repository
	Receipts domain.ReceiptsSignal
}

// Service builds the daily cash projection from open bill balances and the
// injected receipts signal. Deterministic for a fixed snapshot and signal.
type Service struct {
	log      *zap.Logger
	repo     payabledomain.Repository
	receipts domain.ReceiptsSignal
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("forecast.service"),
		repo:     p.Repo,
		receipts: p.Receipts,
	}
}

func (s *Service) Forecast(ctx context.Context, eval payabledomain.Evaluation, horizonDays int) ([]domain.Entry, error) {
	if horizonDays < 0 {
		return nil, domain.ErrInvalidHorizon
	}

	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("forecast", time.Since(start).Seconds())
	}()

	bills, err := s.repo.ListBills(ctx, payabledomain.BillFilter{
		Statuses: []payabledomain.BillStatus{
			payabledomain.BillStatusOpen,
			payabledomain.BillStatusPartial,
			payabledomain.BillStatusDisputed,
		},
	})
	if err != nil {
		return nil, err
	}

	dueByDay := make(map[time.Time]decimal.Decimal)
	for _, bill := range bills {
		day := payabledomain.Day(bill.DueDate)
		dueByDay[day] = dueByDay[day].Add(bill.Balance)
	}

	startDay := eval.Day()
	cumulative := eval.StartingBalance
	entries := make([]domain.Entry, 0, horizonDays+1)

	for i := 0; i <= horizonDays; i++ {
		day := startDay.AddDate(0, 0, i)

		payments := dueByDay[day]

		// Day 0 receipts are forced to zero: same-day collections are
		// already reflected in the starting balance.
		receipts := decimal.Zero
		if i > 0 {
			receipts = s.receipts.ExpectedReceipts(day)
		}

		net := receipts.Sub(payments)
		cumulative = cumulative.Add(net)

		confidence := baseConfidence - confidenceDecay*float64(i)
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}

		entries = append(entries, domain.Entry{
			Date:              day,
			ExpectedPayments:  payments,
			ExpectedReceipts:  receipts,
			NetFlow:           net,
			CumulativeBalance: cumulative,
			Confidence:        confidence,
			RiskFlags:         riskFlags(i, payments, receipts, cumulative, confidence),
		})
	}

	return entries, nil
}

func riskFlags(offset int, payments, receipts, cumulative decimal.Decimal, confidence float64) []string {
	var flags []string
	if cumulative.LessThan(lowCashThreshold) {
		flags = append(flags, domain.FlagLowCashBalance)
	}
	if payments.GreaterThan(receipts.Mul(heavyLoadFactor)) {
		flags = append(flags, domain.FlagHeavyObligations)
	}
	if offset > 15 && confidence < 0.7 {
		flags = append(flags, domain.FlagUncertainty)
	}
	return flags
}
