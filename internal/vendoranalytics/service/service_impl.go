package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payora/internal/cache"
	"github.com/smallbiznis/payora/internal/config"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Repo   payabledomain.Repository
	Scores domain.ScoreProvider
	Cache  cache.Cache[CacheKey, domain.VendorAnalytics] `optional:"true"`
	Config config.Config
}

// CacheKey scopes a cached scorecard to one vendor and one evaluation day.
type CacheKey struct {
	VendorID snowflake.ID
	Day      time.Time
}

// Service computes the vendor scorecard.
type Service struct {
	log      *zap.Logger
	repo     payabledomain.Repository
	scores   domain.ScoreProvider
	cache    cache.Cache[CacheKey, domain.VendorAnalytics]
	cacheTTL time.Duration
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("vendoranalytics.service"),
		repo:     p.Repo,
		scores:   p.Scores,
		cache:    p.Cache,
		cacheTTL: p.Config.AnalyticsCacheTTL,
	}
}

func (s *Service) Analyze(ctx context.Context, eval payabledomain.Evaluation, vendorID snowflake.ID) (domain.VendorAnalytics, error) {
	key := CacheKey{VendorID: vendorID, Day: eval.Day()}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("vendor_analytics", time.Since(start).Seconds())
	}()

	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return domain.VendorAnalytics{}, err
	}

	bills, err := s.repo.ListBills(ctx, payabledomain.BillFilter{VendorID: &vendor.ID})
	if err != nil {
		return domain.VendorAnalytics{}, err
	}

	// A vendor with no billing history has no negative history either:
	// report the documented neutral scorecard instead of failing.
	if len(bills) == 0 {
		analytics := neutralAnalytics(vendor)
		s.store(key, analytics)
		return analytics, nil
	}

	payments, err := s.repo.ListPayments(ctx, payabledomain.PaymentFilter{VendorID: &vendor.ID})
	if err != nil {
		return domain.VendorAnalytics{}, err
	}

	scores, err := s.resolveScores(ctx, vendor.ID)
	if err != nil {
		return domain.VendorAnalytics{}, err
	}

	analytics := domain.VendorAnalytics{
		VendorID:          vendor.ID,
		VendorName:        vendor.Name,
		YTDSpend:          ytdSpend(payments, eval.AsOf),
		AverageOrderValue: averageOrderValue(bills),
		BillCount:         len(bills),
		TermsAdherence:    termsAdherence(bills, payments),
		Scores:            scores,
	}
	analytics.OverallScore = scores.Mean()
	analytics.Relationship = relationship(analytics)

	s.store(key, analytics)
	return analytics, nil
}

func (s *Service) store(key CacheKey, analytics domain.VendorAnalytics) {
	if s.cache != nil {
		s.cache.Set(key, analytics, s.cacheTTL)
	}
}

func (s *Service) resolveScores(ctx context.Context, vendorID snowflake.ID) (domain.VendorScores, error) {
	scores, err := s.scores.Scores(ctx, vendorID)
	if errors.Is(err, domain.ErrNoScores) {
		s.log.Debug("no feedback signals, using neutral scores", zap.String("vendor_id", vendorID.String()))
		return domain.NeutralScores(), nil
	}
	if err != nil {
		return domain.VendorScores{}, err
	}
	return scores, nil
}

func neutralAnalytics(vendor payabledomain.Vendor) domain.VendorAnalytics {
	scores := domain.NeutralScores()
	return domain.VendorAnalytics{
		VendorID:       vendor.ID,
		VendorName:     vendor.Name,
		YTDSpend:       decimal.Zero,
		TermsAdherence: 1.0,
		Scores:         scores,
		OverallScore:   scores.Mean(),
		Relationship:   domain.RelationshipStandard,
	}
}

// termsAdherence is the fraction of matched payments made on or before the
// related bill's due date. Payments without a matching bill are excluded from
// the denominator rather than counted as late.
func termsAdherence(bills []payabledomain.Bill, payments []payabledomain.Payment) float64 {
	billsByID := make(map[snowflake.ID]payabledomain.Bill, len(bills))
	for _, bill := range bills {
		billsByID[bill.ID] = bill
	}

	var matched, onTime int
	for _, payment := range payments {
		if payment.BillID == nil {
			continue
		}
		bill, ok := billsByID[*payment.BillID]
		if !ok {
			continue
		}
		matched++
		if !payabledomain.Day(payment.PaidAt).After(payabledomain.Day(bill.DueDate)) {
			onTime++
		}
	}

	if matched == 0 {
		return 1.0
	}
	return float64(onTime) / float64(matched)
}

func ytdSpend(payments []payabledomain.Payment, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		if payment.PaidAt.UTC().Year() == asOf.UTC().Year() && !payment.PaidAt.After(asOf) {
			total = total.Add(payment.Amount)
		}
	}
	return total
}

func averageOrderValue(bills []payabledomain.Bill) decimal.Decimal {
	if len(bills) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, bill := range bills {
		total = total.Add(bill.TotalAmount)
	}
	return total.Div(decimal.NewFromInt(int64(len(bills)))).Round(2)
}

var preferredSpendFloor = decimal.NewFromInt(10000)

// relationship applies the tiering rules in order: preferred requires both a
// strong overall score and material YTD spend; terminate and review catch the
// weak tail; everything else is standard.
func relationship(analytics domain.VendorAnalytics) domain.RelationshipStatus {
	switch {
	case analytics.OverallScore >= 0.9 && analytics.YTDSpend.GreaterThanOrEqual(preferredSpendFloor):
		return domain.RelationshipPreferred
	case analytics.OverallScore < 0.4:
		return domain.RelationshipTerminate
	case analytics.OverallScore < 0.6 || analytics.TermsAdherence < 0.8:
		return domain.RelationshipReview
	default:
		return domain.RelationshipStandard
	}
}
