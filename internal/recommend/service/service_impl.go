package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	forecastdomain "github.com/smallbiznis/payora/internal/forecast/domain"
	"github.com/smallbiznis/payora/internal/observability/metrics"
	optimizerdomain "github.com/smallbiznis/payora/internal/optimizer/domain"
	payabledomain "github.com/smallbiznis/payora/internal/payable/domain"
	"github.com/smallbiznis/payora/internal/recommend/domain"
	vendoranalyticsdomain "github.com/smallbiznis/payora/internal/vendoranalytics/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	discountBucketFloor  = decimal.NewFromInt(50)
	negotiationSpendBar  = decimal.NewFromInt(25000)
	negotiationRate      = decimal.NewFromFloat(0.02)
	negotiationAdherence = 0.9
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Repo      payabledomain.Repository
	Optimizer optimizerdomain.Service
	Analytics vendoranalyticsdomain.Service
}

// Service aggregates per-bill decisions into portfolio recommendations.
type Service struct {
	log       *zap.Logger
	repo      payabledomain.Repository
	optimizer optimizerdomain.Service
	analytics vendoranalyticsdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("recommend.service"),
		repo:      p.Repo,
		optimizer: p.Optimizer,
		analytics: p.Analytics,
	}
}

// recommendation plus its bucket key, used for the stable within-priority
// ordering.
type keyedRecommendation struct {
	key string
	rec domain.PortfolioRecommendation
}

func priorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 0
	case domain.PriorityMedium:
		return 1
	default:
		return 2
	}
}

func (s *Service) Recommend(ctx context.Context, eval payabledomain.Evaluation, horizonDays int) ([]domain.PortfolioRecommendation, error) {
	if horizonDays < 0 {
		return nil, forecastdomain.ErrInvalidHorizon
	}
	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("recommend", time.Since(start).Seconds())
	}()

	// Candidate bills are bounded by the requested horizon; anything already
	// overdue sorts before the cutoff and stays in scope.
	cutoff := eval.Day().AddDate(0, 0, horizonDays+1)
	bills, err := s.repo.ListBills(ctx, payabledomain.BillFilter{
		Statuses: []payabledomain.BillStatus{
			payabledomain.BillStatusOpen,
			payabledomain.BillStatusPartial,
		},
		DueBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}

	batch, err := s.optimizer.OptimizeMany(ctx, eval, bills)
	if err != nil {
		return nil, err
	}
	for _, violation := range batch.Violations {
		s.log.Warn("skipping bill with integrity violation",
			zap.String("bill_id", violation.BillID.String()),
			zap.String("reason", violation.Reason),
		)
	}

	var keyed []keyedRecommendation

	if rec, ok := discountBucket(batch.Optimizations); ok {
		keyed = append(keyed, keyedRecommendation{key: "discounts", rec: rec})
	}
	if rec, ok := overdueBucket(eval, bills); ok {
		keyed = append(keyed, keyedRecommendation{key: "overdue", rec: rec})
	}

	negotiation, err := s.negotiationBuckets(ctx, eval, bills)
	if err != nil {
		return nil, err
	}
	keyed = append(keyed, negotiation...)

	sort.SliceStable(keyed, func(i, j int) bool {
		pi, pj := priorityRank(keyed[i].rec.Priority), priorityRank(keyed[j].rec.Priority)
		if pi != pj {
			return pi < pj
		}
		return keyed[i].key < keyed[j].key
	})

	recs := make([]domain.PortfolioRecommendation, 0, len(keyed))
	for _, entry := range keyed {
		recs = append(recs, entry.rec)
	}
	return recs, nil
}

// discountBucket groups bills whose open early-payment discount is worth
// acting on.
func discountBucket(optimizations []optimizerdomain.PaymentOptimization) (domain.PortfolioRecommendation, bool) {
	var billIDs []snowflake.ID
	savings := decimal.Zero
	for _, opt := range optimizations {
		if opt.Discount == nil || !opt.Discount.Savings.GreaterThan(discountBucketFloor) {
			continue
		}
		billIDs = append(billIDs, opt.BillID)
		savings = savings.Add(opt.Discount.Savings)
	}
	if len(billIDs) == 0 {
		return domain.PortfolioRecommendation{}, false
	}
	return domain.PortfolioRecommendation{
		Priority:         domain.PriorityHigh,
		Action:           fmt.Sprintf("Capture early-payment discounts on %d bill(s)", len(billIDs)),
		BillIDs:          billIDs,
		PotentialSavings: savings,
		CashFlowImpact:   savings,
	}, true
}

// overdueBucket groups unpaid bills already past due. They carry no savings,
// only the negative cash impact of the summed balances.
func overdueBucket(eval payabledomain.Evaluation, bills []payabledomain.Bill) (domain.PortfolioRecommendation, bool) {
	var billIDs []snowflake.ID
	exposure := decimal.Zero
	for _, bill := range bills {
		if !bill.Unpaid() {
			continue
		}
		if payabledomain.Day(bill.DueDate).Before(eval.Day()) {
			billIDs = append(billIDs, bill.ID)
			exposure = exposure.Add(bill.Balance)
		}
	}
	if len(billIDs) == 0 {
		return domain.PortfolioRecommendation{}, false
	}
	return domain.PortfolioRecommendation{
		Priority:         domain.PriorityHigh,
		Action:           fmt.Sprintf("Pay %d overdue bill(s) to avoid late fees and vendor friction", len(billIDs)),
		BillIDs:          billIDs,
		PotentialSavings: decimal.Zero,
		CashFlowImpact:   exposure.Neg(),
	}, true
}

// negotiationBuckets finds vendors with the spend and payment record to
// support a terms negotiation. Savings are modeled as a 2% cash-flow-timing
// benefit on the vendor's open bills, not a discount.
func (s *Service) negotiationBuckets(ctx context.Context, eval payabledomain.Evaluation, bills []payabledomain.Bill) ([]keyedRecommendation, error) {
	billsByVendor := make(map[snowflake.ID][]payabledomain.Bill)
	for _, bill := range bills {
		billsByVendor[bill.VendorID] = append(billsByVendor[bill.VendorID], bill)
	}

	vendorIDs := make([]snowflake.ID, 0, len(billsByVendor))
	for vendorID := range billsByVendor {
		vendorIDs = append(vendorIDs, vendorID)
	}
	sort.Slice(vendorIDs, func(i, j int) bool { return vendorIDs[i] < vendorIDs[j] })

	var keyed []keyedRecommendation
	for _, vendorID := range vendorIDs {
		analytics, err := s.analytics.Analyze(ctx, eval, vendorID)
		if err != nil {
			return nil, err
		}
		if !analytics.YTDSpend.GreaterThan(negotiationSpendBar) || analytics.TermsAdherence <= negotiationAdherence {
			continue
		}

		total := decimal.Zero
		var billIDs []snowflake.ID
		for _, bill := range billsByVendor[vendorID] {
			billIDs = append(billIDs, bill.ID)
			total = total.Add(bill.TotalAmount)
		}
		savings := total.Mul(negotiationRate).Round(2)

		keyed = append(keyed, keyedRecommendation{
			key: "negotiate:" + vendorID.String(),
			rec: domain.PortfolioRecommendation{
				Priority:         domain.PriorityMedium,
				Action:           fmt.Sprintf("Negotiate extended payment terms with %s", analytics.VendorName),
				BillIDs:          billIDs,
				PotentialSavings: savings,
				CashFlowImpact:   savings,
			},
		})
	}
	return keyed, nil
}

func (s *Service) VendorStrategies(ctx context.Context, eval payabledomain.Evaluation) ([]domain.VendorPaymentStrategy, error) {
	start := time.Now()
	defer func() {
		metrics.Portfolio().ObserveEvaluation("vendor_strategies", time.Since(start).Seconds())
	}()

	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, err
	}

	strategies := make([]domain.VendorPaymentStrategy, 0, len(vendors))
	for _, vendor := range vendors {
		if !vendor.Active {
			continue
		}
		analytics, err := s.analytics.Analyze(ctx, eval, vendor.ID)
		if err != nil {
			return nil, err
		}
		timing, rationale := strategyFor(vendor, analytics)
		strategies = append(strategies, domain.VendorPaymentStrategy{
			VendorID:   vendor.ID,
			VendorName: vendor.Name,
			Timing:     timing,
			Rationale:  rationale,
			Analytics:  analytics,
		})
	}
	return strategies, nil
}

func strategyFor(vendor payabledomain.Vendor, analytics vendoranalyticsdomain.VendorAnalytics) (domain.PaymentTiming, string) {
	switch analytics.Relationship {
	case vendoranalyticsdomain.RelationshipPreferred:
		if vendor.OffersEarlyPayDiscount() {
			return domain.TimingCaptureDiscounts, "Preferred vendor with an open discount window; pay early to capture it"
		}
		return domain.TimingPayOnTerms, "Preferred vendor; pay reliably on terms to protect the relationship"
	case vendoranalyticsdomain.RelationshipReview:
		return domain.TimingExtendToTerms, "Relationship under review; use the full terms window until performance recovers"
	case vendoranalyticsdomain.RelationshipTerminate:
		return domain.TimingHoldForReview, "Performance below the termination line; hold payments pending manual review"
	default:
		return domain.TimingPayOnTerms, "Standard vendor; pay on the agreed terms"
	}
}
