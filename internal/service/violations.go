package service

import (
	"parkguard-service/internal/catalog"
	"parkguard-service/internal/domain/parking"
)

// ViolationEstimator attaches fine-band estimates to invalid rules and
// aggregates the response-level summary. It never fabricates a band: a
// rule kind missing from the catalog simply carries no estimate.
type ViolationEstimator struct {
	catalog     *catalog.FineCatalog
	highRiskUSD int
}

func NewViolationEstimator(cat *catalog.FineCatalog, highRiskUSD int) *ViolationEstimator {
	return &ViolationEstimator{catalog: cat, highRiskUSD: highRiskUSD}
}

// EstimateFor maps an invalid rule to its fine band, if one exists.
// Metered rules are a payment reminder and are never estimated.
func (e *ViolationEstimator) EstimateFor(rule parking.Rule) *parking.ViolationEstimate {
	if rule.Type == parking.RuleMetered {
		return nil
	}
	if rule.Valid {
		return nil
	}
	band, ok := e.catalog.Lookup(rule.Type)
	if !ok {
		return nil
	}
	return &parking.ViolationEstimate{
		ViolationCode: band.ViolationCode,
		MinFineUSD:    band.MinUSD,
		MaxFineUSD:    band.MaxUSD,
		Jurisdiction:  e.catalog.Jurisdiction,
		Confidence:    band.Confidence,
		Note:          band.Note,
	}
}

// Attach populates estimates in place, preserving rule order.
func (e *ViolationEstimator) Attach(rules []parking.Rule) {
	for i := range rules {
		rules[i].Estimate = e.EstimateFor(rules[i])
	}
}

// Summarize aggregates all attached estimates. Returns nil when no rule
// carries an estimate, so the response field stays absent.
func (e *ViolationEstimator) Summarize(rules []parking.Rule) *parking.ViolationSummary {
	summary := parking.ViolationSummary{Currency: e.catalog.Currency}
	seen := 0

	for _, rule := range rules {
		est := rule.Estimate
		if est == nil {
			continue
		}
		seen++
		summary.EstimatedTotalMinUSD += est.MinFineUSD
		summary.EstimatedTotalMaxUSD += est.MaxFineUSD
		if est.MaxFineUSD > summary.HighestSingleMaxUSD {
			summary.HighestSingleMaxUSD = est.MaxFineUSD
		}
		if est.MaxFineUSD >= e.highRiskUSD {
			summary.HighRiskViolations++
		}
	}

	if seen == 0 {
		return nil
	}
	return &summary
}
