package service

import (
	"parkguard-service/internal/config"
	"parkguard-service/internal/domain/parking"
)

// DecisionEngine folds evaluated rules into one vehicle-facing verdict.
// Severity classification and risk weights come from the config table,
// not hard-coded branches; rule order decides ties, so evaluation order
// from the parsers must be preserved.
type DecisionEngine struct {
	table config.DecisionConfig
}

func NewDecisionEngine(table config.DecisionConfig) *DecisionEngine {
	return &DecisionEngine{table: table}
}

const (
	actionBlocked = "Do not park here. Move to another spot."
	actionCaution = "Parking may be allowed now, but review restrictions."
	actionSafe    = "Proceed to park, then verify on-street signage."
)

// Decide reduces the rule set. Any blocking-severity invalid rule forces
// blocked regardless of advisories; the primary reason is the first
// highest-weight violation in evaluation order.
func (d *DecisionEngine) Decide(rules []parking.Rule) parking.ParkingDecision {
	var (
		blockedReason string
		blockedWeight int
		cautionReason string
		risk          int
	)

	for _, rule := range rules {
		if !rule.Valid {
			weight, blocking := d.table.BlockingWeights[string(rule.Type)]
			if !blocking {
				continue
			}
			if weight > risk {
				risk = weight
			}
			// Strictly greater keeps the first occurrence on ties.
			if blockedReason == "" || weight > blockedWeight {
				blockedReason = reasonOrDescription(rule)
				blockedWeight = weight
			}
			continue
		}

		weight, advisory := d.table.AdvisoryWeights[string(rule.Type)]
		if !advisory || !advisoryTriggered(rule) {
			continue
		}
		if weight > risk {
			risk = weight
		}
		if cautionReason == "" {
			cautionReason = advisoryReason(rule)
		}
	}

	if risk > 100 {
		risk = 100
	}

	if blockedReason != "" {
		if risk == 0 {
			risk = d.table.BlockedDefault
		}
		return parking.ParkingDecision{
			Status:            parking.StatusBlocked,
			RiskScore:         risk,
			PrimaryReason:     blockedReason,
			RecommendedAction: actionBlocked,
		}
	}

	if cautionReason != "" {
		if risk == 0 {
			risk = d.table.CautionDefault
		}
		return parking.ParkingDecision{
			Status:            parking.StatusCaution,
			RiskScore:         risk,
			PrimaryReason:     cautionReason,
			RecommendedAction: actionCaution,
		}
	}

	return parking.ParkingDecision{
		Status:            parking.StatusSafe,
		RiskScore:         d.table.SafeBaseline,
		PrimaryReason:     "No active restrictions detected in current rule set.",
		RecommendedAction: actionSafe,
	}
}

// advisoryTriggered decides whether a currently-valid rule still
// warrants caution: an imminent recurring window, an uncertain hydrant
// answer, or an active meter.
func advisoryTriggered(rule parking.Rule) bool {
	switch rule.Type {
	case parking.RuleHydrantUncertain:
		return true
	case parking.RuleStreetCleaning, parking.RuleNoStanding:
		return rule.TimeLeft != ""
	case parking.RuleMetered:
		return rule.ActiveNow != nil && *rule.ActiveNow
	}
	return false
}

func advisoryReason(rule parking.Rule) string {
	if rule.Type == parking.RuleMetered {
		return "Meter payment required"
	}
	return reasonOrDescription(rule)
}

func reasonOrDescription(rule parking.Rule) string {
	if rule.Reason != "" {
		return rule.Reason
	}
	return rule.Description
}
