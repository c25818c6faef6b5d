package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parkguard-service/internal/config"
	"parkguard-service/internal/domain/parking"
)

func newDecider() *DecisionEngine {
	return NewDecisionEngine(config.DefaultDecision())
}

func boolPtr(b bool) *bool { return &b }

func TestDecideSafeWithNoRules(t *testing.T) {
	d := newDecider().Decide(nil)

	assert.Equal(t, parking.StatusSafe, d.Status)
	assert.Equal(t, 10, d.RiskScore)
	assert.Equal(t, actionSafe, d.RecommendedAction)
}

func TestDecideSafeWithOnlyValidRules(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleHydrant, Valid: true},
		{Type: parking.RuleTaxiOnly, Valid: true},
	})

	assert.Equal(t, parking.StatusSafe, d.Status)
}

func TestDecideHydrantViolationBlocksAt97(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleHydrant, Valid: false, Reason: "Too close to hydrant: 12.0 ft (minimum 15 ft)."},
	})

	assert.Equal(t, parking.StatusBlocked, d.Status)
	assert.Equal(t, 97, d.RiskScore)
	assert.Equal(t, "Too close to hydrant: 12.0 ft (minimum 15 ft).", d.PrimaryReason)
	assert.Equal(t, actionBlocked, d.RecommendedAction)
}

func TestDecideBlockingBeatsAnyNumberOfAdvisories(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleMetered, Valid: true, ActiveNow: boolPtr(true)},
		{Type: parking.RuleStreetCleaning, Valid: true, TimeLeft: "3h 0m", Reason: "Street cleaning starts in 3h 0m"},
		{Type: parking.RuleHydrantUncertain, Valid: true, Reason: "Possible hydrant nearby.", Uncertain: true},
		{Type: parking.RuleTaxiOnly, Valid: false, Reason: "Taxi-only zone."},
	})

	assert.Equal(t, parking.StatusBlocked, d.Status)
	assert.Equal(t, "Taxi-only zone.", d.PrimaryReason)
	assert.Equal(t, 93, d.RiskScore)
}

func TestDecidePrimaryReasonIsHighestWeightFirstOccurrence(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleLoadingOnly, Valid: false, Reason: "loading zone"},
		{Type: parking.RuleHydrant, Valid: false, Reason: "first hydrant"},
		{Type: parking.RuleHydrant, Valid: false, Reason: "second hydrant"},
	})

	assert.Equal(t, parking.StatusBlocked, d.Status)
	assert.Equal(t, "first hydrant", d.PrimaryReason)
	assert.Equal(t, 97, d.RiskScore)
}

func TestDecideActiveCleaningBlocks(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{
			Type:      parking.RuleStreetCleaning,
			Valid:     false,
			Reason:    "Street cleaning active now (ends in 1h 30m)",
			ActiveNow: boolPtr(true),
			TimeLeft:  "1h 30m",
		},
	})

	assert.Equal(t, parking.StatusBlocked, d.Status)
	assert.Equal(t, 95, d.RiskScore)
}

func TestDecideUpcomingCleaningIsCaution(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{
			Type:     parking.RuleStreetCleaning,
			Valid:    true,
			Reason:   "Street cleaning starts in 24h 0m",
			TimeLeft: "24h 0m",
		},
	})

	assert.Equal(t, parking.StatusCaution, d.Status)
	assert.Equal(t, 60, d.RiskScore)
	assert.Equal(t, "Street cleaning starts in 24h 0m", d.PrimaryReason)
	assert.Equal(t, actionCaution, d.RecommendedAction)
}

func TestDecideUncertainHydrantIsCaution(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleHydrantUncertain, Valid: true, Reason: "Possible hydrant nearby.", Uncertain: true},
	})

	assert.Equal(t, parking.StatusCaution, d.Status)
	assert.Equal(t, 55, d.RiskScore)
}

func TestDecideActiveMeterIsLowCaution(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleMetered, Valid: true, ActiveNow: boolPtr(true)},
	})

	assert.Equal(t, parking.StatusCaution, d.Status)
	assert.Equal(t, "Meter payment required", d.PrimaryReason)
	// The meter weight stands on its own; the caution default never
	// raises a triggered weight.
	assert.Equal(t, 30, d.RiskScore)
}

func TestDecideCautionDefaultOnlyFillsZeroScore(t *testing.T) {
	table := config.DefaultDecision()
	table.AdvisoryWeights["metered"] = 0

	d := NewDecisionEngine(table).Decide([]parking.Rule{
		{Type: parking.RuleMetered, Valid: true, ActiveNow: boolPtr(true)},
	})

	assert.Equal(t, parking.StatusCaution, d.Status)
	assert.Equal(t, 50, d.RiskScore)
}

func TestDecideInactiveMeterIsSafe(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleMetered, Valid: true, ActiveNow: boolPtr(false)},
	})

	assert.Equal(t, parking.StatusSafe, d.Status)
}

func TestDecideInvalidRuleOutsideTableIsIgnored(t *testing.T) {
	d := newDecider().Decide([]parking.Rule{
		{Type: parking.RuleType("mystery"), Valid: false, Reason: "who knows"},
	})

	assert.Equal(t, parking.StatusSafe, d.Status)
}
