package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkguard-service/internal/catalog"
	"parkguard-service/internal/domain/parking"
)

func newEstimator(t *testing.T) *ViolationEstimator {
	t.Helper()
	cat, err := catalog.Load("", "NYC", "USD")
	require.NoError(t, err)
	return NewViolationEstimator(cat, 115)
}

func TestEstimateForInvalidHydrantRule(t *testing.T) {
	e := newEstimator(t)

	est := e.EstimateFor(parking.Rule{Type: parking.RuleHydrant, Valid: false})
	require.NotNil(t, est)
	assert.Equal(t, "NYC-HYDRANT-15FT", est.ViolationCode)
	assert.Equal(t, 115, est.MinFineUSD)
	assert.Equal(t, 115, est.MaxFineUSD)
	assert.Equal(t, "NYC", est.Jurisdiction)
	assert.InDelta(t, 0.95, est.Confidence, 1e-9)
}

func TestNoEstimateForValidRule(t *testing.T) {
	e := newEstimator(t)

	assert.Nil(t, e.EstimateFor(parking.Rule{Type: parking.RuleHydrant, Valid: true}))
}

func TestNoEstimateForMeteredRule(t *testing.T) {
	e := newEstimator(t)

	assert.Nil(t, e.EstimateFor(parking.Rule{Type: parking.RuleMetered, Valid: false}))
}

func TestNoEstimateWithoutCatalogBand(t *testing.T) {
	e := newEstimator(t)

	assert.Nil(t, e.EstimateFor(parking.Rule{Type: parking.RuleHydrantUncertain, Valid: false}))
}

func TestAttachPreservesOrderAndSkipsValid(t *testing.T) {
	e := newEstimator(t)
	rules := []parking.Rule{
		{Type: parking.RuleStreetCleaning, Valid: true},
		{Type: parking.RuleHydrant, Valid: false},
		{Type: parking.RuleTaxiOnly, Valid: false},
	}

	e.Attach(rules)

	assert.Nil(t, rules[0].Estimate)
	require.NotNil(t, rules[1].Estimate)
	assert.Equal(t, "NYC-HYDRANT-15FT", rules[1].Estimate.ViolationCode)
	require.NotNil(t, rules[2].Estimate)
	assert.Equal(t, "NYC-TAXI-ONLY", rules[2].Estimate.ViolationCode)
}

func TestSummarizeAggregatesTotals(t *testing.T) {
	e := newEstimator(t)
	rules := []parking.Rule{
		{Type: parking.RuleHydrant, Valid: false},
		{Type: parking.RuleStreetCleaning, Valid: false},
		{Type: parking.RuleMetered, Valid: false},
	}
	e.Attach(rules)

	summary := e.Summarize(rules)
	require.NotNil(t, summary)
	assert.Equal(t, 115+65, summary.EstimatedTotalMinUSD)
	assert.Equal(t, 115+65, summary.EstimatedTotalMaxUSD)
	assert.Equal(t, 115, summary.HighestSingleMaxUSD)
	assert.Equal(t, 1, summary.HighRiskViolations)
	assert.Equal(t, "USD", summary.Currency)
}

func TestSummarizeNilWithoutEstimates(t *testing.T) {
	e := newEstimator(t)
	rules := []parking.Rule{
		{Type: parking.RuleStreetCleaning, Valid: true},
		{Type: parking.RuleMetered, Valid: true},
	}
	e.Attach(rules)

	assert.Nil(t, e.Summarize(rules))
}

func TestSummarizeManyViolations(t *testing.T) {
	e := newEstimator(t)
	rules := []parking.Rule{
		{Type: parking.RuleHydrant, Valid: false},
		{Type: parking.RuleFireZone, Valid: false},
		{Type: parking.RuleNoStanding, Valid: false},
	}
	e.Attach(rules)

	summary := e.Summarize(rules)
	require.NotNil(t, summary)
	assert.Equal(t, 115+115+95, summary.EstimatedTotalMinUSD)
	assert.Equal(t, 115+150+115, summary.EstimatedTotalMaxUSD)
	assert.Equal(t, 150, summary.HighestSingleMaxUSD)
	assert.Equal(t, 3, summary.HighRiskViolations)
}
