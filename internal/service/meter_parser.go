package service

import (
	"strings"

	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/repository"
)

// ParseMeter converts a raw meter record into an advisory rule. Meters
// are a payment reminder, not a ticket assertion, so they never carry a
// violation estimate.
func ParseMeter(row repository.Row) parking.Rule {
	active := strings.EqualFold(repository.StringField(row, "status"), "active")

	rule := parking.Rule{
		Type:        parking.RuleMetered,
		Description: fieldOrDefault(row, "meter_hours", "Pay & Display"),
		Severity:    parking.SeverityInfo,
		Valid:       active,
		Source:      "NYC Parking Meters",
		Rate:        "3.50 USD/hour",
		MaxTime:     fieldOrDefault(row, "max_time", "2 hours"),
		Hours:       fieldOrDefault(row, "hours", "08:00 - 20:00 Mon-Fri"),
		ActiveNow:   &active,
	}
	if active {
		rule.Severity = parking.SeverityLow
	} else {
		rule.Reason = "Inactive or outside operating hours"
	}
	return rule
}
