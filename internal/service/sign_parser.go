package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/repository"
	"parkguard-service/internal/schedule"
)

// SignParser classifies raw regulation records into typed rules,
// applying vehicle-profile exemptions at construction time. Keyword
// matching is a heuristic classifier, not a grammar: unrecognized text
// degrades to a pass-through rule, records with nothing to classify are
// skipped.
type SignParser struct {
	loc *time.Location
}

func NewSignParser(loc *time.Location) *SignParser {
	return &SignParser{loc: loc}
}

const signSource = "NYC DOT Sign"

// timeWindowPattern matches posted windows like "7AM-10AM" or
// "8:30 AM - 6 PM" (either dash spelling).
var timeWindowPattern = regexp.MustCompile(
	`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)\s*[-\x{2013}]\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)`)

// Parse converts one regulation record into a rule, or nil when the
// record carries nothing classifiable.
func (p *SignParser) Parse(row repository.Row, now time.Time, vehicle parking.VehicleProfile) *parking.Rule {
	orderType := strings.ToLower(strings.TrimSpace(repository.StringField(row, "order_type")))
	description := repository.StringField(row, "sign_desc")
	if description == "" {
		description = repository.StringField(row, "description")
	}
	if orderType == "" && description == "" {
		return nil
	}
	if orderType == "" {
		orderType = "unknown"
	}
	if description == "" {
		description = "No description"
	}
	descLower := strings.ToLower(description)

	if strings.Contains(orderType, "clean") || strings.Contains(descLower, "alternate side") {
		return p.cleaningRule(row, description, now)
	}

	if orderType == "no_standing" || strings.Contains(descLower, "no standing") {
		if rule := p.noStandingRule(row, description, descLower, now); rule != nil {
			return rule
		}
	}

	if containsAny(descLower, "loading", "truck loading", "commercial vehicles only", "trucks only") {
		return loadingRule(description, descLower, vehicle)
	}

	if isTaxiZone(descLower) || isFHVZone(descLower) {
		return taxiFHVRule(description, descLower, vehicle)
	}

	if containsAny(descLower, "fire zone", "fire lane", "fire department", "fdny", "emergency access") {
		return fireZoneRule(description, vehicle)
	}

	if isOfficialZone(descLower) {
		return officialRule(description, descLower, vehicle)
	}

	return passThroughRule(orderType, description)
}

func (p *SignParser) cleaningRule(row repository.Row, description string, now time.Time) *parking.Rule {
	startRaw := fieldOrDefault(row, "time_from", "06:00")
	endRaw := fieldOrDefault(row, "time_to", "09:00")
	daysRaw := fieldOrDefault(row, "days", "Mon-Fri")

	w := schedule.Window{
		Days:  schedule.ParseDaysSpec(daysRaw),
		Start: schedule.ParseTimeOfDay(startRaw, schedule.TimeOfDay{Hour: 6}),
		End:   schedule.ParseTimeOfDay(endRaw, schedule.TimeOfDay{Hour: 9}),
	}
	ev := w.Evaluate(now, p.loc)
	timeLeft := schedule.FormatCountdown(ev.Countdown)

	reason := fmt.Sprintf("Street cleaning starts in %s", timeLeft)
	severity := parking.SeverityMedium
	if ev.ActiveNow {
		reason = fmt.Sprintf("Street cleaning active now (ends in %s)", timeLeft)
		severity = parking.SeverityHigh
	}

	active := ev.ActiveNow
	return &parking.Rule{
		Type:           parking.RuleStreetCleaning,
		Description:    description,
		Severity:       severity,
		Valid:          !ev.ActiveNow,
		Reason:         reason,
		Source:         "NYC DOT Sweeping Schedule",
		NextOccurrence: &ev.NextStart,
		Window:         fmt.Sprintf("%s - %s", startRaw, endRaw),
		TimeLeft:       timeLeft,
		ActiveNow:      &active,
	}
}

func (p *SignParser) noStandingRule(row repository.Row, description, descLower string, now time.Time) *parking.Rule {
	startRaw := repository.StringField(row, "time_from")
	endRaw := repository.StringField(row, "time_to")
	daysRaw := repository.StringField(row, "days")

	if startRaw == "" || endRaw == "" {
		parsedStart, parsedEnd := extractTimeWindow(description)
		if startRaw == "" {
			startRaw = parsedStart
		}
		if endRaw == "" {
			endRaw = parsedEnd
		}
	}
	if daysRaw == "" {
		daysRaw = extractDaySpec(descLower)
	}
	if startRaw == "" || endRaw == "" {
		// Untimed "no standing" falls through to the generic branch.
		return nil
	}

	w := schedule.Window{
		Days:  schedule.ParseDaysSpec(daysRaw),
		Start: schedule.ParseTimeOfDay(startRaw, schedule.TimeOfDay{Hour: 6}),
		End:   schedule.ParseTimeOfDay(endRaw, schedule.TimeOfDay{Hour: 9}),
	}
	ev := w.Evaluate(now, p.loc)
	timeLeft := schedule.FormatCountdown(ev.Countdown)

	reason := fmt.Sprintf("No standing starts in %s", timeLeft)
	severity := parking.SeverityMedium
	if ev.ActiveNow {
		reason = fmt.Sprintf("No standing active now (ends in %s)", timeLeft)
		severity = parking.SeverityHigh
	}

	active := ev.ActiveNow
	return &parking.Rule{
		Type:        parking.RuleNoStanding,
		Description: description,
		Severity:    severity,
		Valid:       !ev.ActiveNow,
		Reason:      reason,
		Source:      signSource,
		Window:      fmt.Sprintf("%s - %s", startRaw, endRaw),
		TimeLeft:    timeLeft,
		ActiveNow:   &active,
	}
}

func loadingRule(description, descLower string, vehicle parking.VehicleProfile) *parking.Rule {
	allowsTruck := strings.Contains(descLower, "truck") || strings.Contains(descLower, "commercial")
	allowsLoading := strings.Contains(descLower, "loading")
	canUse := vehicle.VehicleType == parking.VehicleTruck && vehicle.CommercialPlate && (allowsTruck || allowsLoading)

	kind := parking.RuleLoadingOnly
	if strings.Contains(descLower, "truck") {
		kind = parking.RuleTruckLoading
	}

	rule := &parking.Rule{
		Type:        kind,
		Description: description,
		Severity:    parking.SeverityHigh,
		Valid:       canUse,
		Reason:      "Loading/truck-only zone. Requires commercial truck profile.",
		Source:      signSource,
	}
	if canUse {
		rule.Severity = parking.SeverityMedium
		rule.Reason = "Commercial truck profile matches loading/truck-only zone."
	}
	return rule
}

func isTaxiZone(descLower string) bool {
	return containsAny(descLower, "taxi stand", "taxi only", "taxicab", "taxi zone")
}

func isFHVZone(descLower string) bool {
	return containsAny(descLower, "for-hire", "for hire", "fhv", "tlc") &&
		containsAny(descLower, "stand", "pickup", "pick-up", "only", "zone")
}

func taxiFHVRule(description, descLower string, vehicle parking.VehicleProfile) *parking.Rule {
	var (
		kind      parking.RuleType
		zoneLabel string
		allowed   bool
	)
	if isTaxiZone(descLower) {
		kind = parking.RuleTaxiOnly
		zoneLabel = "Taxi-only zone"
		allowed = vehicle.VehicleType == parking.VehicleTaxi
	} else {
		kind = parking.RuleFHVOnly
		zoneLabel = "FHV/TLC zone"
		allowed = vehicle.VehicleType == parking.VehicleFHV || vehicle.VehicleType == parking.VehicleTaxi
	}

	rule := &parking.Rule{
		Type:        kind,
		Description: description,
		Severity:    parking.SeverityHigh,
		Valid:       allowed,
		Reason:      fmt.Sprintf("%s. Current vehicle type '%s' is not eligible.", zoneLabel, vehicle.VehicleType),
		Source:      signSource,
	}
	if allowed {
		rule.Severity = parking.SeverityLow
		rule.Reason = fmt.Sprintf("%s matches current vehicle profile.", zoneLabel)
	}
	return rule
}

func fireZoneRule(description string, vehicle parking.VehicleProfile) *parking.Rule {
	allowed := vehicle.Agency == parking.AgencyFire
	rule := &parking.Rule{
		Type:             parking.RuleFireZone,
		Description:      description,
		Severity:         parking.SeverityHigh,
		Valid:            allowed,
		Reason:           "Fire/emergency zone reserved for authorized fire access.",
		Source:           signSource,
		EligibleAgencies: []parking.Agency{parking.AgencyFire},
	}
	if allowed {
		rule.Reason = "Authorized fire-agency vehicle profile."
	}
	return rule
}

func isOfficialZone(descLower string) bool {
	return containsAny(descLower,
		"police only", "nypd", "department vehicles only", "official vehicles only",
		"authorized vehicles only", "government vehicles only", "agency vehicles only")
}

func officialRule(description, descLower string, vehicle parking.VehicleProfile) *parking.Rule {
	var eligible []parking.Agency
	switch {
	case containsAny(descLower, "police", "nypd"):
		eligible = []parking.Agency{parking.AgencyPolice}
	case containsAny(descLower, "fire", "fdny"):
		eligible = []parking.Agency{parking.AgencyFire}
	case strings.Contains(descLower, "school"):
		eligible = []parking.Agency{parking.AgencySchool}
	default:
		eligible = []parking.Agency{parking.AgencyCity, parking.AgencyPolice, parking.AgencyFire, parking.AgencySchool}
	}

	allowed := false
	names := make([]string, len(eligible))
	for i, a := range eligible {
		names[i] = string(a)
		if vehicle.Agency == a {
			allowed = true
		}
	}

	rule := &parking.Rule{
		Type:             parking.RuleOfficialOnly,
		Description:      description,
		Severity:         parking.SeverityHigh,
		Valid:            allowed,
		Reason:           fmt.Sprintf("Reserved for %s vehicles.", strings.Join(names, ", ")),
		Source:           signSource,
		EligibleAgencies: eligible,
	}
	if allowed {
		rule.Severity = parking.SeverityLow
		rule.Reason = "Authorized agency profile matches reserved spot."
	}
	return rule
}

func passThroughRule(orderType, description string) *parking.Rule {
	fine := 0
	if strings.Contains(orderType, "standing") || strings.Contains(orderType, "parking") {
		fine = 65
	}
	severity := parking.SeverityLow
	if fine > 0 {
		severity = parking.SeverityHigh
	}
	return &parking.Rule{
		Type:        parking.RuleType(orderType),
		Description: description,
		Severity:    severity,
		Valid:       true,
		Source:      signSource,
		FineUSD:     fine,
	}
}

// extractTimeWindow pulls an AM/PM window out of free sign text,
// normalized to 24h "HH:MM" values.
func extractTimeWindow(text string) (start, end string) {
	m := timeWindowPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return to24h(m[1], m[2], m[3]), to24h(m[4], m[5], m[6])
}

func to24h(hourStr, minuteStr, ampm string) string {
	hour := 0
	fmt.Sscanf(hourStr, "%d", &hour)
	hour %= 12
	if strings.EqualFold(ampm, "pm") {
		hour += 12
	}
	minute := 0
	if minuteStr != "" {
		fmt.Sscanf(minuteStr, "%d", &minute)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// extractDaySpec looks for day tokens in free sign text.
func extractDaySpec(textLower string) string {
	for _, token := range []string{"mon-fri", "monday-friday", "weekdays", "daily", "weekends", "sat-sun"} {
		if strings.Contains(textLower, token) {
			switch token {
			case "monday-friday", "weekdays":
				return "Mon-Fri"
			case "sat-sun":
				return "Sat-Sun"
			case "mon-fri":
				return "Mon-Fri"
			case "daily":
				return "Daily"
			default:
				return "Weekends"
			}
		}
	}
	return ""
}

func fieldOrDefault(row repository.Row, key, fallback string) string {
	if v := repository.StringField(row, key); v != "" {
		return v
	}
	return fallback
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
