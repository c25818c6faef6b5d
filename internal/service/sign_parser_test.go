package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/repository"
)

var ny = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func passengerProfile() parking.VehicleProfile {
	return parking.VehicleProfile{
		VehicleType: parking.VehiclePassenger,
		Agency:      parking.AgencyNone,
	}
}

func TestParseSkipsEmptyRecord(t *testing.T) {
	p := NewSignParser(ny)

	rule := p.Parse(repository.Row{}, time.Now(), passengerProfile())
	assert.Nil(t, rule)
}

func TestParseStreetCleaningActiveWindow(t *testing.T) {
	p := NewSignParser(ny)
	now := time.Date(2026, 2, 23, 7, 0, 0, 0, ny) // Monday 07:00

	rule := p.Parse(repository.Row{
		"order_type": "street_cleaning",
		"sign_desc":  "Alternate Side Parking",
		"time_from":  "06:00",
		"time_to":    "09:00",
		"days":       "Mon-Fri",
	}, now, passengerProfile())

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleStreetCleaning, rule.Type)
	assert.False(t, rule.Valid)
	require.NotNil(t, rule.ActiveNow)
	assert.True(t, *rule.ActiveNow)
	assert.Equal(t, "2h 0m", rule.TimeLeft)
	assert.Contains(t, rule.Reason, "active now")
	assert.Contains(t, rule.Reason, "ends in 2h 0m")
	assert.Equal(t, "06:00 - 09:00", rule.Window)
}

func TestParseStreetCleaningUpcomingWindow(t *testing.T) {
	p := NewSignParser(ny)
	now := time.Date(2026, 2, 23, 10, 0, 0, 0, ny) // Monday, after the window

	rule := p.Parse(repository.Row{
		"order_type": "sweeping_clean",
		"sign_desc":  "Street Cleaning Mon-Fri",
	}, now, passengerProfile())

	require.NotNil(t, rule)
	assert.True(t, rule.Valid)
	assert.Equal(t, "20h 0m", rule.TimeLeft)
	assert.Contains(t, rule.Reason, "starts in 20h 0m")
	require.NotNil(t, rule.NextOccurrence)
	assert.Equal(t, time.Tuesday, rule.NextOccurrence.Weekday())
}

func TestParseNoStandingFromFreeText(t *testing.T) {
	p := NewSignParser(ny)
	now := time.Date(2026, 2, 23, 8, 0, 0, 0, ny) // Monday 08:00

	rule := p.Parse(repository.Row{
		"order_type": "no_standing",
		"sign_desc":  "NO STANDING 7AM-10AM MON-FRI",
	}, now, passengerProfile())

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleNoStanding, rule.Type)
	assert.False(t, rule.Valid)
	assert.Equal(t, "07:00 - 10:00", rule.Window)
	assert.Contains(t, rule.Reason, "No standing active now")
}

func TestParseUntimedNoStandingFallsThrough(t *testing.T) {
	p := NewSignParser(ny)

	rule := p.Parse(repository.Row{
		"order_type": "no_standing",
		"sign_desc":  "No Standing Anytime",
	}, time.Now(), passengerProfile())

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleType("no_standing"), rule.Type)
	assert.True(t, rule.Valid)
	assert.Equal(t, 65, rule.FineUSD)
}

func TestLoadingZoneBlocksPassenger(t *testing.T) {
	p := NewSignParser(ny)

	rule := p.Parse(repository.Row{
		"order_type": "parking",
		"sign_desc":  "Truck Loading Only",
	}, time.Now(), passengerProfile())

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleTruckLoading, rule.Type)
	assert.False(t, rule.Valid)
	assert.Equal(t, parking.SeverityHigh, rule.Severity)
}

func TestLoadingZoneAllowsCommercialTruck(t *testing.T) {
	p := NewSignParser(ny)
	truck := parking.VehicleProfile{
		VehicleType:     parking.VehicleTruck,
		CommercialPlate: true,
		Agency:          parking.AgencyNone,
	}

	rule := p.Parse(repository.Row{
		"order_type": "parking",
		"sign_desc":  "Truck Loading Only",
	}, time.Now(), truck)

	require.NotNil(t, rule)
	assert.True(t, rule.Valid, "a commercial truck must never receive an invalid loading-zone rule")
}

func TestLoadingZoneBlocksTruckWithoutCommercialPlate(t *testing.T) {
	p := NewSignParser(ny)
	truck := parking.VehicleProfile{
		VehicleType: parking.VehicleTruck,
		Agency:      parking.AgencyNone,
	}

	rule := p.Parse(repository.Row{
		"sign_desc": "Loading Only",
	}, time.Now(), truck)

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleLoadingOnly, rule.Type)
	assert.False(t, rule.Valid)
}

func TestTaxiStandBlocksPassengerAllowsTaxi(t *testing.T) {
	p := NewSignParser(ny)
	row := repository.Row{"sign_desc": "Taxi Stand No Standing Others"}

	blocked := p.Parse(row, time.Now(), passengerProfile())
	require.NotNil(t, blocked)
	assert.Equal(t, parking.RuleTaxiOnly, blocked.Type)
	assert.False(t, blocked.Valid)
	assert.Contains(t, blocked.Reason, "passenger")

	taxi := parking.VehicleProfile{VehicleType: parking.VehicleTaxi, Agency: parking.AgencyNone}
	allowed := p.Parse(row, time.Now(), taxi)
	require.NotNil(t, allowed)
	assert.True(t, allowed.Valid)
}

func TestFHVZoneAllowsTaxiAndFHV(t *testing.T) {
	p := NewSignParser(ny)
	row := repository.Row{"sign_desc": "FHV Pickup Zone"}

	for _, vt := range []parking.VehicleType{parking.VehicleTaxi, parking.VehicleFHV} {
		rule := p.Parse(row, time.Now(), parking.VehicleProfile{VehicleType: vt, Agency: parking.AgencyNone})
		require.NotNil(t, rule)
		assert.Equal(t, parking.RuleFHVOnly, rule.Type)
		assert.True(t, rule.Valid, "vehicle type %s should be eligible", vt)
	}

	rule := p.Parse(row, time.Now(), passengerProfile())
	require.NotNil(t, rule)
	assert.False(t, rule.Valid)
}

func TestFireZoneRequiresFireAffiliation(t *testing.T) {
	p := NewSignParser(ny)
	row := repository.Row{"sign_desc": "Fire Lane - Emergency Access"}

	blocked := p.Parse(row, time.Now(), passengerProfile())
	require.NotNil(t, blocked)
	assert.Equal(t, parking.RuleFireZone, blocked.Type)
	assert.False(t, blocked.Valid)

	fire := parking.VehicleProfile{VehicleType: parking.VehiclePassenger, Agency: parking.AgencyFire}
	allowed := p.Parse(row, time.Now(), fire)
	require.NotNil(t, allowed)
	assert.True(t, allowed.Valid)
}

func TestOfficialZoneRespectsAgency(t *testing.T) {
	p := NewSignParser(ny)
	row := repository.Row{"order_type": "parking", "sign_desc": "NYPD Official Vehicles Only"}

	blocked := p.Parse(row, time.Now(), passengerProfile())
	require.NotNil(t, blocked)
	assert.Equal(t, parking.RuleOfficialOnly, blocked.Type)
	assert.False(t, blocked.Valid)
	assert.Equal(t, []parking.Agency{parking.AgencyPolice}, blocked.EligibleAgencies)

	police := parking.VehicleProfile{VehicleType: parking.VehiclePassenger, Agency: parking.AgencyPolice}
	allowed := p.Parse(row, time.Now(), police)
	require.NotNil(t, allowed)
	assert.True(t, allowed.Valid)
}

func TestGenericOfficialZoneAcceptsAnyAgency(t *testing.T) {
	p := NewSignParser(ny)
	row := repository.Row{"sign_desc": "Authorized Vehicles Only"}

	city := parking.VehicleProfile{VehicleType: parking.VehiclePassenger, Agency: parking.AgencyCity}
	rule := p.Parse(row, time.Now(), city)
	require.NotNil(t, rule)
	assert.True(t, rule.Valid)
}

func TestUnrecognizedTextDegradesToPassThrough(t *testing.T) {
	p := NewSignParser(ny)

	rule := p.Parse(repository.Row{
		"order_type": "curb_painting",
		"sign_desc":  "Fresh paint, who knows",
	}, time.Now(), passengerProfile())

	require.NotNil(t, rule)
	assert.Equal(t, parking.RuleType("curb_painting"), rule.Type)
	assert.True(t, rule.Valid)
	assert.Equal(t, 0, rule.FineUSD)
}

func TestExtractTimeWindow(t *testing.T) {
	start, end := extractTimeWindow("NO STANDING 8:30 AM - 6 PM")
	assert.Equal(t, "08:30", start)
	assert.Equal(t, "18:00", end)

	start, end = extractTimeWindow("NO STANDING ANYTIME")
	assert.Empty(t, start)
	assert.Empty(t, end)

	start, end = extractTimeWindow("12PM-12AM")
	assert.Equal(t, "12:00", start)
	assert.Equal(t, "00:00", end)
}
