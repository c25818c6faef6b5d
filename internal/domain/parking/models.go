package parking

import (
	"time"
)

// VehicleType classifies the vehicle requesting a parking decision.
type VehicleType string

const (
	VehiclePassenger VehicleType = "passenger"
	VehicleTruck     VehicleType = "truck"
	VehicleTaxi      VehicleType = "taxi"
	VehicleFHV       VehicleType = "fhv"
)

// Agency is the requesting vehicle's agency affiliation, if any.
type Agency string

const (
	AgencyNone   Agency = "none"
	AgencyPolice Agency = "police"
	AgencyFire   Agency = "fire"
	AgencyCity   Agency = "city"
	AgencySchool Agency = "school"
)

func (v VehicleType) Known() bool {
	switch v {
	case VehiclePassenger, VehicleTruck, VehicleTaxi, VehicleFHV:
		return true
	}
	return false
}

func (a Agency) Known() bool {
	switch a {
	case AgencyNone, AgencyPolice, AgencyFire, AgencyCity, AgencySchool:
		return true
	}
	return false
}

// Location is the query point. Immutable for the life of a request.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	RadiusM int     `json:"radius_m"`
}

func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180 && l.RadiusM > 0
}

// VehicleProfile drives exemption logic in the parsers.
type VehicleProfile struct {
	VehicleType     VehicleType `json:"vehicle_type"`
	CommercialPlate bool        `json:"commercial_plate"`
	Agency          Agency      `json:"agency_affiliation"`
}

// RuleType discriminates Rule variants. The set is closed; adding a kind
// means adding a parser branch and a severity table entry.
type RuleType string

const (
	RuleStreetCleaning   RuleType = "street_cleaning"
	RuleNoStanding       RuleType = "no_standing"
	RuleHydrant          RuleType = "hydrant_proximity"
	RuleHydrantUncertain RuleType = "hydrant_uncertain"
	RuleLoadingOnly      RuleType = "loading_only"
	RuleTruckLoading     RuleType = "truck_loading_only"
	RuleTaxiOnly         RuleType = "taxi_only"
	RuleFHVOnly          RuleType = "fhv_only"
	RuleFireZone         RuleType = "fire_zone"
	RuleOfficialOnly     RuleType = "official_vehicle_only"
	RuleMetered          RuleType = "metered"
)

// Severity labels carried on rules for display; the decision engine uses
// its own weight table, not these labels.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rule is one evaluated curb regulation. Common fields are always set;
// the payload pointers are populated per type. Rules are built per
// request and never persisted.
type Rule struct {
	Type        RuleType `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Valid       bool     `json:"valid"`
	Reason      string   `json:"reason,omitempty"`
	Source      string   `json:"source"`

	// Recurring-window payload (street cleaning, no standing).
	NextOccurrence *time.Time `json:"next_occurrence,omitempty"`
	Window         string     `json:"window,omitempty"`
	TimeLeft       string     `json:"time_left,omitempty"`
	ActiveNow      *bool      `json:"active_now,omitempty"`

	// Proximity payload (hydrant).
	DistanceFt  *float64 `json:"distance_ft,omitempty"`
	ThresholdFt *float64 `json:"threshold_ft,omitempty"`
	Uncertain   bool     `json:"uncertain,omitempty"`

	// Meter payload.
	Rate    string `json:"rate,omitempty"`
	MaxTime string `json:"max_time,omitempty"`
	Hours   string `json:"hours,omitempty"`

	// Eligibility payload (official/fire zones).
	EligibleAgencies []Agency `json:"eligible_agencies,omitempty"`

	// Flat fine hint for pass-through rule kinds without a catalog band.
	FineUSD int `json:"fine,omitempty"`

	Estimate *ViolationEstimate `json:"violation_estimate,omitempty"`
}

// ViolationEstimate is a fine-band projection attached to an invalid rule.
type ViolationEstimate struct {
	ViolationCode string  `json:"violation_code"`
	MinFineUSD    int     `json:"min_fine_usd"`
	MaxFineUSD    int     `json:"max_fine_usd"`
	Jurisdiction  string  `json:"jurisdiction"`
	Confidence    float64 `json:"confidence"`
	Note          string  `json:"note,omitempty"`
}

// ViolationSummary aggregates all attached estimates for a response.
type ViolationSummary struct {
	EstimatedTotalMinUSD int    `json:"estimated_total_min_usd"`
	EstimatedTotalMaxUSD int    `json:"estimated_total_max_usd"`
	HighestSingleMaxUSD  int    `json:"highest_single_max_usd"`
	HighRiskViolations   int    `json:"high_risk_violations"`
	Currency             string `json:"currency"`
}

// DecisionStatus orders blocked > caution > safe.
type DecisionStatus string

const (
	StatusSafe    DecisionStatus = "safe"
	StatusCaution DecisionStatus = "caution"
	StatusBlocked DecisionStatus = "blocked"
)

// ParkingDecision is the single vehicle-facing verdict.
type ParkingDecision struct {
	Status            DecisionStatus `json:"status"`
	RiskScore         int            `json:"risk_score"`
	PrimaryReason     string         `json:"primary_reason"`
	RecommendedAction string         `json:"recommended_action"`
}

// Freshness reports how the hydrant answer was obtained.
type Freshness struct {
	Status    string    `json:"status"` // override | lookup_hit | lookup_miss | gps_fallback | none
	CacheHit  *bool     `json:"cache_hit,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// StatusRequest is the validated inbound query.
type StatusRequest struct {
	Location          Location
	Vehicle           VehicleProfile
	HydrantOverrideFt *float64
	GPSAccuracyM      float64
}

// StatusResponse is the composite result of one parking-status query.
type StatusResponse struct {
	Location   Location          `json:"location"`
	Vehicle    VehicleProfile    `json:"vehicle"`
	Rules      []Rule            `json:"rules"`
	Decision   ParkingDecision   `json:"parking_decision"`
	Summary    *ViolationSummary `json:"violation_summary,omitempty"`
	Freshness  Freshness         `json:"freshness"`
	Confidence float64           `json:"confidence"`
	Warning    string            `json:"warning,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
