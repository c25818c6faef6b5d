package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parkguard-service/internal/config"
	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// CurbSource supplies the raw regulation and meter records for a point.
// Satisfied by repository.CurbRepository.
type CurbSource interface {
	Regulations(ctx context.Context, lat, lon float64, radiusM int) []repository.Row
	Meters(ctx context.Context, lat, lon float64, radiusM int) []repository.Row
}

// ParkingService runs the decision pipeline for one request: parse
// candidate rules in upstream order, evaluate each for current validity,
// attach violation estimates, then fold everything into one decision.
type ParkingService struct {
	curb      CurbSource
	hydrants  HydrantLookup
	parser    *SignParser
	estimator *ViolationEstimator
	decider   *DecisionEngine
	log       zerolog.Logger

	minHydrantRadiusM     int
	hydrantThresholdFt    float64
	gpsUncertainAccuracyM float64

	now func() time.Time
}

func NewParkingService(
	curb CurbSource,
	hydrants HydrantLookup,
	estimator *ViolationEstimator,
	decider *DecisionEngine,
	cfg *config.Config,
	log zerolog.Logger,
) (*ParkingService, error) {
	loc, err := time.LoadLocation(cfg.Rules.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Rules.Timezone, err)
	}
	return &ParkingService{
		curb:                  curb,
		hydrants:              hydrants,
		parser:                NewSignParser(loc),
		estimator:             estimator,
		decider:               decider,
		log:                   log,
		minHydrantRadiusM:     cfg.Upstream.MinHydrantRadiusM,
		hydrantThresholdFt:    cfg.Rules.HydrantThresholdFt,
		gpsUncertainAccuracyM: cfg.Rules.GPSUncertainAccuracyM,
		now:                   time.Now,
	}, nil
}

// Status answers the parking-status query. Only malformed caller input
// is an error; upstream trouble degrades the answer instead.
func (s *ParkingService) Status(ctx context.Context, req parking.StatusRequest) (*parking.StatusResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	loc := req.Location

	var rules []parking.Rule
	skipped := 0
	for _, row := range s.curb.Regulations(ctx, loc.Lat, loc.Lon, loc.RadiusM) {
		rule := s.parser.Parse(row, now, req.Vehicle)
		if rule == nil {
			skipped++
			continue
		}
		rules = append(rules, *rule)
	}
	if skipped > 0 {
		s.log.Debug().Int("skipped", skipped).Msg("unclassifiable regulation records")
	}

	for _, row := range s.curb.Meters(ctx, loc.Lat, loc.Lon, loc.RadiusM) {
		rules = append(rules, ParseMeter(row))
	}

	hydrantRules, freshness := s.buildHydrantRules(ctx, req)
	rules = append(rules, hydrantRules...)

	s.estimator.Attach(rules)
	decision := s.decider.Decide(rules)
	summary := s.estimator.Summarize(rules)

	confidence, warning := s.deriveConfidence(rules, decision)

	s.log.Info().
		Float64("lat", loc.Lat).
		Float64("lon", loc.Lon).
		Str("vehicle_type", string(req.Vehicle.VehicleType)).
		Int("rules", len(rules)).
		Str("status", string(decision.Status)).
		Int("risk_score", decision.RiskScore).
		Msg("parking status evaluated")

	if rules == nil {
		rules = []parking.Rule{}
	}
	return &parking.StatusResponse{
		Location:   loc,
		Vehicle:    req.Vehicle,
		Rules:      rules,
		Decision:   decision,
		Summary:    summary,
		Freshness:  freshness,
		Confidence: confidence,
		Warning:    warning,
		Timestamp:  now.UTC(),
	}, nil
}

// deriveConfidence downgrades the response when any hydrant answer was
// uncertain and builds the warning line: the decision's primary reason
// when not safe, plus a GPS caveat when uncertainty is present.
func (s *ParkingService) deriveConfidence(rules []parking.Rule, decision parking.ParkingDecision) (float64, string) {
	confidence := 0.98
	if len(rules) == 0 {
		confidence = 0.5
	}

	uncertain := false
	for _, rule := range rules {
		if rule.Uncertain {
			uncertain = true
			break
		}
	}
	if uncertain {
		confidence -= 0.2
	}

	warning := ""
	if decision.Status != parking.StatusSafe {
		warning = decision.PrimaryReason
	}
	if uncertain {
		caveat := "GPS accuracy may affect hydrant detection. Verify clearance manually."
		if warning == "" {
			warning = caveat
		} else {
			warning = warning + " " + caveat
		}
	}

	return confidence, warning
}

func validateRequest(req parking.StatusRequest) error {
	loc := req.Location
	switch {
	case loc.Lat < -90 || loc.Lat > 90:
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrInvalidInput)
	case loc.Lon < -180 || loc.Lon > 180:
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrInvalidInput)
	case loc.RadiusM <= 0:
		return fmt.Errorf("%w: radius must be positive", ErrInvalidInput)
	}
	if !req.Vehicle.VehicleType.Known() {
		return fmt.Errorf("%w: unknown vehicle_type %q", ErrInvalidInput, req.Vehicle.VehicleType)
	}
	if !req.Vehicle.Agency.Known() {
		return fmt.Errorf("%w: unknown agency_affiliation %q", ErrInvalidInput, req.Vehicle.Agency)
	}
	if req.HydrantOverrideFt != nil && *req.HydrantOverrideFt < 0 {
		return fmt.Errorf("%w: hydrant_distance_ft must be non-negative", ErrInvalidInput)
	}
	return nil
}
