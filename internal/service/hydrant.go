package service

import (
	"context"
	"fmt"
	"time"

	"parkguard-service/internal/domain/parking"
	"parkguard-service/internal/geo"
	"parkguard-service/internal/repository"
)

// HydrantLookup is the upstream collaborator resolving nearest-hydrant
// distances. Satisfied by repository.HydrantRepository.
type HydrantLookup interface {
	NearestDistanceFt(ctx context.Context, lat, lon float64, radiusM int) (repository.HydrantResult, error)
}

// Freshness statuses for the hydrant answer.
const (
	freshnessNone        = "none"
	freshnessOverride    = "override"
	freshnessLookupHit   = "lookup_hit"
	freshnessLookupMiss  = "lookup_miss"
	freshnessGPSFallback = "gps_fallback"
)

// buildHydrantRules resolves the hydrant clearance question for a
// request: manual override first, ranked dataset lookup second, GPS
// uncertainty advisory last. Lookup failure is degraded, never raised.
func (s *ParkingService) buildHydrantRules(ctx context.Context, req parking.StatusRequest) ([]parking.Rule, parking.Freshness) {
	freshness := parking.Freshness{Status: freshnessNone, FetchedAt: time.Now().UTC()}

	var (
		distanceFt float64
		resolved   bool
		source     = "ParkGuard Hydrant Proximity"
	)

	if req.HydrantOverrideFt != nil {
		distanceFt = *req.HydrantOverrideFt
		resolved = true
		freshness.Status = freshnessOverride
	} else {
		radius := req.Location.RadiusM
		if radius < s.minHydrantRadiusM {
			radius = s.minHydrantRadiusM
		}
		result, err := s.hydrants.NearestDistanceFt(ctx, req.Location.Lat, req.Location.Lon, radius)
		if err != nil {
			s.log.Warn().Err(err).
				Float64("lat", req.Location.Lat).
				Float64("lon", req.Location.Lon).
				Msg("hydrant lookup failed, degrading to uncertain")
			freshness.Status = freshnessLookupMiss
		} else if result.Found {
			distanceFt = result.DistanceFt
			resolved = true
			source = fmt.Sprintf("NYC Open Data Hydrants (%s)", result.Dataset)
			freshness.Status = freshnessLookupHit
			freshness.CacheHit = &result.CacheHit
		} else {
			freshness.Status = freshnessLookupMiss
		}
	}

	if resolved {
		ev := geo.EvaluateClearance("hydrant", distanceFt, s.hydrantThresholdFt)
		severity := parking.SeverityLow
		if ev.Blocked {
			severity = parking.SeverityHigh
		}
		dist, threshold := ev.DistanceFt, ev.ThresholdFt
		return []parking.Rule{{
			Type:        parking.RuleHydrant,
			Description: "Fire hydrant clearance rule",
			Severity:    severity,
			Valid:       !ev.Blocked,
			Reason:      ev.Reason,
			Source:      source,
			DistanceFt:  &dist,
			ThresholdFt: &threshold,
		}}, freshness
	}

	if req.GPSAccuracyM >= s.gpsUncertainAccuracyM {
		freshness.Status = freshnessGPSFallback
		return []parking.Rule{{
			Type:        parking.RuleHydrantUncertain,
			Description: "Hydrant proximity uncertain due to GPS accuracy",
			Severity:    parking.SeverityMedium,
			Valid:       true,
			Reason:      fmt.Sprintf("Possible hydrant nearby (GPS accuracy +/-%.0fm). Check manually.", req.GPSAccuracyM),
			Source:      "ParkGuard GPS Fallback",
			Uncertain:   true,
		}}, freshness
	}

	return nil, freshness
}
