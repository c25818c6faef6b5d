package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parkguard-service/internal/cache"
	"parkguard-service/internal/geo"
)

// CurbRepository fetches the raw regulation and meter records the
// parsers turn into rules. Records come back in upstream order; the
// pipeline's tie-breaks depend on that order being preserved.
type CurbRepository struct {
	client             *SocrataClient
	cache              *cache.TTL[[]Row]
	regulationsDataset string
	metersDataset      string
	regulationTTL      time.Duration
	meterTTL           time.Duration
	log                zerolog.Logger
}

func NewCurbRepository(
	client *SocrataClient,
	c *cache.TTL[[]Row],
	regulationsDataset, metersDataset string,
	regulationTTL, meterTTL time.Duration,
	log zerolog.Logger,
) *CurbRepository {
	return &CurbRepository{
		client:             client,
		cache:              c,
		regulationsDataset: regulationsDataset,
		metersDataset:      metersDataset,
		regulationTTL:      regulationTTL,
		meterTTL:           meterTTL,
		log:                log,
	}
}

// Regulations returns posted-sign records within radiusM of a point.
// Upstream trouble yields an empty slice; a missing sign feed degrades
// data completeness, it does not fail the request.
func (r *CurbRepository) Regulations(ctx context.Context, lat, lon float64, radiusM int) []Row {
	key := geo.CellKey("regulations", lat, lon, radiusM)
	where := fmt.Sprintf("within_circle(the_geom, %f, %f, %d)", lat, lon, radiusM)

	rows, _, err := r.cache.GetOrFetch(key, r.regulationTTL, func() ([]Row, error) {
		fetched, err := r.client.FetchRows(ctx, r.regulationsDataset, where, 50)
		if err != nil {
			return nil, err
		}
		r.cache.MarkRefreshed("regulations")
		return fetched, nil
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("regulations dataset unavailable")
		return nil
	}
	return rows
}

// Meters returns parking-meter records near a point using a bounding
// box, since the meter table exposes flat lat/long columns only.
func (r *CurbRepository) Meters(ctx context.Context, lat, lon float64, radiusM int) []Row {
	key := geo.CellKey("meters", lat, lon, radiusM)
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(lat, lon, radiusM)
	where := fmt.Sprintf("lat between %f and %f and long between %f and %f", minLat, maxLat, minLon, maxLon)

	rows, _, err := r.cache.GetOrFetch(key, r.meterTTL, func() ([]Row, error) {
		fetched, err := r.client.FetchRows(ctx, r.metersDataset, where, 10)
		if err != nil {
			return nil, err
		}
		r.cache.MarkRefreshed("meters")
		return fetched, nil
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("meters dataset unavailable")
		return nil
	}
	return rows
}
