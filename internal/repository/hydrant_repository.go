package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parkguard-service/internal/cache"
	"parkguard-service/internal/geo"
)

// HydrantResult is the outcome of a nearest-hydrant lookup. Found=false
// with no error means data sparsity, which is expected around here.
type HydrantResult struct {
	DistanceFt float64
	Dataset    string
	Found      bool
	CacheHit   bool
}

// HydrantRepository resolves the nearest hydrant to a point from ranked
// Socrata datasets, through the shared TTL cache.
type HydrantRepository struct {
	client   *SocrataClient
	cache    *cache.TTL[[]Row]
	datasets []string
	ttl      time.Duration
	log      zerolog.Logger
}

func NewHydrantRepository(client *SocrataClient, c *cache.TTL[[]Row], datasets []string, ttl time.Duration, log zerolog.Logger) *HydrantRepository {
	return &HydrantRepository{
		client:   client,
		cache:    c,
		datasets: datasets,
		ttl:      ttl,
		log:      log,
	}
}

// NearestDistanceFt finds the closest hydrant within radiusM of a point.
// Datasets are ranked: the first one that yields candidates wins, to
// limit latency. An error is returned only when every dataset fails at
// the transport level; callers degrade to an uncertain answer.
func (r *HydrantRepository) NearestDistanceFt(ctx context.Context, lat, lon float64, radiusM int) (HydrantResult, error) {
	var lastErr error
	failures := 0

	for _, dataset := range r.datasets {
		key := geo.CellKey("hydrants:"+dataset, lat, lon, radiusM)
		rows, hit, err := r.cache.GetOrFetch(key, r.ttl, func() ([]Row, error) {
			fetched, err := r.queryCandidates(ctx, dataset, lat, lon, radiusM)
			if err != nil {
				return nil, err
			}
			r.cache.MarkRefreshed("hydrants:" + dataset)
			return fetched, nil
		})
		if err != nil {
			failures++
			lastErr = err
			r.log.Warn().Err(err).Str("dataset", dataset).Msg("hydrant dataset unavailable")
			continue
		}

		best := -1.0
		for _, row := range rows {
			rowLat, rowLon, ok := ExtractLatLon(row)
			if !ok {
				continue
			}
			d := geo.DistanceMeters(lat, lon, rowLat, rowLon)
			if best < 0 || d < best {
				best = d
			}
		}

		if best >= 0 {
			return HydrantResult{
				DistanceFt: geo.MetersToFeet(best),
				Dataset:    dataset,
				Found:      true,
				CacheHit:   hit,
			}, nil
		}
	}

	if failures == len(r.datasets) && failures > 0 {
		return HydrantResult{}, fmt.Errorf("all hydrant datasets failed: %w", lastErr)
	}
	return HydrantResult{}, nil
}

// queryCandidates tries a geospatial within_circle query first, then
// falls back to bounding-box queries over the column-name spellings the
// datasets are known to use.
func (r *HydrantRepository) queryCandidates(ctx context.Context, dataset string, lat, lon float64, radiusM int) ([]Row, error) {
	geoWhere := fmt.Sprintf("within_circle(the_geom, %f, %f, %d)", lat, lon, radiusM)
	rows, err := r.client.FetchRows(ctx, dataset, geoWhere, 50)
	if err == nil && len(rows) > 0 {
		return rows, nil
	}
	firstErr := err

	minLat, maxLat, minLon, maxLon := geo.BoundingBox(lat, lon, radiusM)
	for _, latField := range []string{"latitude", "lat", "y"} {
		for _, lonField := range []string{"longitude", "long", "lon", "x"} {
			where := fmt.Sprintf("%s between %f and %f and %s between %f and %f",
				latField, minLat, maxLat, lonField, minLon, maxLon)
			rows, err := r.client.FetchRows(ctx, dataset, where, 200)
			if err != nil {
				continue
			}
			firstErr = nil
			if len(rows) > 0 {
				return rows, nil
			}
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return nil, nil
}
