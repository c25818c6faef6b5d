// Package repository contains the upstream data-access layer: Socrata
// open-data clients behind the process-wide TTL cache. Upstream failures
// are reported to callers as errors but never crash a request; the
// service layer degrades instead.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Row is one raw upstream record. Socrata schemas vary per dataset, so
// rows stay loosely typed until a parser classifies them.
type Row = map[string]interface{}

type SocrataClient struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewSocrataClient(baseURL string, timeout time.Duration, log zerolog.Logger) *SocrataClient {
	return &SocrataClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchRows runs a SoQL query against a dataset. Non-list payloads are
// treated as empty. The client timeout bounds the call; callers do not
// need to layer their own cancellation.
func (c *SocrataClient) FetchRows(ctx context.Context, dataset, where string, limit int) ([]Row, error) {
	endpoint := fmt.Sprintf("%s/%s.json?$where=%s&$limit=%d", c.baseURL, dataset, url.QueryEscape(where), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", dataset, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query dataset %s: %w", dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query dataset %s: status %d", dataset, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s response: %w", dataset, err)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		c.log.Debug().Str("dataset", dataset).Msg("non-list payload from upstream, treating as empty")
		return nil, nil
	}
	return rows, nil
}

// Flat field names seen across Socrata tables, tried in order.
var (
	latKeys = []string{"latitude", "lat", "y", "y_coord", "ycoord"}
	lonKeys = []string{"longitude", "long", "lon", "x", "x_coord", "xcoord"}
	geoKeys = []string{"location", "point", "the_geom", "geom", "geometry"}
)

// ExtractLatLon pulls a coordinate pair out of a raw row, trying flat
// column names first and Socrata location objects second.
func ExtractLatLon(row Row) (lat, lon float64, ok bool) {
	for _, lk := range latKeys {
		latVal, hasLat := row[lk]
		if !hasLat {
			continue
		}
		for _, lok := range lonKeys {
			lonVal, hasLon := row[lok]
			if !hasLon {
				continue
			}
			lat, okLat := toFloat(latVal)
			lon, okLon := toFloat(lonVal)
			if okLat && okLon {
				return lat, lon, true
			}
		}
	}

	for _, gk := range geoKeys {
		obj, isMap := row[gk].(map[string]interface{})
		if !isMap {
			continue
		}
		if latVal, hasLat := obj["latitude"]; hasLat {
			if lonVal, hasLon := obj["longitude"]; hasLon {
				lat, okLat := toFloat(latVal)
				lon, okLon := toFloat(lonVal)
				if okLat && okLon {
					return lat, lon, true
				}
			}
		}
		if coords, isList := obj["coordinates"].([]interface{}); isList && len(coords) >= 2 {
			// GeoJSON order is lon, lat.
			lon, okLon := toFloat(coords[0])
			lat, okLat := toFloat(coords[1])
			if okLat && okLon {
				return lat, lon, true
			}
		}
	}

	return 0, 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// StringField reads a row column as a string, tolerating absent or
// non-string values.
func StringField(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
