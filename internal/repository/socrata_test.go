package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRowsParsesListPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "abcd-1234.json")
		assert.Contains(t, r.URL.RawQuery, "limit=50")
		w.Write([]byte(`[{"latitude": "40.75", "longitude": "-73.98"}]`))
	}))
	defer srv.Close()

	client := NewSocrataClient(srv.URL, time.Second, zerolog.Nop())
	rows, err := client.FetchRows(context.Background(), "abcd-1234", "1=1", 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "40.75", rows[0]["latitude"])
}

func TestFetchRowsTreatsNonListPayloadAsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": true}`))
	}))
	defer srv.Close()

	client := NewSocrataClient(srv.URL, time.Second, zerolog.Nop())
	rows, err := client.FetchRows(context.Background(), "abcd-1234", "1=1", 50)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchRowsErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewSocrataClient(srv.URL, time.Second, zerolog.Nop())
	_, err := client.FetchRows(context.Background(), "abcd-1234", "1=1", 50)
	assert.Error(t, err)
}

func TestExtractLatLon(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		wantLat float64
		wantLon float64
		wantOK  bool
	}{
		{
			name:    "flat string columns",
			row:     Row{"latitude": "40.75", "longitude": "-73.98"},
			wantLat: 40.75, wantLon: -73.98, wantOK: true,
		},
		{
			name:    "flat numeric columns",
			row:     Row{"lat": 40.75, "long": -73.98},
			wantLat: 40.75, wantLon: -73.98, wantOK: true,
		},
		{
			name: "nested location object",
			row: Row{"location": map[string]interface{}{
				"latitude": "40.75", "longitude": "-73.98",
			}},
			wantLat: 40.75, wantLon: -73.98, wantOK: true,
		},
		{
			name: "geojson coordinates are lon lat",
			row: Row{"the_geom": map[string]interface{}{
				"coordinates": []interface{}{-73.98, 40.75},
			}},
			wantLat: 40.75, wantLon: -73.98, wantOK: true,
		},
		{
			name:   "unparseable values",
			row:    Row{"latitude": "north-ish", "longitude": "west"},
			wantOK: false,
		},
		{
			name:   "no coordinates at all",
			row:    Row{"sign_desc": "No Parking"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := ExtractLatLon(tt.row)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantLat, lat, 1e-9)
				assert.InDelta(t, tt.wantLon, lon, 1e-9)
			}
		})
	}
}
