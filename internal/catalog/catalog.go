// Package catalog holds the fine-band reference data used by the
// violation estimator. The catalog is loaded once at startup and is
// read-only afterwards, so it is shared across requests without locking.
package catalog

import (
	"fmt"

	"github.com/spf13/viper"

	"parkguard-service/internal/domain/parking"
)

// FineBand is a jurisdiction's configured penalty range for one rule kind.
type FineBand struct {
	ViolationCode string  `mapstructure:"violation_code"`
	MinUSD        int     `mapstructure:"min_usd"`
	MaxUSD        int     `mapstructure:"max_usd"`
	Confidence    float64 `mapstructure:"confidence"`
	Note          string  `mapstructure:"note"`
}

// FineCatalog maps rule kinds to fine bands.
type FineCatalog struct {
	Jurisdiction string
	Currency     string
	bands        map[parking.RuleType]FineBand
}

// Lookup returns the band for a rule kind, if the catalog carries one.
// A missing band is expected for advisory kinds and is not an error.
func (c *FineCatalog) Lookup(kind parking.RuleType) (FineBand, bool) {
	band, ok := c.bands[kind]
	return band, ok
}

func (c *FineCatalog) Len() int {
	return len(c.bands)
}

// Load builds the catalog from the built-in NYC schedule, optionally
// overridden by a YAML file (bands keyed by rule type).
func Load(path, jurisdiction, currency string) (*FineCatalog, error) {
	cat := &FineCatalog{
		Jurisdiction: jurisdiction,
		Currency:     currency,
		bands:        defaultBands(),
	}

	if path == "" {
		return cat, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read fine catalog %s: %w", path, err)
	}

	var fileBands map[string]FineBand
	if err := v.UnmarshalKey("bands", &fileBands); err != nil {
		return nil, fmt.Errorf("parse fine catalog %s: %w", path, err)
	}
	for kind, band := range fileBands {
		if band.MinUSD > band.MaxUSD {
			return nil, fmt.Errorf("fine catalog %s: band %s has min > max", path, kind)
		}
		cat.bands[parking.RuleType(kind)] = band
	}

	return cat, nil
}

// NYC schedule as posted; confidence reflects how uniformly the fine is
// applied across boroughs.
func defaultBands() map[parking.RuleType]FineBand {
	return map[parking.RuleType]FineBand{
		parking.RuleHydrant: {
			ViolationCode: "NYC-HYDRANT-15FT", MinUSD: 115, MaxUSD: 115, Confidence: 0.95,
			Note: "NYC hydrant clearance violation.",
		},
		parking.RuleNoStanding: {
			ViolationCode: "NYC-NO-STANDING", MinUSD: 95, MaxUSD: 115, Confidence: 0.8,
			Note: "No standing violation estimate by zone/time.",
		},
		// Pass-through "no parking" order types keep their raw kind.
		parking.RuleType("no parking"): {
			ViolationCode: "NYC-NO-PARKING", MinUSD: 65, MaxUSD: 115, Confidence: 0.8,
			Note: "No parking violation estimate by zone/time.",
		},
		parking.RuleStreetCleaning: {
			ViolationCode: "NYC-ASP", MinUSD: 65, MaxUSD: 65, Confidence: 0.9,
			Note: "Alternate-side parking estimate.",
		},
		parking.RuleTruckLoading: {
			ViolationCode: "NYC-TRUCK-LOADING", MinUSD: 95, MaxUSD: 115, Confidence: 0.75,
			Note: "Truck/loading-only curb misuse estimate.",
		},
		parking.RuleLoadingOnly: {
			ViolationCode: "NYC-LOADING-ONLY", MinUSD: 95, MaxUSD: 115, Confidence: 0.75,
			Note: "Loading-only curb misuse estimate.",
		},
		parking.RuleTaxiOnly: {
			ViolationCode: "NYC-TAXI-ONLY", MinUSD: 95, MaxUSD: 115, Confidence: 0.7,
			Note: "Taxi stand curb misuse estimate.",
		},
		parking.RuleFHVOnly: {
			ViolationCode: "NYC-FHV-ONLY", MinUSD: 95, MaxUSD: 115, Confidence: 0.7,
			Note: "FHV/TLC curb misuse estimate.",
		},
		parking.RuleFireZone: {
			ViolationCode: "NYC-FIRE-ZONE", MinUSD: 115, MaxUSD: 150, Confidence: 0.7,
			Note: "Emergency/fire access obstruction estimate.",
		},
		parking.RuleOfficialOnly: {
			ViolationCode: "NYC-OFFICIAL-ONLY", MinUSD: 95, MaxUSD: 150, Confidence: 0.65,
			Note: "Official vehicle-only zone misuse estimate.",
		},
	}
}
