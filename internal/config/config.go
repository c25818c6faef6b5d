package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type UpstreamConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	HydrantDatasets    []string      `mapstructure:"hydrant_datasets"`
	RegulationsDataset string        `mapstructure:"regulations_dataset"`
	MetersDataset      string        `mapstructure:"meters_dataset"`
	HydrantTTL         time.Duration `mapstructure:"hydrant_ttl"`
	RegulationTTL      time.Duration `mapstructure:"regulation_ttl"`
	MeterTTL           time.Duration `mapstructure:"meter_ttl"`
	MinHydrantRadiusM  int           `mapstructure:"min_hydrant_radius_m"`
}

type RulesConfig struct {
	Timezone           string  `mapstructure:"timezone"`
	HydrantThresholdFt float64 `mapstructure:"hydrant_threshold_ft"`
	// GPS accuracy at or above which a missing hydrant answer becomes an
	// advisory "check manually" rule instead of silence.
	GPSUncertainAccuracyM float64 `mapstructure:"gps_uncertain_accuracy_m"`
}

// DecisionConfig is the severity/weight table driving the decision
// engine. Rule kinds map to risk weights; membership in BlockingWeights
// is what classifies a kind as blocking. The defaults are fallback
// scores used only when a status wins without any table weight firing,
// never raising a triggered weight.
type DecisionConfig struct {
	BlockingWeights map[string]int `mapstructure:"blocking_weights"`
	AdvisoryWeights map[string]int `mapstructure:"advisory_weights"`
	BlockedDefault  int            `mapstructure:"blocked_default"`
	CautionDefault  int            `mapstructure:"caution_default"`
	SafeBaseline    int            `mapstructure:"safe_baseline"`
}

type CatalogConfig struct {
	Path            string `mapstructure:"path"`
	Jurisdiction    string `mapstructure:"jurisdiction"`
	Currency        string `mapstructure:"currency"`
	HighRiskFineUSD int    `mapstructure:"high_risk_fine_usd"`
}

type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Decision DecisionConfig `mapstructure:"decision"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// Load reads configuration from an optional parkguard.yaml plus
// PARKGUARD_* environment overrides, on top of built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("upstream.base_url", "https://data.cityofnewyork.us/resource")
	v.SetDefault("upstream.request_timeout", "4s")
	v.SetDefault("upstream.hydrant_datasets", []string{"5bgh-vtsn", "6pui-xhxz"})
	v.SetDefault("upstream.regulations_dataset", "nfid-uabd")
	v.SetDefault("upstream.meters_dataset", "693u-uax6")
	v.SetDefault("upstream.hydrant_ttl", "30m")
	v.SetDefault("upstream.regulation_ttl", "10m")
	v.SetDefault("upstream.meter_ttl", "10m")
	v.SetDefault("upstream.min_hydrant_radius_m", 75)

	v.SetDefault("rules.timezone", "America/New_York")
	v.SetDefault("rules.hydrant_threshold_ft", 15.0)
	v.SetDefault("rules.gps_uncertain_accuracy_m", 10.0)

	v.SetDefault("decision.blocking_weights", defaultBlockingWeights())
	v.SetDefault("decision.advisory_weights", defaultAdvisoryWeights())
	v.SetDefault("decision.blocked_default", 90)
	v.SetDefault("decision.caution_default", 50)
	v.SetDefault("decision.safe_baseline", 10)

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.jurisdiction", "NYC")
	v.SetDefault("catalog.currency", "USD")
	v.SetDefault("catalog.high_risk_fine_usd", 115)

	v.SetConfigName("parkguard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/parkguard")

	v.SetEnvPrefix("PARKGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Weights follow the posted NYC enforcement profile: hydrant violations
// carry the highest ticket certainty.
func defaultBlockingWeights() map[string]int {
	return map[string]int{
		"hydrant_proximity":     97,
		"street_cleaning":       95,
		"fire_zone":             94,
		"official_vehicle_only": 94,
		"taxi_only":             93,
		"fhv_only":              93,
		"loading_only":          92,
		"truck_loading_only":    92,
		"no_standing":           90,
	}
}

func defaultAdvisoryWeights() map[string]int {
	return map[string]int{
		"street_cleaning":   60,
		"no_standing":       60,
		"hydrant_uncertain": 55,
		"metered":           30,
	}
}

// DefaultDecision returns the built-in decision table, for tests and
// callers that do not go through Load.
func DefaultDecision() DecisionConfig {
	return DecisionConfig{
		BlockingWeights: defaultBlockingWeights(),
		AdvisoryWeights: defaultAdvisoryWeights(),
		BlockedDefault:  90,
		CautionDefault:  50,
		SafeBaseline:    10,
	}
}
