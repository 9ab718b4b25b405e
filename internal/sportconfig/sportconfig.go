// Package sportconfig is the read-only registry of per-sport edge
// thresholds and compression factors consumed by the edge evaluator.
// Grounded on original_source/backend/core/sport_configs.py.
package sportconfig

// Sport identifies one of the supported leagues.
type Sport string

const (
	MLB   Sport = "MLB"
	NBA   Sport = "NBA"
	NCAAB Sport = "NCAAB"
	NCAAF Sport = "NCAAF"
	NFL   Sport = "NFL"
	NHL   Sport = "NHL"
)

// MarketThresholds carries the edge/lean cutoffs for one market type.
type MarketThresholds struct {
	EligibilityMin float64
	EdgeThreshold  float64
	LeanMin        float64
	LeanMax        float64
}

// MoneylineThresholds carries moneyline-specific cutoffs, which use a
// slightly different shape than spread/total (no lean max, an optional
// minimum win-probability edge).
type MoneylineThresholds struct {
	EdgeThreshold    float64
	LeanMin          float64
	MinWinProbEdge   float64
	HasMinWinProbReq bool
}

// Config is one sport's complete threshold record. It is immutable once
// constructed; Registry hands out copies, never pointers into the
// compiled-in table.
type Config struct {
	Sport              Sport
	CompressionFactor  float64
	Spread             MarketThresholds
	Total              MarketThresholds
	Moneyline          MoneylineThresholds
	MaxFavoriteSpread  float64
	MaxDogSpread       float64
	LargeSpreadCutoff  float64 // abs(spread) above this is "large"
	LargeSpreadEdgeReq float64 // required compressedEdge when large

	RequiresPitcherConfirmation bool
	RequiresQBConfirmation      bool
	RequiresGoalieConfirmation  bool
	WeatherSensitive            bool

	KeyNumbers []float64 // NFL only; proximity flags for grading context
}

var registry = map[Sport]Config{
	NFL: {
		Sport:              NFL,
		CompressionFactor:  0.80,
		Spread:             MarketThresholds{EdgeThreshold: 3.0, LeanMin: 1.5, LeanMax: 3.0},
		Total:              MarketThresholds{EdgeThreshold: 3.0, LeanMin: 1.5, LeanMax: 3.0},
		MaxFavoriteSpread:  13.0,
		MaxDogSpread:       13.0,
		LargeSpreadCutoff:  6.0,
		LargeSpreadEdgeReq: 4.0,
		RequiresQBConfirmation: true,
		WeatherSensitive:       true,
		KeyNumbers:             []float64{3, 7, 10},
	},
	NBA: {
		Sport:             NBA,
		CompressionFactor: 0.85,
		Spread:            MarketThresholds{EdgeThreshold: 2.5, LeanMin: 1.2, LeanMax: 2.5},
		Total:             MarketThresholds{EdgeThreshold: 2.5, LeanMin: 1.2, LeanMax: 2.5},
	},
	NCAAF: {
		Sport:              NCAAF,
		CompressionFactor:  0.75,
		Spread:             MarketThresholds{EdgeThreshold: 3.5, LeanMin: 2.0, LeanMax: 3.5},
		Total:              MarketThresholds{EdgeThreshold: 3.5, LeanMin: 2.0, LeanMax: 3.5},
		MaxFavoriteSpread:  17.0,
		MaxDogSpread:       17.0,
		LargeSpreadCutoff:  10.0,
		LargeSpreadEdgeReq: 4.5,
		RequiresQBConfirmation: true,
		WeatherSensitive:       true,
	},
	NCAAB: {
		Sport:             NCAAB,
		CompressionFactor: 0.82,
		Spread:            MarketThresholds{EdgeThreshold: 3.0, LeanMin: 1.5, LeanMax: 3.0},
		Total:             MarketThresholds{EdgeThreshold: 3.0, LeanMin: 1.5, LeanMax: 3.0},
	},
	MLB: {
		Sport:             MLB,
		CompressionFactor: 0.88,
		Moneyline:         MoneylineThresholds{EdgeThreshold: 2.0, LeanMin: 1.0},
		Total:             MarketThresholds{EdgeThreshold: 1.0, LeanMin: 0.5, LeanMax: 1.0},
		RequiresPitcherConfirmation: true,
	},
	NHL: {
		Sport:             NHL,
		CompressionFactor: 0.85,
		Spread:            MarketThresholds{EdgeThreshold: 2.0, LeanMin: 1.0, LeanMax: 2.0}, // puckline
		Moneyline:         MoneylineThresholds{EdgeThreshold: 2.0, LeanMin: 1.0},
		MaxFavoriteSpread: 1.5,
		MaxDogSpread:      1.5,
		RequiresGoalieConfirmation: true,
	},
}

// Get returns the config for sport and whether it is known. The returned
// value is a copy; mutating it has no effect on the registry.
func Get(sport Sport) (Config, bool) {
	cfg, ok := registry[sport]
	cfg.KeyNumbers = append([]float64(nil), cfg.KeyNumbers...)
	return cfg, ok
}

// All returns every registered sport's config, copied.
func All() map[Sport]Config {
	out := make(map[Sport]Config, len(registry))
	for k, v := range registry {
		v.KeyNumbers = append([]float64(nil), v.KeyNumbers...)
		out[k] = v
	}
	return out
}
