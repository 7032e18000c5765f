package triage

// Risk-score tier cut points.
const (
	riskHighThreshold   = 15
	riskMediumThreshold = 5

	// Age at which the flat risk bonus applies.
	riskAgeThreshold = 65
)

// RiskScore computes the secondary additive triage-risk score. Unlike the
// early-warning scorer it folds in a consciousness deficit term and a flat
// age bonus instead of age-banded thresholds; the two scorers are tuned
// separately on purpose. Worsening any single input never decreases the
// score. Missing metrics contribute zero.
func RiskScore(age int, values map[string]*float64) int {
	score := 0

	if v, ok := observed(values, MetricSystolicBP); ok {
		switch {
		case v < 80:
			score += 4
		case v < 90:
			score += 3
		case v < 100:
			score += 2
		case v < 110:
			score++
		}
	}

	if v, ok := observed(values, MetricHeartRate); ok {
		switch {
		case v >= 150:
			score += 4
		case v >= 130:
			score += 3
		case v >= 110:
			score += 2
		case v >= 100:
			score++
		case v <= 40:
			score += 4
		case v <= 50:
			score += 2
		}
	}

	if v, ok := observed(values, MetricOxygenSaturation); ok {
		switch {
		case v < 85:
			score += 4
		case v < 90:
			score += 3
		case v < 93:
			score += 2
		case v < 95:
			score++
		}
	}

	if v, ok := observed(values, MetricTemperature); ok {
		switch {
		case v >= 40:
			score += 3
		case v >= 39:
			score += 2
		case v >= 38:
			score++
		case v <= 35:
			score += 3
		}
	}

	// Consciousness deficit: points equal to (15 − observed GCS), floored
	// at zero for out-of-scale readings.
	if v, ok := observed(values, MetricGlasgowComaScore); ok {
		if deficit := 15 - int(v); deficit > 0 {
			score += deficit
		}
	}

	if age >= riskAgeThreshold {
		score++
	}

	return score
}

// RiskTier maps a raw risk score onto the fixed low/medium/high bands.
// Tiering is the caller's concern; the score itself stays raw so reporting
// can apply its own bands.
func RiskTier(score int) string {
	switch {
	case score > riskHighThreshold:
		return TierHigh
	case score > riskMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
