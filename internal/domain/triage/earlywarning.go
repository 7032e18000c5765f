package triage

// Early-warning risk tiers derived from fixed aggregate cut points.
const (
	TierNone   = "none"
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// EarlyWarning computes the NEWS2-style additive score over the raw
// vital-sign map. Thresholds are fixed and deliberately not age-banded;
// this scorer is tuned independently of the range catalog. Missing metrics
// contribute zero points. Pure and reentrant.
func EarlyWarning(values map[string]*float64) EarlyWarningScore {
	var score EarlyWarningScore
	maxSingle := 0

	add := func(points int, flag string) {
		if points == 0 {
			return
		}
		score.Score += points
		score.Flags = append(score.Flags, flag)
		if points > maxSingle {
			maxSingle = points
		}
	}

	if v, ok := observed(values, MetricRespiratoryRate); ok {
		switch {
		case v <= 8:
			add(3, "respiratory_rate<=8")
		case v <= 11:
			add(1, "respiratory_rate 9-11")
		case v <= 20:
			// normal
		case v <= 24:
			add(2, "respiratory_rate 21-24")
		default:
			add(3, "respiratory_rate>=25")
		}
	}

	if v, ok := observed(values, MetricOxygenSaturation); ok {
		switch {
		case v <= 91:
			add(3, "oxygen_saturation<=91")
		case v <= 93:
			add(2, "oxygen_saturation 92-93")
		case v <= 95:
			add(1, "oxygen_saturation 94-95")
		}
	}

	if v, ok := observed(values, MetricSystolicBP); ok {
		switch {
		case v <= 90:
			add(3, "systolic_bp<=90")
		case v <= 100:
			add(2, "systolic_bp 91-100")
		case v <= 110:
			add(1, "systolic_bp 101-110")
		case v >= 220:
			add(3, "systolic_bp>=220")
		}
	}

	if v, ok := observed(values, MetricHeartRate); ok {
		switch {
		case v <= 40:
			add(3, "heart_rate<=40")
		case v <= 50:
			add(1, "heart_rate 41-50")
		case v <= 90:
			// normal
		case v <= 110:
			add(1, "heart_rate 91-110")
		case v <= 130:
			add(2, "heart_rate 111-130")
		default:
			add(3, "heart_rate>=131")
		}
	}

	if v, ok := observed(values, MetricTemperature); ok {
		switch {
		case v <= 35.0:
			add(3, "temperature<=35.0")
		case v <= 36.0:
			add(1, "temperature 35.1-36.0")
		case v <= 38.0:
			// normal
		case v <= 39.0:
			add(1, "temperature 38.1-39.0")
		default:
			add(2, "temperature>=39.1")
		}
	}

	// Any consciousness deficit scores maximum points (ACVPU: not alert).
	if v, ok := observed(values, MetricGlasgowComaScore); ok && v < 15 {
		add(3, "consciousness_deficit")
	}

	switch {
	case score.Score >= 7:
		score.RiskTier = TierHigh
	case score.Score >= 5:
		score.RiskTier = TierMedium
	case maxSingle >= 3:
		// A single extreme parameter warrants an urgent review even when
		// the aggregate stays low.
		score.RiskTier = TierMedium
	case score.Score >= 1:
		score.RiskTier = TierLow
	default:
		score.RiskTier = TierNone
	}
	return score
}

func observed(values map[string]*float64, metric string) (float64, bool) {
	v, ok := values[metric]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}
