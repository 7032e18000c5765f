package triage

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

// Adult heart-rate band used across the classifier tests: absolute range
// [30,220], normal [60,100], severity ranges covering the whole band.
func adultHeartRateConfig() *AgeBandConfig {
	return &AgeBandConfig{
		Metric: MetricHeartRate,
		MinAge: 18, MaxAge: 120,
		ValMin: 30, ValMax: 220,
		NormalMin: 60, NormalMax: 100,
		Ranges: []SeverityRange{
			{MinVal: 30, MaxVal: 44, Color: ColorRed, Priority: PriorityCritical, Label: "Bradicardia Severa"},
			{MinVal: 45, MaxVal: 59, Color: ColorYellow, Priority: PriorityMinor, Label: "Bradicardia Leve"},
			{MinVal: 60, MaxVal: 100, Color: ColorGreen, Priority: PriorityNormal, Label: "Normal"},
			{MinVal: 101, MaxVal: 120, Color: ColorYellow, Priority: PriorityMinor, Label: "Taquicardia Leve"},
			{MinVal: 121, MaxVal: 140, Color: ColorOrange, Priority: PriorityUrgent, Label: "Taquicardia Moderada"},
			{MinVal: 141, MaxVal: 220, Color: ColorRed, Priority: PriorityCritical, Label: "Taquicardia Severa"},
		},
	}
}

func adultOxygenSaturationConfig() *AgeBandConfig {
	return &AgeBandConfig{
		Metric: MetricOxygenSaturation,
		MinAge: 18, MaxAge: 120,
		ValMin: 0, ValMax: 100,
		NormalMin: 95, NormalMax: 100,
		Ranges: []SeverityRange{
			{MinVal: 0, MaxVal: 85, Color: ColorRed, Priority: PriorityCritical, Label: "Desaturación Severa"},
			{MinVal: 86, MaxVal: 91, Color: ColorOrange, Priority: PriorityUrgent, Label: "Desaturación Moderada"},
			{MinVal: 92, MaxVal: 94, Color: ColorYellow, Priority: PriorityMinor, Label: "Desaturación Leve"},
			{MinVal: 95, MaxVal: 100, Color: ColorGreen, Priority: PriorityNormal, Label: "Normal"},
		},
	}
}

func TestEvaluateMetric_NotRecorded(t *testing.T) {
	res := EvaluateMetric(nil, adultHeartRateConfig())
	if res.Priority != PriorityNotRecorded {
		t.Errorf("expected priority %d, got %d", PriorityNotRecorded, res.Priority)
	}
	if res.Color != ColorGray {
		t.Errorf("expected color gray, got %s", res.Color)
	}
	if res.Label != "No registrado" {
		t.Errorf("expected label 'No registrado', got %q", res.Label)
	}
}

func TestEvaluateMetric_SevereTachycardia(t *testing.T) {
	res := EvaluateMetric(fp(150), adultHeartRateConfig())
	if res.Color != ColorRed {
		t.Errorf("expected color red, got %s", res.Color)
	}
	if res.Priority != PriorityCritical {
		t.Errorf("expected priority 3, got %d", res.Priority)
	}
	if res.Label != "Taquicardia Severa" {
		t.Errorf("expected label 'Taquicardia Severa', got %q", res.Label)
	}
}

func TestEvaluateMetric_Normal(t *testing.T) {
	res := EvaluateMetric(fp(72), adultHeartRateConfig())
	if res.Color != ColorGreen || res.Priority != PriorityNormal {
		t.Errorf("expected green/0, got %s/%d", res.Color, res.Priority)
	}
}

func TestEvaluateMetric_OutOfAbsoluteRange(t *testing.T) {
	for _, v := range []float64{25, 250} {
		res := EvaluateMetric(fp(v), adultHeartRateConfig())
		if res.Priority != PriorityCritical {
			t.Errorf("value %g: expected priority 3, got %d", v, res.Priority)
		}
		if res.Label != "Fuera de rango absoluto" {
			t.Errorf("value %g: expected out-of-range label, got %q", v, res.Label)
		}
	}
}

func TestEvaluateMetric_BoundaryInclusive(t *testing.T) {
	// The absolute bounds themselves are classifiable, not out-of-range.
	res := EvaluateMetric(fp(220), adultHeartRateConfig())
	if res.Label != "Taquicardia Severa" {
		t.Errorf("expected upper bound to classify as 'Taquicardia Severa', got %q", res.Label)
	}
	res = EvaluateMetric(fp(30), adultHeartRateConfig())
	if res.Label != "Bradicardia Severa" {
		t.Errorf("expected lower bound to classify as 'Bradicardia Severa', got %q", res.Label)
	}
}

func TestEvaluateMetric_OverlapHighestPriorityWins(t *testing.T) {
	cfg := adultHeartRateConfig()
	// Overlapping entry at lower priority: must not shadow the critical one.
	cfg.Ranges = append(cfg.Ranges, SeverityRange{
		MinVal: 140, MaxVal: 160, Color: ColorYellow, Priority: PriorityMinor, Label: "Solapada",
	})
	res := EvaluateMetric(fp(150), cfg)
	if res.Priority != PriorityCritical {
		t.Errorf("expected overlapping value to take priority 3, got %d", res.Priority)
	}
	if res.Label != "Taquicardia Severa" {
		t.Errorf("expected label 'Taquicardia Severa', got %q", res.Label)
	}
}

func TestEvaluateMetric_GapInsideNormal(t *testing.T) {
	cfg := adultHeartRateConfig()
	// Remove the explicit normal range; a value inside [NormalMin,NormalMax]
	// still classifies as normal via the fallback.
	cfg.Ranges = []SeverityRange{
		{MinVal: 30, MaxVal: 59, Color: ColorRed, Priority: PriorityCritical, Label: "Bradicardia"},
		{MinVal: 101, MaxVal: 220, Color: ColorRed, Priority: PriorityCritical, Label: "Taquicardia"},
	}
	res := EvaluateMetric(fp(80), cfg)
	if res.Priority != PriorityNormal {
		t.Errorf("expected gap inside normal window to be priority 0, got %d", res.Priority)
	}
}

func TestEvaluateMetric_GapOutsideNormal(t *testing.T) {
	cfg := adultHeartRateConfig()
	// Hole between 101 and 120 with no covering range and outside normal.
	cfg.Ranges = []SeverityRange{
		{MinVal: 30, MaxVal: 100, Color: ColorGreen, Priority: PriorityNormal, Label: "Normal"},
		{MinVal: 121, MaxVal: 220, Color: ColorRed, Priority: PriorityCritical, Label: "Taquicardia"},
	}
	res := EvaluateMetric(fp(110), cfg)
	if res.Priority != PriorityUrgent {
		t.Errorf("expected unclassified gap to be priority 2, got %d", res.Priority)
	}
	if res.Label != "Sin clasificar" {
		t.Errorf("expected label 'Sin clasificar', got %q", res.Label)
	}
}

func TestEvaluatePupilReactivity(t *testing.T) {
	if res := EvaluatePupilReactivity("brisk"); res.Priority != PriorityNormal {
		t.Errorf("brisk: expected priority 0, got %d", res.Priority)
	}
	if res := EvaluatePupilReactivity("sluggish"); res.Priority != PriorityUrgent {
		t.Errorf("sluggish: expected priority 2, got %d", res.Priority)
	}
	if res := EvaluatePupilReactivity("fixed"); res.Priority != PriorityCritical {
		t.Errorf("fixed: expected priority 3, got %d", res.Priority)
	}
	if res := EvaluatePupilReactivity(""); res.Priority != PriorityNotRecorded {
		t.Errorf("empty: expected not-recorded sentinel, got %d", res.Priority)
	}
	if res := EvaluatePupilReactivity("dilated"); res.Priority != PriorityUrgent {
		t.Errorf("unknown code: expected priority 2, got %d", res.Priority)
	}
}

func TestClassifyPatient_WorstCaseAggregation(t *testing.T) {
	configs := map[string]*AgeBandConfig{
		MetricHeartRate:        adultHeartRateConfig(),
		MetricOxygenSaturation: adultOxygenSaturationConfig(),
	}
	values := map[string]*float64{
		MetricHeartRate:        fp(150), // red / 3
		MetricOxygenSaturation: fp(98),  // green / 0
	}

	res := ClassifyPatient(values, configs)
	if res.FinalPriority != PriorityCritical {
		t.Errorf("expected final priority 3, got %d", res.FinalPriority)
	}
	if res.FinalColor != ColorRed {
		t.Errorf("expected final color red, got %s", res.FinalColor)
	}
	if res.Label != "Emergencia" {
		t.Errorf("expected label 'Emergencia', got %q", res.Label)
	}
	if res.WaitCeilingMins != 0 {
		t.Errorf("expected wait ceiling 0, got %d", res.WaitCeilingMins)
	}
	if len(res.Metrics) != 2 {
		t.Errorf("expected 2 per-metric results, got %d", len(res.Metrics))
	}
}

func TestClassifyPatient_AllNormal(t *testing.T) {
	configs := map[string]*AgeBandConfig{
		MetricHeartRate:        adultHeartRateConfig(),
		MetricOxygenSaturation: adultOxygenSaturationConfig(),
	}
	values := map[string]*float64{
		MetricHeartRate:        fp(72),
		MetricOxygenSaturation: fp(98),
	}

	res := ClassifyPatient(values, configs)
	if res.FinalPriority != PriorityNormal {
		t.Errorf("expected final priority 0, got %d", res.FinalPriority)
	}
	if res.Label != "Normal" {
		t.Errorf("expected label 'Normal', got %q", res.Label)
	}
	if res.WaitCeilingMins != 120 {
		t.Errorf("expected wait ceiling 120, got %d", res.WaitCeilingMins)
	}
}

func TestClassifyPatient_EmptyIsPending(t *testing.T) {
	res := ClassifyPatient(map[string]*float64{}, map[string]*AgeBandConfig{})
	if !res.Pending {
		t.Error("expected pending classification")
	}
	if res.Label != "Pendiente de valoración" {
		t.Errorf("expected pending label, got %q", res.Label)
	}
	if res.FinalColor != ColorGray {
		t.Errorf("expected gray, got %s", res.FinalColor)
	}
}

func TestClassifyPatient_NilValuesExcluded(t *testing.T) {
	configs := map[string]*AgeBandConfig{MetricHeartRate: adultHeartRateConfig()}
	values := map[string]*float64{
		MetricHeartRate:        nil,
		MetricOxygenSaturation: nil,
	}
	res := ClassifyPatient(values, configs)
	if !res.Pending {
		t.Error("expected pending when every value is nil")
	}
}

func TestClassifyPatient_Monotonicity(t *testing.T) {
	configs := map[string]*AgeBandConfig{
		MetricHeartRate:        adultHeartRateConfig(),
		MetricOxygenSaturation: adultOxygenSaturationConfig(),
	}

	base := ClassifyPatient(map[string]*float64{
		MetricOxygenSaturation: fp(88), // orange / 2
	}, configs)

	extended := ClassifyPatient(map[string]*float64{
		MetricOxygenSaturation: fp(88),
		MetricHeartRate:        fp(72), // green / 0
	}, configs)

	if extended.FinalPriority < base.FinalPriority {
		t.Errorf("adding a metric lowered the final priority: %d -> %d",
			base.FinalPriority, extended.FinalPriority)
	}
}

func TestMerge_RaisesPriority(t *testing.T) {
	configs := map[string]*AgeBandConfig{MetricHeartRate: adultHeartRateConfig()}
	res := ClassifyPatient(map[string]*float64{MetricHeartRate: fp(72)}, configs)

	res.Merge(EvaluatePupilReactivity("fixed"))
	if res.FinalPriority != PriorityCritical {
		t.Errorf("expected merged priority 3, got %d", res.FinalPriority)
	}
	if res.Label != "Emergencia" {
		t.Errorf("expected label 'Emergencia', got %q", res.Label)
	}
}

func TestMerge_NeverLowersPriority(t *testing.T) {
	configs := map[string]*AgeBandConfig{MetricHeartRate: adultHeartRateConfig()}
	res := ClassifyPatient(map[string]*float64{MetricHeartRate: fp(150)}, configs)

	res.Merge(EvaluatePupilReactivity("brisk"))
	if res.FinalPriority != PriorityCritical {
		t.Errorf("expected priority to stay 3, got %d", res.FinalPriority)
	}
}

func TestMerge_ResolvesPending(t *testing.T) {
	res := ClassifyPatient(map[string]*float64{}, map[string]*AgeBandConfig{})
	res.Merge(EvaluatePupilReactivity("sluggish"))
	if res.Pending {
		t.Error("expected pending to clear after merging an evaluated metric")
	}
	if res.FinalPriority != PriorityUrgent {
		t.Errorf("expected priority 2, got %d", res.FinalPriority)
	}
}

func TestMerge_NotRecordedIgnored(t *testing.T) {
	res := ClassifyPatient(map[string]*float64{}, map[string]*AgeBandConfig{})
	res.Merge(EvaluatePupilReactivity(""))
	if !res.Pending {
		t.Error("expected pending to survive a not-recorded merge")
	}
	if len(res.Metrics) != 0 {
		t.Errorf("expected no metrics recorded, got %d", len(res.Metrics))
	}
}
