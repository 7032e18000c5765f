package triage

// Fixed colors used by severity results.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorGray   = "gray"
)

// acuityLevel is one row of the fixed priority → presentation table.
type acuityLevel struct {
	Label           string
	Color           string
	WaitCeilingMins int
}

// Aggregate classification per final priority. Wait ceilings follow the
// reference triage tables.
var acuityTable = map[int]acuityLevel{
	PriorityNormal:   {Label: "Normal", Color: ColorGreen, WaitCeilingMins: 120},
	PriorityMinor:    {Label: "Urgencia Menor", Color: ColorYellow, WaitCeilingMins: 60},
	PriorityUrgent:   {Label: "Urgencia", Color: ColorOrange, WaitCeilingMins: 30},
	PriorityCritical: {Label: "Emergencia", Color: ColorRed, WaitCeilingMins: 0},
}

// Classifier evaluates observed vital signs against age-banded range
// configurations. The catalog is injected; the classifier itself holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	catalog *Catalog
}

func NewClassifier(catalog *Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// EvaluateMetric classifies one observed value against its band.
//
// A nil value yields the not-recorded sentinel, which aggregation skips.
// Values outside the band's absolute bounds are a hard alert at maximum
// severity, not invalid input. When configured ranges overlap, the highest
// priority wins; when the value falls in a gap, it is surfaced as
// unclassified at priority 2 rather than silently treated as normal.
func EvaluateMetric(value *float64, cfg *AgeBandConfig) MetricResult {
	if value == nil {
		return MetricResult{
			Metric:   cfg.Metric,
			Color:    ColorGray,
			Priority: PriorityNotRecorded,
			Label:    "No registrado",
		}
	}
	v := *value
	res := MetricResult{Metric: cfg.Metric, Value: value}

	if v < cfg.ValMin || v > cfg.ValMax {
		res.Color = ColorRed
		res.Priority = PriorityCritical
		res.Label = "Fuera de rango absoluto"
		return res
	}

	matched := false
	for _, sr := range cfg.Ranges {
		if !sr.Contains(v) {
			continue
		}
		if !matched || sr.Priority > res.Priority {
			res.Color = sr.Color
			res.Priority = sr.Priority
			res.Label = sr.Label
		}
		matched = true
	}
	if matched {
		return res
	}

	if v >= cfg.NormalMin && v <= cfg.NormalMax {
		res.Color = ColorGreen
		res.Priority = PriorityNormal
		res.Label = "Normal"
		return res
	}

	res.Color = ColorOrange
	res.Priority = PriorityUrgent
	res.Label = "Sin clasificar"
	return res
}

// Pupil reactivity is an ordinal observation; it maps through a fixed table
// into the same result shape as the numeric metrics.
var pupilReactivityTable = map[string]MetricResult{
	"brisk":    {Metric: MetricPupilReactivity, Color: ColorGreen, Priority: PriorityNormal, Label: "Pupilas reactivas"},
	"sluggish": {Metric: MetricPupilReactivity, Color: ColorOrange, Priority: PriorityUrgent, Label: "Reacción pupilar lenta"},
	"fixed":    {Metric: MetricPupilReactivity, Color: ColorRed, Priority: PriorityCritical, Label: "Pupilas no reactivas"},
}

// EvaluatePupilReactivity classifies the pupil-reactivity enumeration. An
// empty observation is the not-recorded sentinel; an unknown code surfaces
// as unclassified rather than normal.
func EvaluatePupilReactivity(observed string) MetricResult {
	if observed == "" {
		return MetricResult{
			Metric:   MetricPupilReactivity,
			Color:    ColorGray,
			Priority: PriorityNotRecorded,
			Label:    "No registrado",
		}
	}
	if res, ok := pupilReactivityTable[observed]; ok {
		return res
	}
	return MetricResult{
		Metric:   MetricPupilReactivity,
		Color:    ColorOrange,
		Priority: PriorityUrgent,
		Label:    "Sin clasificar",
	}
}

// ClassifyPatient evaluates every metric that has both a non-nil value and a
// resolvable band, then aggregates worst-case: the final priority is the
// maximum over all evaluated metrics. Adding an evaluated metric can raise
// the final priority but never lower it. With nothing evaluable the result
// is the distinguished pending classification: a patient with no data is
// not clinically normal.
func ClassifyPatient(values map[string]*float64, configs map[string]*AgeBandConfig) *ClassificationResult {
	result := &ClassificationResult{FinalPriority: PriorityNotRecorded}

	for metric, value := range values {
		if value == nil {
			continue
		}
		cfg, ok := configs[metric]
		if !ok {
			continue
		}
		mr := EvaluateMetric(value, cfg)
		result.Metrics = append(result.Metrics, mr)
		if mr.Priority > result.FinalPriority {
			result.FinalPriority = mr.Priority
		}
	}

	if len(result.Metrics) == 0 {
		result.Pending = true
		result.FinalColor = ColorGray
		result.Label = "Pendiente de valoración"
		return result
	}

	level := acuityTable[result.FinalPriority]
	result.FinalColor = level.Color
	result.Label = level.Label
	result.WaitCeilingMins = level.WaitCeilingMins
	return result
}

// Merge folds one more evaluated metric (typically an ordinal observation)
// into the aggregate. Not-recorded sentinels are ignored. Merging preserves
// worst-case monotonicity: the final priority can only rise.
func (r *ClassificationResult) Merge(mr MetricResult) {
	if mr.Priority == PriorityNotRecorded {
		return
	}
	r.Metrics = append(r.Metrics, mr)
	if r.Pending || mr.Priority > r.FinalPriority {
		if mr.Priority > r.FinalPriority {
			r.FinalPriority = mr.Priority
		}
		r.Pending = false
		level := acuityTable[r.FinalPriority]
		r.FinalColor = level.Color
		r.Label = level.Label
		r.WaitCeilingMins = level.WaitCeilingMins
	}
}

// Classify resolves bands for the patient's age through the injected
// catalog and classifies the observed values.
func (c *Classifier) Classify(age int, values map[string]*float64) *ClassificationResult {
	configs := make(map[string]*AgeBandConfig, len(values))
	for metric := range values {
		if cfg, ok := c.catalog.GetConfig(metric, age); ok {
			configs[metric] = cfg
		}
	}
	return ClassifyPatient(values, configs)
}
