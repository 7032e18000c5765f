package triage

import (
	"time"

	"github.com/google/uuid"
)

// Known vital-sign metric keys. Range configurations are stored per metric
// and per age band; raw observations arrive as a map keyed by these codes.
const (
	MetricHeartRate        = "heart_rate"
	MetricRespiratoryRate  = "respiratory_rate"
	MetricSystolicBP       = "systolic_bp"
	MetricDiastolicBP      = "diastolic_bp"
	MetricTemperature      = "temperature"
	MetricOxygenSaturation = "oxygen_saturation"
	MetricGlasgowComaScore = "glasgow_coma_score"
	MetricPainScale        = "pain_scale"

	// Ordinal observation handled by a fixed lookup, not a range config.
	MetricPupilReactivity = "pupil_reactivity"
)

// Severity priorities. Higher is worse. PriorityNotRecorded marks a metric
// that was not observed and is excluded from aggregation.
const (
	PriorityNotRecorded = -1
	PriorityNormal      = 0
	PriorityMinor       = 1
	PriorityUrgent      = 2
	PriorityCritical    = 3
)

// SeverityRange maps a numeric interval to a color/priority/label within an
// age band. Bounds are inclusive.
type SeverityRange struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ConfigID uuid.UUID `db:"config_id" json:"config_id"`
	MinVal   float64   `db:"min_val" json:"min_val"`
	MaxVal   float64   `db:"max_val" json:"max_val"`
	Color    string    `db:"color" json:"color"`
	Priority int       `db:"priority" json:"priority"`
	Label    string    `db:"label" json:"label"`
}

// Contains reports whether v falls inside the range.
func (r SeverityRange) Contains(v float64) bool {
	return v >= r.MinVal && v <= r.MaxVal
}

// AgeBandConfig is the reference configuration for one vital-sign metric
// over one patient age interval. Read-only at evaluation time; rows are
// maintained by configuration management.
type AgeBandConfig struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Metric       string          `db:"metric" json:"metric"`
	MinAge       int             `db:"min_age" json:"min_age"`
	MaxAge       int             `db:"max_age" json:"max_age"`
	ValMin       float64         `db:"val_min" json:"val_min"`
	ValMax       float64         `db:"val_max" json:"val_max"`
	NormalMin    float64         `db:"normal_min" json:"normal_min"`
	NormalMax    float64         `db:"normal_max" json:"normal_max"`
	DefaultValue float64         `db:"default_value" json:"default_value"`
	Ranges       []SeverityRange `json:"ranges"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// CoversAge reports whether the band applies to a patient of the given age.
func (c *AgeBandConfig) CoversAge(age int) bool {
	return age >= c.MinAge && age <= c.MaxAge
}

// MetricResult is the classification of a single observed value.
type MetricResult struct {
	Metric   string   `json:"metric"`
	Value    *float64 `json:"value,omitempty"`
	Color    string   `json:"color"`
	Priority int      `json:"priority"`
	Label    string   `json:"label"`
}

// ClassificationResult aggregates per-metric classifications into a
// worst-case patient acuity. Built fresh on every evaluation.
type ClassificationResult struct {
	Metrics         []MetricResult `json:"metrics"`
	FinalColor      string         `json:"final_color"`
	FinalPriority   int            `json:"final_priority"`
	Label           string         `json:"label"`
	WaitCeilingMins int            `json:"suggested_wait_ceiling_mins"`
	Pending         bool           `json:"pending"`
}

// EarlyWarningScore is the NEWS2-style fixed-threshold additive score.
type EarlyWarningScore struct {
	Score    int      `json:"score"`
	RiskTier string   `json:"risk_tier"`
	Flags    []string `json:"contributing_flags"`
}
