package triage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	configs    RangeConfigRepository
	catalog    *Catalog
	classifier *Classifier
}

func NewService(configs RangeConfigRepository) *Service {
	catalog := NewCatalog(configs)
	return &Service{
		configs:    configs,
		catalog:    catalog,
		classifier: NewClassifier(catalog),
	}
}

// Catalog exposes the loaded catalog for collaborators that resolve bands
// directly.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// LoadCatalog refreshes the in-memory catalog from storage.
func (s *Service) LoadCatalog(ctx context.Context) error {
	return s.catalog.Load(ctx)
}

// VitalSigns is the raw observation set for one patient at one instant.
type VitalSigns struct {
	Age             int                 `json:"age"`
	Values          map[string]*float64 `json:"values"`
	PupilReactivity string              `json:"pupil_reactivity,omitempty"`
}

// Classify produces the full per-metric classification with worst-case
// aggregate for one observation set.
func (s *Service) Classify(vs VitalSigns) (*ClassificationResult, error) {
	if vs.Age < 0 {
		return nil, fmt.Errorf("age must be non-negative")
	}
	result := s.classifier.Classify(vs.Age, vs.Values)
	if vs.PupilReactivity != "" {
		result.Merge(EvaluatePupilReactivity(vs.PupilReactivity))
	}
	return result, nil
}

// EarlyWarning computes the fixed-threshold additive score.
func (s *Service) EarlyWarning(vs VitalSigns) EarlyWarningScore {
	return EarlyWarning(vs.Values)
}

// RiskScore computes the secondary risk score and its tier.
func (s *Service) RiskScore(vs VitalSigns) (int, string, error) {
	if vs.Age < 0 {
		return 0, "", fmt.Errorf("age must be non-negative")
	}
	score := RiskScore(vs.Age, vs.Values)
	return score, RiskTier(score), nil
}

// -- Range configuration management --

func (s *Service) CreateRangeConfig(ctx context.Context, c *AgeBandConfig) error {
	if c.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	if err := ValidateBand(c); err != nil {
		return fmt.Errorf("invalid band: %w", err)
	}
	if err := s.configs.Create(ctx, c); err != nil {
		return err
	}
	return s.catalog.Load(ctx)
}

func (s *Service) GetRangeConfig(ctx context.Context, id uuid.UUID) (*AgeBandConfig, error) {
	return s.configs.GetByID(ctx, id)
}

func (s *Service) ListRangeConfigs(ctx context.Context) ([]*AgeBandConfig, error) {
	return s.configs.ListAll(ctx)
}

func (s *Service) ListRangeConfigsByMetric(ctx context.Context, metric string) ([]*AgeBandConfig, error) {
	return s.configs.ListByMetric(ctx, metric)
}

func (s *Service) UpdateRangeConfig(ctx context.Context, c *AgeBandConfig) error {
	if err := ValidateBand(c); err != nil {
		return fmt.Errorf("invalid band: %w", err)
	}
	if err := s.configs.Update(ctx, c); err != nil {
		return err
	}
	return s.catalog.Load(ctx)
}

func (s *Service) DeleteRangeConfig(ctx context.Context, id uuid.UUID) error {
	if err := s.configs.Delete(ctx, id); err != nil {
		return err
	}
	return s.catalog.Load(ctx)
}
