package triage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRangeConfigRepo struct {
	configs map[uuid.UUID]*AgeBandConfig
}

func newMockRangeConfigRepo() *mockRangeConfigRepo {
	return &mockRangeConfigRepo{configs: make(map[uuid.UUID]*AgeBandConfig)}
}

func (m *mockRangeConfigRepo) Create(_ context.Context, c *AgeBandConfig) error {
	c.ID = uuid.New()
	m.configs[c.ID] = c
	return nil
}

func (m *mockRangeConfigRepo) GetByID(_ context.Context, id uuid.UUID) (*AgeBandConfig, error) {
	c, ok := m.configs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockRangeConfigRepo) ListByMetric(_ context.Context, metric string) ([]*AgeBandConfig, error) {
	var result []*AgeBandConfig
	for _, c := range m.configs {
		if c.Metric == metric {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockRangeConfigRepo) ListAll(_ context.Context) ([]*AgeBandConfig, error) {
	var result []*AgeBandConfig
	for _, c := range m.configs {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockRangeConfigRepo) Update(_ context.Context, c *AgeBandConfig) error {
	if _, ok := m.configs[c.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.configs[c.ID] = c
	return nil
}

func (m *mockRangeConfigRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.configs, id)
	return nil
}

// -- Tests --

func pediatricHeartRateConfig() *AgeBandConfig {
	return &AgeBandConfig{
		Metric: MetricHeartRate,
		MinAge: 0, MaxAge: 17,
		ValMin: 40, ValMax: 240,
		NormalMin: 80, NormalMax: 140,
		Ranges: []SeverityRange{
			{MinVal: 40, MaxVal: 79, Color: ColorOrange, Priority: PriorityUrgent, Label: "Bradicardia"},
			{MinVal: 80, MaxVal: 140, Color: ColorGreen, Priority: PriorityNormal, Label: "Normal"},
			{MinVal: 141, MaxVal: 240, Color: ColorRed, Priority: PriorityCritical, Label: "Taquicardia"},
		},
	}
}

func TestCatalog_LoadAndResolve(t *testing.T) {
	repo := newMockRangeConfigRepo()
	repo.Create(context.Background(), pediatricHeartRateConfig())
	repo.Create(context.Background(), adultHeartRateConfig())

	cat := NewCatalog(repo)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, ok := cat.GetConfig(MetricHeartRate, 40)
	if !ok {
		t.Fatal("expected a band for age 40")
	}
	if cfg.MinAge != 18 {
		t.Errorf("expected the adult band, got [%d-%d]", cfg.MinAge, cfg.MaxAge)
	}

	cfg, ok = cat.GetConfig(MetricHeartRate, 5)
	if !ok {
		t.Fatal("expected a band for age 5")
	}
	if cfg.MaxAge != 17 {
		t.Errorf("expected the pediatric band, got [%d-%d]", cfg.MinAge, cfg.MaxAge)
	}
}

func TestCatalog_UnknownMetric(t *testing.T) {
	cat := NewCatalog(newMockRangeConfigRepo())
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.GetConfig("capillary_refill", 40); ok {
		t.Error("expected no band for an unconfigured metric")
	}
}

func TestCatalog_NegativeAge(t *testing.T) {
	repo := newMockRangeConfigRepo()
	repo.Create(context.Background(), adultHeartRateConfig())
	cat := NewCatalog(repo)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cat.GetConfig(MetricHeartRate, -1); ok {
		t.Error("expected no band for a negative age")
	}
}

func TestCatalog_ConfigsForAge(t *testing.T) {
	repo := newMockRangeConfigRepo()
	repo.Create(context.Background(), adultHeartRateConfig())
	repo.Create(context.Background(), adultOxygenSaturationConfig())
	cat := NewCatalog(repo)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	configs := cat.ConfigsForAge(40)
	if len(configs) != 2 {
		t.Errorf("expected 2 resolved bands, got %d", len(configs))
	}
	if len(cat.ConfigsForAge(5)) != 0 {
		t.Error("expected no bands resolved for age 5")
	}
}

func TestCatalog_LoadRejectsInvalidBand(t *testing.T) {
	repo := newMockRangeConfigRepo()
	bad := adultHeartRateConfig()
	bad.Ranges[1].MinVal = 40 // overlaps the first range
	repo.Create(context.Background(), bad)

	cat := NewCatalog(repo)
	if err := cat.Load(context.Background()); err == nil {
		t.Error("expected load to fail on an overlapping band")
	}
}

func TestValidateBand_Valid(t *testing.T) {
	if err := ValidateBand(adultHeartRateConfig()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateBand_Overlap(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.Ranges[2].MaxVal = 110 // overlaps [101,120]
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected overlap error")
	}
}

func TestValidateBand_Gap(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.Ranges[3].MinVal = 105 // hole between 100 and 105
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected gap error")
	}
}

func TestValidateBand_IncompleteCoverage(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.Ranges = cfg.Ranges[:len(cfg.Ranges)-1] // stops at 140, val_max is 220
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected coverage error")
	}
}

func TestValidateBand_NoRanges(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.Ranges = nil
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected error for empty ranges")
	}
}

func TestValidateBand_InvertedAges(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.MinAge, cfg.MaxAge = cfg.MaxAge, cfg.MinAge
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected error for min_age > max_age")
	}
}

func TestValidateBand_PriorityOutOfBounds(t *testing.T) {
	cfg := adultHeartRateConfig()
	cfg.Ranges[0].Priority = 4
	if err := ValidateBand(cfg); err == nil {
		t.Error("expected error for priority outside [0,3]")
	}
}
