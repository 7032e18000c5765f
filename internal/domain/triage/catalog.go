package triage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Catalog resolves age-banded range configurations for vital-sign metrics.
// Bands are loaded once from the repository and validated; evaluation reads
// the in-memory snapshot. Reload to pick up configuration changes.
type Catalog struct {
	repo RangeConfigRepository

	mu    sync.RWMutex
	bands map[string][]*AgeBandConfig
}

func NewCatalog(repo RangeConfigRepository) *Catalog {
	return &Catalog{repo: repo, bands: make(map[string][]*AgeBandConfig)}
}

// Load reads every configured band and validates it. A band whose severity
// ranges overlap or leave gaps inside [ValMin,ValMax] is a configuration
// error: the reference data is wrong and must be fixed, not papered over at
// classification time.
func (cat *Catalog) Load(ctx context.Context) error {
	configs, err := cat.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load range configs: %w", err)
	}

	bands := make(map[string][]*AgeBandConfig)
	for _, c := range configs {
		if err := ValidateBand(c); err != nil {
			return fmt.Errorf("range config %s [%d-%d]: %w", c.Metric, c.MinAge, c.MaxAge, err)
		}
		bands[c.Metric] = append(bands[c.Metric], c)
	}
	for _, list := range bands {
		sort.Slice(list, func(i, j int) bool { return list[i].MinAge < list[j].MinAge })
	}

	cat.mu.Lock()
	cat.bands = bands
	cat.mu.Unlock()
	return nil
}

// GetConfig returns the band covering the given age for the metric, or
// (nil, false) when none is configured. A miss means "cannot classify",
// never an error.
func (cat *Catalog) GetConfig(metric string, age int) (*AgeBandConfig, bool) {
	if age < 0 {
		return nil, false
	}
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	for _, c := range cat.bands[metric] {
		if c.CoversAge(age) {
			return c, true
		}
	}
	return nil, false
}

// ConfigsForAge resolves every known metric for the given age. Metrics with
// no covering band are simply absent from the result.
func (cat *Catalog) ConfigsForAge(age int) map[string]*AgeBandConfig {
	configs := make(map[string]*AgeBandConfig)
	cat.mu.RLock()
	defer cat.mu.RUnlock()
	for metric, list := range cat.bands {
		for _, c := range list {
			if c.CoversAge(age) {
				configs[metric] = c
				break
			}
		}
	}
	return configs
}

// ValidateBand checks that a band's severity ranges are internally
// consistent: ordered, non-overlapping, and fully covering [ValMin,ValMax].
func ValidateBand(c *AgeBandConfig) error {
	if c.MinAge > c.MaxAge {
		return fmt.Errorf("min_age %d > max_age %d", c.MinAge, c.MaxAge)
	}
	if c.ValMin > c.ValMax {
		return fmt.Errorf("val_min %g > val_max %g", c.ValMin, c.ValMax)
	}
	if c.NormalMin > c.NormalMax {
		return fmt.Errorf("normal_min %g > normal_max %g", c.NormalMin, c.NormalMax)
	}
	if len(c.Ranges) == 0 {
		return fmt.Errorf("no severity ranges configured")
	}

	ranges := make([]SeverityRange, len(c.Ranges))
	copy(ranges, c.Ranges)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].MinVal < ranges[j].MinVal })

	for i, sr := range ranges {
		if sr.MinVal > sr.MaxVal {
			return fmt.Errorf("range %q: min_val %g > max_val %g", sr.Label, sr.MinVal, sr.MaxVal)
		}
		if sr.Priority < PriorityNormal || sr.Priority > PriorityCritical {
			return fmt.Errorf("range %q: priority %d outside [0,3]", sr.Label, sr.Priority)
		}
		if i > 0 {
			prev := ranges[i-1]
			if sr.MinVal <= prev.MaxVal {
				return fmt.Errorf("ranges %q and %q overlap", prev.Label, sr.Label)
			}
			if sr.MinVal > prev.MaxVal+rangeGapTolerance {
				return fmt.Errorf("gap between ranges %q and %q", prev.Label, sr.Label)
			}
		}
	}
	if ranges[0].MinVal > c.ValMin {
		return fmt.Errorf("ranges start at %g, val_min is %g", ranges[0].MinVal, c.ValMin)
	}
	if ranges[len(ranges)-1].MaxVal < c.ValMax {
		return fmt.Errorf("ranges end at %g, val_max is %g", ranges[len(ranges)-1].MaxVal, c.ValMax)
	}
	return nil
}

// Adjacent integer-step ranges like [0,59] [60,100] are contiguous; a gap
// wider than one unit is a genuine hole.
const rangeGapTolerance = 1.0
