package triage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ajabadia/TRYaG-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type rangeConfigRepoPG struct{ pool *pgxpool.Pool }

func NewRangeConfigRepoPG(pool *pgxpool.Pool) RangeConfigRepository {
	return &rangeConfigRepoPG{pool: pool}
}

func (r *rangeConfigRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const configCols = `id, metric, min_age, max_age, val_min, val_max,
	normal_min, normal_max, default_value, created_at, updated_at`

func (r *rangeConfigRepoPG) scanConfig(row pgx.Row) (*AgeBandConfig, error) {
	var c AgeBandConfig
	err := row.Scan(&c.ID, &c.Metric, &c.MinAge, &c.MaxAge, &c.ValMin, &c.ValMax,
		&c.NormalMin, &c.NormalMax, &c.DefaultValue, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *rangeConfigRepoPG) Create(ctx context.Context, c *AgeBandConfig) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO triage_range_config (id, metric, min_age, max_age, val_min, val_max,
			normal_min, normal_max, default_value)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.Metric, c.MinAge, c.MaxAge, c.ValMin, c.ValMax,
		c.NormalMin, c.NormalMax, c.DefaultValue)
	if err != nil {
		return err
	}
	for i := range c.Ranges {
		c.Ranges[i].ID = uuid.New()
		c.Ranges[i].ConfigID = c.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO triage_severity_range (id, config_id, min_val, max_val, color, priority, label)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			c.Ranges[i].ID, c.ID, c.Ranges[i].MinVal, c.Ranges[i].MaxVal,
			c.Ranges[i].Color, c.Ranges[i].Priority, c.Ranges[i].Label)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *rangeConfigRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AgeBandConfig, error) {
	c, err := r.scanConfig(r.conn(ctx).QueryRow(ctx,
		`SELECT `+configCols+` FROM triage_range_config WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	c.Ranges, err = r.rangesFor(ctx, c.ID)
	return c, err
}

func (r *rangeConfigRepoPG) rangesFor(ctx context.Context, configID uuid.UUID) ([]SeverityRange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, config_id, min_val, max_val, color, priority, label
		FROM triage_severity_range WHERE config_id = $1 ORDER BY min_val`, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ranges []SeverityRange
	for rows.Next() {
		var sr SeverityRange
		if err := rows.Scan(&sr.ID, &sr.ConfigID, &sr.MinVal, &sr.MaxVal,
			&sr.Color, &sr.Priority, &sr.Label); err != nil {
			return nil, err
		}
		ranges = append(ranges, sr)
	}
	return ranges, rows.Err()
}

func (r *rangeConfigRepoPG) listWhere(ctx context.Context, where string, args ...interface{}) ([]*AgeBandConfig, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+configCols+` FROM triage_range_config `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AgeBandConfig
	for rows.Next() {
		c, err := r.scanConfig(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range items {
		if c.Ranges, err = r.rangesFor(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *rangeConfigRepoPG) ListByMetric(ctx context.Context, metric string) ([]*AgeBandConfig, error) {
	return r.listWhere(ctx, `WHERE metric = $1 ORDER BY min_age`, metric)
}

func (r *rangeConfigRepoPG) ListAll(ctx context.Context) ([]*AgeBandConfig, error) {
	return r.listWhere(ctx, `ORDER BY metric, min_age`)
}

func (r *rangeConfigRepoPG) Update(ctx context.Context, c *AgeBandConfig) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE triage_range_config SET min_age=$2, max_age=$3, val_min=$4, val_max=$5,
			normal_min=$6, normal_max=$7, default_value=$8, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.MinAge, c.MaxAge, c.ValMin, c.ValMax,
		c.NormalMin, c.NormalMax, c.DefaultValue)
	if err != nil {
		return err
	}
	// Severity ranges are replaced wholesale; partial edits would leave the
	// band in an unvalidatable state.
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM triage_severity_range WHERE config_id = $1`, c.ID); err != nil {
		return err
	}
	for i := range c.Ranges {
		c.Ranges[i].ID = uuid.New()
		c.Ranges[i].ConfigID = c.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO triage_severity_range (id, config_id, min_val, max_val, color, priority, label)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			c.Ranges[i].ID, c.ID, c.Ranges[i].MinVal, c.Ranges[i].MaxVal,
			c.Ranges[i].Color, c.Ranges[i].Priority, c.Ranges[i].Label)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *rangeConfigRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM triage_severity_range WHERE config_id = $1`, id); err != nil {
		return err
	}
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM triage_range_config WHERE id = $1`, id)
	return err
}
