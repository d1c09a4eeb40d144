package catalog

import (
	"context"
	"database/sql"
	"os"
)

// Stats holds catalog statistics.
type Stats struct {
	DBPath           string   `json:"db_path"`
	DBSizeBytes      int64    `json:"db_size_bytes"`
	TotalVariants    int      `json:"total_variants"`
	DistinctProducts int      `json:"distinct_products"`
	YearRound        int      `json:"year_round"`
	Seasonal         int      `json:"seasonal"`
	Priced           int      `json:"priced"`
	MinPrice         *float64 `json:"min_price,omitempty"`
	MaxPrice         *float64 `json:"max_price,omitempty"`
	AvgPrice         *float64 `json:"avg_price,omitempty"`
}

// Stats returns catalog statistics.
func (s *Store) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&st.TotalVariants)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT product_name) FROM products`).Scan(&st.DistinctProducts)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE is_year_round = 1`).Scan(&st.YearRound)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE is_year_round = 0 AND season_start_month IS NOT NULL`).Scan(&st.Seasonal)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE variant_price IS NOT NULL`).Scan(&st.Priced)

	var min, max, avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(variant_price), MAX(variant_price), AVG(variant_price) FROM products`).
		Scan(&min, &max, &avg)
	if err != nil {
		return st, err
	}
	if min.Valid {
		st.MinPrice = &min.Float64
	}
	if max.Valid {
		st.MaxPrice = &max.Float64
	}
	if avg.Valid {
		st.AvgPrice = &avg.Float64
	}

	return st, nil
}
