// Package catalog provides the SQLite-backed product catalog and the
// execution side of compiled query plans.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/petalrow/bloom/internal/model"
	"github.com/petalrow/bloom/internal/query"
	"github.com/petalrow/bloom/internal/season"
)

// Store is a SQLite-backed product catalog.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
	log     *slog.Logger
}

// New opens or creates a catalog database at the given path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     slog.Default(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		unique_id     TEXT NOT NULL,
		product_name  TEXT NOT NULL,
		variant_name  TEXT,
		description   TEXT,
		variant_price REAL,
		colors_raw    TEXT,
		has_red       INTEGER NOT NULL DEFAULT 0,
		has_pink      INTEGER NOT NULL DEFAULT 0,
		has_white     INTEGER NOT NULL DEFAULT 0,
		has_yellow    INTEGER NOT NULL DEFAULT 0,
		has_orange    INTEGER NOT NULL DEFAULT 0,
		has_purple    INTEGER NOT NULL DEFAULT 0,
		has_blue      INTEGER NOT NULL DEFAULT 0,
		has_green     INTEGER NOT NULL DEFAULT 0,
		non_color_options TEXT,
		holiday_occasion  TEXT,
		diy_level     TEXT,
		group_category TEXT,
		product_type  TEXT,
		recipe        TEXT,
		season_start_month INTEGER,
		season_start_day   INTEGER,
		season_end_month   INTEGER,
		season_end_day     INTEGER,
		season_range_2_start_month INTEGER,
		season_range_2_start_day   INTEGER,
		season_range_2_end_month   INTEGER,
		season_range_2_end_day     INTEGER,
		season_range_3_start_month INTEGER,
		season_range_3_start_day   INTEGER,
		season_range_3_end_month   INTEGER,
		season_range_3_end_day     INTEGER,
		is_year_round INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_products_unique ON products(unique_id);
	CREATE INDEX IF NOT EXISTS idx_products_name ON products(product_name);
	CREATE INDEX IF NOT EXISTS idx_products_price ON products(variant_price);
	CREATE INDEX IF NOT EXISTS idx_products_occasion ON products(holiday_occasion);
	`
	_, err := s.db.Exec(schema)
	return err
}

// productColumns is the scan column list shared by every product query.
const productColumns = `id, unique_id, product_name, variant_name, description, variant_price,
	colors_raw, has_red, has_pink, has_white, has_yellow, has_orange, has_purple, has_blue, has_green,
	non_color_options, holiday_occasion, diy_level, group_category, product_type, recipe,
	season_start_month, season_start_day, season_end_month, season_end_day,
	season_range_2_start_month, season_range_2_start_day, season_range_2_end_month, season_range_2_end_day,
	season_range_3_start_month, season_range_3_start_day, season_range_3_end_month, season_range_3_end_day,
	is_year_round`

// Select executes a compiled plan: filter, keep one variant per distinct
// product name, rank by unique_id, then return one window of up to
// plan.Limit rows starting at a random rank offset. Ranking and counting
// use window functions so the whole filtered set is never shuffled.
// Zero matching rows is a valid outcome, not an error.
func (s *Store) Select(ctx context.Context, plan query.Plan) ([]model.Product, error) {
	countSQL := fmt.Sprintf(
		`SELECT COUNT(*) FROM (SELECT product_name FROM products WHERE %s GROUP BY product_name)`,
		plan.Where)

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, plan.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	// Random offset in [0, max(0, total-limit)]; degenerates to 0 when
	// the whole result set fits in one window.
	offset := 0
	if total > plan.Limit {
		offset = s.entropy.Intn(total - plan.Limit + 1)
	}

	sel := fmt.Sprintf(`
		WITH variants AS (
			SELECT %s,
			       ROW_NUMBER() OVER (PARTITION BY product_name ORDER BY unique_id) AS vn
			FROM products
			WHERE %s
		),
		ranked AS (
			SELECT *, ROW_NUMBER() OVER (ORDER BY unique_id) AS rn
			FROM variants
			WHERE vn = 1
		)
		SELECT %s FROM ranked
		WHERE rn > ? AND rn <= ?
		ORDER BY rn`, productColumns, plan.Where, productColumns)

	args := append(append([]any{}, plan.Args...), offset, offset+plan.Limit)

	rows, err := s.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, fmt.Errorf("select window: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Insert stores one product variant. A missing ID gets a fresh ULID.
// Ranges that appear to span the year boundary are logged: the matcher
// assumes upstream data splits those into separate slots.
func (s *Store) Insert(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.UniqueID == "" {
		p.UniqueID = p.ID
	}

	for i, r := range p.Ranges {
		if r.Wraps() {
			s.log.Warn("season range spans year boundary",
				"product", p.ProductName, "range", i+1,
				"start_month", r.StartMonth, "end_month", r.EndMonth)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UniqueID, p.ProductName, nullStr(p.VariantName), nullStr(p.Description), p.Price,
		nullStr(p.ColorsRaw), b2i(p.HasRed), b2i(p.HasPink), b2i(p.HasWhite), b2i(p.HasYellow),
		b2i(p.HasOrange), b2i(p.HasPurple), b2i(p.HasBlue), b2i(p.HasGreen),
		nullStr(p.NonColorOptions), nullStr(p.Occasion), nullStr(p.EffortLevel),
		nullStr(p.GroupCategory), nullStr(p.ProductType), nullStr(p.Recipe),
		nullInt(p.Ranges[0].StartMonth), nullInt(p.Ranges[0].StartDay),
		nullInt(p.Ranges[0].EndMonth), nullInt(p.Ranges[0].EndDay),
		nullInt(p.Ranges[1].StartMonth), nullInt(p.Ranges[1].StartDay),
		nullInt(p.Ranges[1].EndMonth), nullInt(p.Ranges[1].EndDay),
		nullInt(p.Ranges[2].StartMonth), nullInt(p.Ranges[2].StartDay),
		nullInt(p.Ranges[2].EndMonth), nullInt(p.Ranges[2].EndDay),
		b2i(p.YearRound))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner) (model.Product, error) {
	var p model.Product
	var variant, desc, colors, nonColor, occasion, effort, group, ptype, recipe sql.NullString
	var price sql.NullFloat64
	var rangeCols [12]sql.NullInt64
	var yearRound int

	err := row.Scan(
		&p.ID, &p.UniqueID, &p.ProductName, &variant, &desc, &price,
		&colors, &p.HasRed, &p.HasPink, &p.HasWhite, &p.HasYellow,
		&p.HasOrange, &p.HasPurple, &p.HasBlue, &p.HasGreen,
		&nonColor, &occasion, &effort, &group, &ptype, &recipe,
		&rangeCols[0], &rangeCols[1], &rangeCols[2], &rangeCols[3],
		&rangeCols[4], &rangeCols[5], &rangeCols[6], &rangeCols[7],
		&rangeCols[8], &rangeCols[9], &rangeCols[10], &rangeCols[11],
		&yearRound,
	)
	if err != nil {
		return p, err
	}

	p.VariantName = variant.String
	p.Description = desc.String
	p.ColorsRaw = colors.String
	p.NonColorOptions = nonColor.String
	p.Occasion = occasion.String
	p.EffortLevel = effort.String
	p.GroupCategory = group.String
	p.ProductType = ptype.String
	p.Recipe = recipe.String
	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	for i := 0; i < 3; i++ {
		p.Ranges[i] = season.Range{
			StartMonth: int(rangeCols[i*4].Int64),
			StartDay:   int(rangeCols[i*4+1].Int64),
			EndMonth:   int(rangeCols[i*4+2].Int64),
			EndDay:     int(rangeCols[i*4+3].Int64),
		}
	}
	p.YearRound = yearRound != 0

	return p, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
