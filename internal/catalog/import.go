package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/petalrow/bloom/internal/model"
	"github.com/petalrow/bloom/internal/season"
)

// csvColumnAliases maps CSV headers to canonical field names. The
// cleaned export uses a few legacy column names that are kept as
// aliases here.
var csvColumnAliases = map[string]string{
	"description_clean":        "description",
	"product_type_all_flowers": "product_type",
	"recipe_metafield":         "recipe",
}

// ImportCSV loads a cleaned product export into the catalog. Rows
// without a product name are skipped. Returns the number of variants
// imported.
func (s *Store) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := csvColumnAliases[name]; ok {
			name = canonical
		}
		idx[name] = i
	}
	if _, ok := idx["product_name"]; !ok {
		return 0, fmt.Errorf("csv has no product_name column")
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	imported := 0
	skipped := 0
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read line %d: %w", line, err)
		}

		name := field(rec, "product_name")
		if name == "" {
			skipped++
			continue
		}

		p := model.Product{
			UniqueID:        field(rec, "unique_id"),
			ProductName:     name,
			VariantName:     field(rec, "variant_name"),
			Description:     field(rec, "description"),
			Price:           parsePrice(field(rec, "variant_price")),
			ColorsRaw:       field(rec, "colors_raw"),
			HasRed:          parseBool(field(rec, "has_red")),
			HasPink:         parseBool(field(rec, "has_pink")),
			HasWhite:        parseBool(field(rec, "has_white")),
			HasYellow:       parseBool(field(rec, "has_yellow")),
			HasOrange:       parseBool(field(rec, "has_orange")),
			HasPurple:       parseBool(field(rec, "has_purple")),
			HasBlue:         parseBool(field(rec, "has_blue")),
			HasGreen:        parseBool(field(rec, "has_green")),
			NonColorOptions: field(rec, "non_color_options"),
			Occasion:        field(rec, "holiday_occasion"),
			EffortLevel:     field(rec, "diy_level"),
			GroupCategory:   field(rec, "group_category"),
			ProductType:     field(rec, "product_type"),
			Recipe:          field(rec, "recipe"),
			YearRound:       parseBool(field(rec, "is_year_round")),
		}

		rangePrefixes := [3]string{"season_", "season_range_2_", "season_range_3_"}
		for i, prefix := range rangePrefixes {
			p.Ranges[i] = season.Range{
				StartMonth: parseInt(field(rec, prefix+"start_month")),
				StartDay:   parseInt(field(rec, prefix+"start_day")),
				EndMonth:   parseInt(field(rec, prefix+"end_month")),
				EndDay:     parseInt(field(rec, prefix+"end_day")),
			}
		}

		if err := s.Insert(ctx, &p); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	if skipped > 0 {
		s.log.Info("skipped unnamed rows during import", "count", skipped)
	}
	return imported, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "t", "true", "1", "yes", "y":
		return true
	}
	return false
}

func parsePrice(s string) *float64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	// Numeric columns sometimes arrive as floats ("3.0").
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
