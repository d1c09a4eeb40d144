package consult

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/petalrow/bloom/internal/catalog"
	"github.com/petalrow/bloom/internal/memory"
	"github.com/petalrow/bloom/internal/model"
	"github.com/petalrow/bloom/internal/query"
	"github.com/petalrow/bloom/internal/season"
)

type stubExtractor struct {
	update memory.Update
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, text string) (memory.Update, error) {
	return s.update, s.err
}

type stubCatalog struct {
	products []model.Product
	err      error
	lastPlan query.Plan
}

func (s *stubCatalog) Select(ctx context.Context, plan query.Plan) ([]model.Product, error) {
	s.lastPlan = plan
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func price(v float64) *float64 { return &v }

func TestAskUpdatesMemoryAndReturnsMatches(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}}}
	cat := &stubCatalog{products: []model.Product{
		{ProductName: "Crimson Bunch", Price: price(45), YearRound: true},
	}}
	c := New(ex, cat)

	resp, err := c.Ask(context.Background(), "something red")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(resp.Products))
	}
	if !reflect.DeepEqual(resp.Filters.Colors, []string{"red"}) {
		t.Errorf("response filters = %v", resp.Filters.Colors)
	}
	if !reflect.DeepEqual(c.Filters().Colors, []string{"red"}) {
		t.Errorf("session filters = %v", c.Filters().Colors)
	}
	if !strings.Contains(resp.Message, "Crimson Bunch") {
		t.Errorf("message missing product name: %q", resp.Message)
	}
	if cat.lastPlan.Where == "" || cat.lastPlan.Limit != query.DefaultLimit {
		t.Errorf("plan = %+v", cat.lastPlan)
	}
}

func TestAskAccumulatesAcrossTurns(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}}}
	cat := &stubCatalog{}
	c := New(ex, cat)

	if _, err := c.Ask(context.Background(), "red flowers"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	ex.update = memory.Update{Occasions: []string{"wedding"}}
	if _, err := c.Ask(context.Background(), "for a wedding"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	got := c.Filters()
	if !reflect.DeepEqual(got.Colors, []string{"red"}) || !reflect.DeepEqual(got.Occasions, []string{"wedding"}) {
		t.Errorf("accumulated filters = %+v", got)
	}
}

func TestExtractionFailureLeavesMemoryIntact(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}}}
	cat := &stubCatalog{}
	c := New(ex, cat)

	if _, err := c.Ask(context.Background(), "red flowers"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	ex.err = errors.New("model unavailable")
	ex.update = memory.Update{Colors: []string{"blue"}}
	if _, err := c.Ask(context.Background(), "blue instead"); err == nil {
		t.Fatal("expected extraction error")
	}

	if !reflect.DeepEqual(c.Filters().Colors, []string{"red"}) {
		t.Errorf("filters after failed turn = %v", c.Filters().Colors)
	}
}

func TestCatalogFailureLeavesMemoryIntact(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}}}
	cat := &stubCatalog{}
	c := New(ex, cat)

	if _, err := c.Ask(context.Background(), "red flowers"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	ex.update = memory.Update{Colors: []string{"blue"}}
	cat.err = errors.New("database is locked")
	if _, err := c.Ask(context.Background(), "blue instead"); err == nil {
		t.Fatal("expected catalog error")
	}

	if !reflect.DeepEqual(c.Filters().Colors, []string{"red"}) {
		t.Errorf("filters after failed turn = %v", c.Filters().Colors)
	}
}

func TestZeroMatchesIsNotAnError(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"chartreuse"}}}
	c := New(ex, &stubCatalog{})

	resp, err := c.Ask(context.Background(), "chartreuse flowers")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(resp.Products) != 0 {
		t.Errorf("products = %d, want 0", len(resp.Products))
	}
	if !strings.Contains(resp.Message, "couldn't find") {
		t.Errorf("message = %q", resp.Message)
	}
	// The fruitless filter still sticks for the next turn.
	if !reflect.DeepEqual(c.Filters().Colors, []string{"chartreuse"}) {
		t.Errorf("filters = %v", c.Filters().Colors)
	}
}

func TestResetClearsFilters(t *testing.T) {
	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}, Season: "spring"}}
	c := New(ex, &stubCatalog{})

	if _, err := c.Ask(context.Background(), "red spring flowers"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	c.Reset()
	if !c.Filters().IsEmpty() {
		t.Errorf("filters after reset = %+v", c.Filters())
	}
}

func TestTurnAgainstSQLite(t *testing.T) {
	store, err := catalog.New(filepath.Join(t.TempDir(), "bloom.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rows := []model.Product{
		{ProductName: "Red Rose Bouquet", VariantName: "Dozen", Price: price(60), ColorsRaw: "Red", HasRed: true, YearRound: true},
		{ProductName: "White Lily Arrangement", VariantName: "Standard", Price: price(80), ColorsRaw: "White", HasWhite: true, YearRound: true},
		{ProductName: "Sunny Tulip Mix", VariantName: "Bunch", Price: price(40), ColorsRaw: "Yellow", HasYellow: true, YearRound: true},
	}
	for i := range rows {
		if err := store.Insert(ctx, &rows[i]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	ex := &stubExtractor{update: memory.Update{Colors: []string{"red"}}}
	c := New(ex, store)

	resp, err := c.Ask(ctx, "red flowers please")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(resp.Products) != 1 || resp.Products[0].ProductName != "Red Rose Bouquet" {
		t.Fatalf("products = %+v", resp.Products)
	}

	// Clearing the color opens the window back up to the full catalog.
	ex.update = memory.Update{Remove: []memory.Field{memory.FieldColors}}
	resp, err = c.Ask(ctx, "actually any color")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(resp.Products) != 3 {
		t.Errorf("products after removal = %d, want 3", len(resp.Products))
	}
}

func TestConfiguredLimitChangesWindow(t *testing.T) {
	store, err := catalog.New(filepath.Join(t.TempDir(), "bloom.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		p := model.Product{
			UniqueID:    fmt.Sprintf("u%02d", i),
			ProductName: fmt.Sprintf("Product %02d", i),
			YearRound:   true,
		}
		if err := store.Insert(ctx, &p); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	ex := &stubExtractor{}
	c := New(ex, store)
	c.SetLimit(3)

	resp, err := c.Ask(ctx, "show me anything")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(resp.Products) != 3 {
		t.Errorf("products = %d, want the configured window of 3", len(resp.Products))
	}

	// Non-positive values fall back to the compiler default.
	cat := &stubCatalog{}
	c = New(ex, cat)
	c.SetLimit(0)
	if _, err := c.Ask(ctx, "anything"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if cat.lastPlan.Limit != query.DefaultLimit {
		t.Errorf("plan limit = %d, want default %d", cat.lastPlan.Limit, query.DefaultLimit)
	}
}

func TestRenderDetails(t *testing.T) {
	products := []model.Product{
		{
			ProductName: "Peony Bundle",
			VariantName: "Large",
			Price:       price(95.5),
			ColorsRaw:   "Pink, White",
			EffortLevel: "Ready To Go",
			ProductType: "bouquet",
			Occasion:    "Wedding",
		},
	}
	products[0].Ranges[0] = season.Range{StartMonth: 5, StartDay: 1, EndMonth: 6, EndDay: 30}

	out := Render(products)
	for _, want := range []string{
		"1. Peony Bundle - Large",
		"$95.50",
		"Pink, White",
		"Ready To Go",
		"May 01 - Jun 30",
		"Seasonality: 1 seasonal, 0 year-round",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatAvailability(t *testing.T) {
	p := model.Product{YearRound: true}
	if got := FormatAvailability(&p); got != "Year-round" {
		t.Errorf("year-round = %q", got)
	}

	p = model.Product{}
	p.Ranges[0].StartMonth, p.Ranges[0].StartDay, p.Ranges[0].EndMonth, p.Ranges[0].EndDay = 3, 20, 6, 20
	p.Ranges[2].StartMonth, p.Ranges[2].StartDay, p.Ranges[2].EndMonth, p.Ranges[2].EndDay = 9, 22, 11, 30
	if got := FormatAvailability(&p); got != "Mar 20 - Jun 20 / Sep 22 - Nov 30" {
		t.Errorf("ranges = %q", got)
	}
}
