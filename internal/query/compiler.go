package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/petalrow/bloom/internal/memory"
	"github.com/petalrow/bloom/internal/model"
	"github.com/petalrow/bloom/internal/season"
)

// familyPhrases is the ordered list of color-family phrases, so that
// compilation of the same snapshot always yields the same plan.
var familyPhrases = func() []string {
	phrases := make([]string, 0, len(model.ColorFamilies))
	for p := range model.ColorFamilies {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	return phrases
}()

// DefaultLimit is the maximum number of products returned per query.
const DefaultLimit = 6

// aroundMargin widens an "around" budget to a price band of ±20.
const aroundMargin = 20

// Plan is a compiled filter plus result-selection parameters, consumed
// by the catalog store.
type Plan struct {
	Where string
	Args  []any
	Limit int
}

// Compiler translates a preference snapshot into a Plan. It is pure:
// no I/O, no validation of contradictory include/exclude sets (both
// constraints apply and may legitimately match nothing).
type Compiler struct {
	Limit int
}

// NewCompiler returns a compiler with the default result limit.
func NewCompiler() *Compiler {
	return &Compiler{Limit: DefaultLimit}
}

// Compile builds the conjunctive filter over every active preference.
// An empty preference set compiles to the tautology filter.
func (c *Compiler) Compile(p memory.Preferences) Plan {
	var conds []Expr

	conds = append(conds, colorFilter(p.Colors, p.ColorLogic))
	conds = append(conds, excludeColorFilter(p.ExcludeColors))
	conds = append(conds, flowerTypeFilter(p.FlowerTypes))
	conds = append(conds, excludeFlowerTypeFilter(p.ExcludeFlowerTypes))
	conds = append(conds, occasionFilter(p.Occasions))
	conds = append(conds, excludeOccasionFilter(p.ExcludeOccasions))
	conds = append(conds, budgetFilter(p.Budget)...)
	conds = append(conds, effortFilter(p.EffortLevel))
	conds = append(conds, excludeEffortFilter(p.ExcludeEffortLevels))
	conds = append(conds, productTypeFilter(p.ProductType))
	conds = append(conds, excludeProductTypeFilter(p.ExcludeProductTypes))
	conds = append(conds, quantityFilter(p.Quantity))
	conds = append(conds, seasonFilter(p.Season))

	where, args := SQL(And(conds...))

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Plan{Where: where, Args: args, Limit: limit}
}

// colorTest resolves one requested color to a predicate: a known flag
// column, a family expansion ORed over its member flags, or a raw-text
// substring fallback.
func colorTest(color string) Expr {
	lower := strings.ToLower(color)
	for _, phrase := range familyPhrases {
		if strings.Contains(lower, phrase) {
			members := model.ColorFamilies[phrase]
			flags := make([]Expr, 0, len(members))
			for _, m := range members {
				flags = append(flags, Flag(model.ColorFlags[m], true))
			}
			return Or(flags...)
		}
	}
	if col, ok := model.ColorFlags[lower]; ok {
		return Flag(col, true)
	}
	return Contains("colors_raw", lower)
}

// negatedColorTest is the complement of colorTest for exclusions: all
// family member flags off, a single flag off, or substring absence.
func negatedColorTest(color string) Expr {
	lower := strings.ToLower(color)
	for _, phrase := range familyPhrases {
		if strings.Contains(lower, phrase) {
			members := model.ColorFamilies[phrase]
			flags := make([]Expr, 0, len(members))
			for _, m := range members {
				flags = append(flags, Flag(model.ColorFlags[m], false))
			}
			return And(flags...)
		}
	}
	if col, ok := model.ColorFlags[lower]; ok {
		return Flag(col, false)
	}
	return NotContains("colors_raw", lower)
}

func colorFilter(colors []string, logic memory.ColorLogic) Expr {
	if len(colors) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(colors))
	for _, c := range colors {
		tests = append(tests, colorTest(c))
	}
	var clause Expr
	if logic == memory.ColorOr {
		clause = Or(tests...)
	} else {
		clause = And(tests...)
	}
	// Matching asserts the product actually has color data.
	return And(clause, NotNull("colors_raw"))
}

// Exclusions always AND together: every excluded color must be avoided
// regardless of the inclusion logic mode.
func excludeColorFilter(colors []string) Expr {
	if len(colors) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(colors))
	for _, c := range colors {
		tests = append(tests, negatedColorTest(c))
	}
	return And(tests...)
}

// flowerTypeColumns are the descriptive fields a flower name may appear in.
var flowerTypeColumns = []string{"group_category", "recipe", "product_type", "product_name"}

func flowerTypeFilter(types []string) Expr {
	if len(types) == 0 {
		return nil
	}
	perType := make([]Expr, 0, len(types))
	for _, ft := range types {
		cols := make([]Expr, 0, len(flowerTypeColumns))
		for _, col := range flowerTypeColumns {
			cols = append(cols, Contains(col, ft))
		}
		perType = append(perType, Or(cols...))
	}
	return Or(perType...)
}

func excludeFlowerTypeFilter(types []string) Expr {
	if len(types) == 0 {
		return nil
	}
	perType := make([]Expr, 0, len(types))
	for _, ft := range types {
		cols := make([]Expr, 0, len(flowerTypeColumns))
		for _, col := range flowerTypeColumns {
			cols = append(cols, NotContains(col, ft))
		}
		perType = append(perType, And(cols...))
	}
	return And(perType...)
}

func occasionFilter(occasions []string) Expr {
	if len(occasions) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(occasions))
	for _, o := range occasions {
		tests = append(tests, Contains("holiday_occasion", o))
	}
	return And(Or(tests...), NotNull("holiday_occasion"))
}

func excludeOccasionFilter(occasions []string) Expr {
	if len(occasions) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(occasions))
	for _, o := range occasions {
		tests = append(tests, NotContains("holiday_occasion", o))
	}
	return And(tests...)
}

// budgetFilter applies each non-nil budget key independently; the
// caller is responsible for not setting contradictory combinations.
func budgetFilter(b memory.Budget) []Expr {
	var conds []Expr
	if b.Max != nil {
		conds = append(conds, And(Lt("variant_price", *b.Max), NotNull("variant_price")))
	}
	if b.Min != nil {
		conds = append(conds, And(Gte("variant_price", *b.Min), NotNull("variant_price")))
	}
	if b.Around != nil {
		conds = append(conds, And(
			Between("variant_price", *b.Around-aroundMargin, *b.Around+aroundMargin),
			NotNull("variant_price")))
	}
	return conds
}

func effortFilter(level string) Expr {
	if level == "" {
		return nil
	}
	return And(Eq("diy_level", level), NotNull("diy_level"))
}

func excludeEffortFilter(levels []string) Expr {
	if len(levels) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(levels))
	for _, l := range levels {
		tests = append(tests, Ne("diy_level", l))
	}
	return And(tests...)
}

func productTypeFilter(pt string) Expr {
	if pt == "" {
		return nil
	}
	return And(
		Or(Contains("product_name", pt), Contains("product_type", pt)),
		Or(NotNull("product_name"), NotNull("product_type")))
}

func excludeProductTypeFilter(types []string) Expr {
	if len(types) == 0 {
		return nil
	}
	tests := make([]Expr, 0, len(types))
	for _, pt := range types {
		tests = append(tests, And(
			NotContains("product_name", pt),
			NotContains("product_type", pt)))
	}
	return And(tests...)
}

var firstIntRe = regexp.MustCompile(`\d+`)

// quantityFilter matches the first integer token of the quantity text
// against the variant name. Quantity text without a number produces no
// constraint at all.
func quantityFilter(quantity string) Expr {
	if quantity == "" {
		return nil
	}
	num := firstIntRe.FindString(quantity)
	if num == "" {
		return nil
	}
	return And(Contains("variant_name", num), NotNull("variant_name"))
}

// seasonRangeColumns holds the three availability range column sets.
var seasonRangeColumns = [3][4]string{
	{"season_start_month", "season_start_day", "season_end_month", "season_end_day"},
	{"season_range_2_start_month", "season_range_2_start_day", "season_range_2_end_month", "season_range_2_end_day"},
	{"season_range_3_start_month", "season_range_3_start_day", "season_range_3_end_month", "season_range_3_end_day"},
}

// seasonFilter builds the availability clause: year-round, or the event
// date inside any stored range. Unset ranges hold NULLs, so their
// comparisons never match. Unresolvable season text omits the clause.
func seasonFilter(text string) Expr {
	if text == "" {
		return nil
	}
	d, ok := season.Resolve(text)
	if !ok {
		return nil
	}

	alts := []Expr{Flag("is_year_round", true)}
	for _, cols := range seasonRangeColumns {
		alts = append(alts, rangeContains(cols, d))
	}
	return Or(alts...)
}

// rangeContains is the inclusive same-year window test from the
// availability matcher, expressed over the range's four columns.
func rangeContains(cols [4]string, d season.Date) Expr {
	startMonth, startDay, endMonth, endDay := cols[0], cols[1], cols[2], cols[3]
	afterStart := Or(
		Lt(startMonth, d.Month),
		And(Eq(startMonth, d.Month), Lte(startDay, d.Day)))
	beforeEnd := Or(
		Gt(endMonth, d.Month),
		And(Eq(endMonth, d.Month), Gte(endDay, d.Day)))
	return And(afterStart, beforeEnd)
}
