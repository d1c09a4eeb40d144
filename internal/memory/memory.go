// Package memory holds the accumulated user preferences for one
// conversation session and applies per-turn partial updates to them.
package memory

// ColorLogic controls how multiple requested colors combine.
type ColorLogic string

const (
	// ColorAnd requires every requested color to be present.
	ColorAnd ColorLogic = "AND"
	// ColorOr requires any one requested color to be present.
	ColorOr ColorLogic = "OR"
)

// Budget holds price constraints. Nil fields mean no constraint; the
// fields are independent and a caller may combine them.
type Budget struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Around *float64 `json:"around,omitempty"`
}

// IsZero reports whether no budget constraint is set.
func (b Budget) IsZero() bool {
	return b.Min == nil && b.Max == nil && b.Around == nil
}

// Preferences is everything the user has expressed so far. One instance
// per conversation; created empty at session start, never persisted.
type Preferences struct {
	Colors      []string   `json:"colors,omitempty"`
	ColorLogic  ColorLogic `json:"color_logic"`
	FlowerTypes []string   `json:"flower_types,omitempty"`
	Occasions   []string   `json:"occasions,omitempty"`
	Budget      Budget     `json:"budget"`
	EffortLevel string     `json:"effort_level,omitempty"`
	Season      string     `json:"season,omitempty"`
	Quantity    string     `json:"quantity,omitempty"`
	ProductType string     `json:"product_type,omitempty"`

	ExcludeColors       []string `json:"exclude_colors,omitempty"`
	ExcludeFlowerTypes  []string `json:"exclude_flower_types,omitempty"`
	ExcludeOccasions    []string `json:"exclude_occasions,omitempty"`
	ExcludeEffortLevels []string `json:"exclude_effort_levels,omitempty"`
	ExcludeProductTypes []string `json:"exclude_product_types,omitempty"`
}

// New returns an empty preference set with the default AND color logic.
func New() *Preferences {
	return &Preferences{ColorLogic: ColorAnd}
}

// Field names a single preference field for removal directives.
type Field string

const (
	FieldAll                 Field = "all"
	FieldColors              Field = "colors"
	FieldFlowerTypes         Field = "flower_types"
	FieldOccasions           Field = "occasions"
	FieldBudget              Field = "budget"
	FieldEffortLevel         Field = "effort_level"
	FieldSeason              Field = "season"
	FieldQuantity            Field = "quantity"
	FieldProductType         Field = "product_type"
	FieldExcludeColors       Field = "exclude_colors"
	FieldExcludeFlowerTypes  Field = "exclude_flower_types"
	FieldExcludeOccasions    Field = "exclude_occasions"
	FieldExcludeEffortLevels Field = "exclude_effort_levels"
	FieldExcludeProductTypes Field = "exclude_product_types"
)

// Update is one turn's delta: additive fields plus removal directives.
// Absent additive fields (empty slice, empty string, nil budget key)
// leave the corresponding preference untouched, so "not mentioned this
// turn" and "explicitly cleared this turn" stay distinct.
type Update struct {
	Colors      []string
	ColorLogic  ColorLogic
	FlowerTypes []string
	Occasions   []string
	Budget      Budget
	EffortLevel string
	Season      string
	Quantity    string
	ProductType string

	ExcludeColors       []string
	ExcludeFlowerTypes  []string
	ExcludeOccasions    []string
	ExcludeEffortLevels []string
	ExcludeProductTypes []string

	// Remove lists fields to reset before additive fields apply.
	// FieldAll resets everything and short-circuits the whole update.
	Remove []Field
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return len(u.Colors) == 0 && u.ColorLogic == "" &&
		len(u.FlowerTypes) == 0 && len(u.Occasions) == 0 &&
		u.Budget.IsZero() && u.EffortLevel == "" && u.Season == "" &&
		u.Quantity == "" && u.ProductType == "" &&
		len(u.ExcludeColors) == 0 && len(u.ExcludeFlowerTypes) == 0 &&
		len(u.ExcludeOccasions) == 0 && len(u.ExcludeEffortLevels) == 0 &&
		len(u.ExcludeProductTypes) == 0 && len(u.Remove) == 0
}

// Apply merges one turn's update into the preferences, in order:
// remove-all short-circuits, field removals run next, then additive
// non-empty fields replace the current values wholesale. The budget is
// the one exception and merges key-by-key.
func (p *Preferences) Apply(u Update) {
	for _, f := range u.Remove {
		if f == FieldAll {
			*p = *New()
			return
		}
	}
	for _, f := range u.Remove {
		p.clear(f)
	}

	if len(u.Colors) > 0 {
		p.Colors = append([]string(nil), u.Colors...)
	}
	if u.ColorLogic == ColorAnd || u.ColorLogic == ColorOr {
		p.ColorLogic = u.ColorLogic
	}
	if len(u.FlowerTypes) > 0 {
		p.FlowerTypes = append([]string(nil), u.FlowerTypes...)
	}
	if len(u.Occasions) > 0 {
		p.Occasions = append([]string(nil), u.Occasions...)
	}
	if u.Budget.Min != nil {
		p.Budget.Min = u.Budget.Min
	}
	if u.Budget.Max != nil {
		p.Budget.Max = u.Budget.Max
	}
	if u.Budget.Around != nil {
		p.Budget.Around = u.Budget.Around
	}
	if u.EffortLevel != "" {
		p.EffortLevel = u.EffortLevel
	}
	if u.Season != "" {
		p.Season = u.Season
	}
	if u.Quantity != "" {
		p.Quantity = u.Quantity
	}
	if u.ProductType != "" {
		p.ProductType = u.ProductType
	}

	if len(u.ExcludeColors) > 0 {
		p.ExcludeColors = append([]string(nil), u.ExcludeColors...)
	}
	if len(u.ExcludeFlowerTypes) > 0 {
		p.ExcludeFlowerTypes = append([]string(nil), u.ExcludeFlowerTypes...)
	}
	if len(u.ExcludeOccasions) > 0 {
		p.ExcludeOccasions = append([]string(nil), u.ExcludeOccasions...)
	}
	if len(u.ExcludeEffortLevels) > 0 {
		p.ExcludeEffortLevels = append([]string(nil), u.ExcludeEffortLevels...)
	}
	if len(u.ExcludeProductTypes) > 0 {
		p.ExcludeProductTypes = append([]string(nil), u.ExcludeProductTypes...)
	}
}

func (p *Preferences) clear(f Field) {
	switch f {
	case FieldColors:
		p.Colors = nil
	case FieldFlowerTypes:
		p.FlowerTypes = nil
	case FieldOccasions:
		p.Occasions = nil
	case FieldBudget:
		p.Budget = Budget{}
	case FieldEffortLevel:
		p.EffortLevel = ""
	case FieldSeason:
		p.Season = ""
	case FieldQuantity:
		p.Quantity = ""
	case FieldProductType:
		p.ProductType = ""
	case FieldExcludeColors:
		p.ExcludeColors = nil
	case FieldExcludeFlowerTypes:
		p.ExcludeFlowerTypes = nil
	case FieldExcludeOccasions:
		p.ExcludeOccasions = nil
	case FieldExcludeEffortLevels:
		p.ExcludeEffortLevels = nil
	case FieldExcludeProductTypes:
		p.ExcludeProductTypes = nil
	}
	// Unrecognized fields are ignored: the extractor output is loosely
	// typed and tolerated rather than validated.
}

// Snapshot returns a deep copy safe for display and compilation.
func (p *Preferences) Snapshot() Preferences {
	out := *p
	out.Colors = append([]string(nil), p.Colors...)
	out.FlowerTypes = append([]string(nil), p.FlowerTypes...)
	out.Occasions = append([]string(nil), p.Occasions...)
	out.ExcludeColors = append([]string(nil), p.ExcludeColors...)
	out.ExcludeFlowerTypes = append([]string(nil), p.ExcludeFlowerTypes...)
	out.ExcludeOccasions = append([]string(nil), p.ExcludeOccasions...)
	out.ExcludeEffortLevels = append([]string(nil), p.ExcludeEffortLevels...)
	out.ExcludeProductTypes = append([]string(nil), p.ExcludeProductTypes...)
	return out
}

// IsEmpty reports whether no constraint at all is active.
func (p Preferences) IsEmpty() bool {
	return len(p.Colors) == 0 && len(p.FlowerTypes) == 0 &&
		len(p.Occasions) == 0 && p.Budget.IsZero() &&
		p.EffortLevel == "" && p.Season == "" && p.Quantity == "" &&
		p.ProductType == "" &&
		len(p.ExcludeColors) == 0 && len(p.ExcludeFlowerTypes) == 0 &&
		len(p.ExcludeOccasions) == 0 && len(p.ExcludeEffortLevels) == 0 &&
		len(p.ExcludeProductTypes) == 0
}
