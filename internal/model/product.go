// Package model defines the catalog product data types.
package model

import "github.com/petalrow/bloom/internal/season"

// Product represents one catalog variant row.
type Product struct {
	ID          string   `json:"id"`
	UniqueID    string   `json:"unique_id"`
	ProductName string   `json:"product_name"`
	VariantName string   `json:"variant_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`

	ColorsRaw       string `json:"colors_raw,omitempty"`
	HasRed          bool   `json:"has_red"`
	HasPink         bool   `json:"has_pink"`
	HasWhite        bool   `json:"has_white"`
	HasYellow       bool   `json:"has_yellow"`
	HasOrange       bool   `json:"has_orange"`
	HasPurple       bool   `json:"has_purple"`
	HasBlue         bool   `json:"has_blue"`
	HasGreen        bool   `json:"has_green"`
	NonColorOptions string `json:"non_color_options,omitempty"`

	Occasion      string `json:"occasion,omitempty"`
	EffortLevel   string `json:"effort_level,omitempty"`
	GroupCategory string `json:"group_category,omitempty"`
	ProductType   string `json:"product_type,omitempty"`
	Recipe        string `json:"recipe,omitempty"`

	YearRound bool            `json:"year_round"`
	Ranges    [3]season.Range `json:"ranges,omitempty"`
}

// Available reports whether the product can be delivered on the given date.
func (p *Product) Available(d season.Date) bool {
	return season.Available(p.YearRound, p.Ranges[:], d)
}

// ValidEffortLevels are the allowed effort level values.
var ValidEffortLevels = map[string]bool{
	"Ready To Go":      true,
	"DIY In A Kit":     true,
	"DIY From Scratch": true,
}

// ColorFlags maps a color name to the product flag for it.
// Colors outside this set fall back to a substring match on ColorsRaw.
var ColorFlags = map[string]string{
	"red":    "has_red",
	"pink":   "has_pink",
	"white":  "has_white",
	"yellow": "has_yellow",
	"orange": "has_orange",
	"purple": "has_purple",
	"blue":   "has_blue",
	"green":  "has_green",
}

// ColorFamilies expands a color-family phrase to its member colors.
var ColorFamilies = map[string][]string{
	"cool colors":    {"blue", "purple", "green"},
	"cool tones":     {"blue", "purple", "green"},
	"warm colors":    {"red", "orange", "yellow"},
	"warm tones":     {"red", "orange", "yellow"},
	"neutral colors": {"white", "pink"},
	"neutral tones":  {"white", "pink"},
}
