// Package extract turns free-form user text into structured preference
// updates. The LLM lives behind the Extractor interface so the rest of
// the system can be driven by any implementation, including test fakes.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petalrow/bloom/internal/memory"
	"github.com/petalrow/bloom/internal/model"
)

// Extractor maps one user message to a partial preference update.
type Extractor interface {
	Extract(ctx context.Context, text string) (memory.Update, error)
}

// removePrefix marks wire keys that clear a field instead of setting it.
const removePrefix = "REMOVE_"

// DecodeUpdate parses the extractor wire format into a memory.Update.
// The format is a flat JSON object: preference fields plus REMOVE_<field>
// booleans (REMOVE_all clears everything). Unrecognized keys and
// mistyped values are silently ignored; only unparseable JSON is an
// error, since that means the whole turn is unusable.
func DecodeUpdate(data []byte) (memory.Update, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return memory.Update{}, fmt.Errorf("decode update: %w", err)
	}

	var u memory.Update
	for key, val := range raw {
		if strings.HasPrefix(key, removePrefix) {
			var on bool
			if json.Unmarshal(val, &on) == nil && on {
				u.Remove = append(u.Remove, memory.Field(strings.TrimPrefix(key, removePrefix)))
			}
			continue
		}

		switch key {
		case "colors":
			u.Colors = decodeStrings(val)
		case "color_logic":
			var s string
			if json.Unmarshal(val, &s) == nil {
				switch strings.ToUpper(strings.TrimSpace(s)) {
				case "AND":
					u.ColorLogic = memory.ColorAnd
				case "OR":
					u.ColorLogic = memory.ColorOr
				}
			}
		case "flower_types":
			u.FlowerTypes = decodeStrings(val)
		case "occasions":
			u.Occasions = decodeStrings(val)
		case "budget":
			var b struct {
				Min    *float64 `json:"min"`
				Max    *float64 `json:"max"`
				Around *float64 `json:"around"`
			}
			if json.Unmarshal(val, &b) == nil {
				u.Budget = memory.Budget{Min: b.Min, Max: b.Max, Around: b.Around}
			}
		case "effort_level":
			u.EffortLevel = canonicalEffort(decodeString(val))
		case "season":
			u.Season = decodeString(val)
		case "quantity":
			u.Quantity = decodeString(val)
		case "product_type":
			u.ProductType = decodeString(val)
		case "exclude_colors":
			u.ExcludeColors = decodeStrings(val)
		case "exclude_flower_types":
			u.ExcludeFlowerTypes = decodeStrings(val)
		case "exclude_occasions":
			u.ExcludeOccasions = decodeStrings(val)
		case "exclude_effort_levels":
			u.ExcludeEffortLevels = canonicalEfforts(decodeStrings(val))
		case "exclude_product_types":
			u.ExcludeProductTypes = decodeStrings(val)
		}
	}
	return u, nil
}

// decodeStrings accepts either a JSON array of strings or a bare string,
// dropping empty entries.
func decodeStrings(val json.RawMessage) []string {
	var list []string
	if json.Unmarshal(val, &list) != nil {
		var single string
		if json.Unmarshal(val, &single) != nil {
			return nil
		}
		list = []string{single}
	}
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// canonicalEffort maps a decoded effort level onto the catalog's known
// values, case-insensitively. Unknown levels are dropped like any other
// junk in the extractor output.
func canonicalEffort(s string) string {
	for level := range model.ValidEffortLevels {
		if strings.EqualFold(s, level) {
			return level
		}
	}
	return ""
}

func canonicalEfforts(levels []string) []string {
	var out []string
	for _, l := range levels {
		if c := canonicalEffort(l); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func decodeString(val json.RawMessage) string {
	var s string
	if json.Unmarshal(val, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
