package extract

import (
	"reflect"
	"sort"
	"testing"

	"github.com/petalrow/bloom/internal/memory"
)

func TestDecodeAdditiveFields(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{
		"colors": ["red", "white"],
		"color_logic": "or",
		"occasions": ["wedding"],
		"budget": {"max": 150},
		"season": "spring",
		"quantity": "100 stems",
		"effort_level": "Ready To Go"
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(u.Colors, []string{"red", "white"}) {
		t.Errorf("colors = %v", u.Colors)
	}
	if u.ColorLogic != memory.ColorOr {
		t.Errorf("color_logic = %q, want OR", u.ColorLogic)
	}
	if !reflect.DeepEqual(u.Occasions, []string{"wedding"}) {
		t.Errorf("occasions = %v", u.Occasions)
	}
	if u.Budget.Max == nil || *u.Budget.Max != 150 {
		t.Errorf("budget = %+v", u.Budget)
	}
	if u.Season != "spring" || u.Quantity != "100 stems" || u.EffortLevel != "Ready To Go" {
		t.Errorf("scalar fields = %q %q %q", u.Season, u.Quantity, u.EffortLevel)
	}
}

func TestDecodeRemoveDirectives(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"REMOVE_colors": true, "REMOVE_budget": true, "REMOVE_season": false}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := make([]string, 0, len(u.Remove))
	for _, f := range u.Remove {
		got = append(got, string(f))
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"budget", "colors"}) {
		t.Errorf("remove = %v", got)
	}
}

func TestDecodeRemoveAll(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"REMOVE_all": true, "colors": ["red"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	found := false
	for _, f := range u.Remove {
		if f == memory.FieldAll {
			found = true
		}
	}
	if !found {
		t.Error("REMOVE_all not decoded")
	}
	// Additive fields still decode; Apply decides precedence.
	if !reflect.DeepEqual(u.Colors, []string{"red"}) {
		t.Errorf("colors = %v", u.Colors)
	}
}

func TestDecodeToleratesJunk(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{
		"colors": ["red"],
		"no_such_field": 42,
		"REMOVE_nonsense": "yes",
		"budget": "not an object",
		"flower_types": [""],
		"season": null
	}`))
	if err != nil {
		t.Fatalf("junk keys must not fail decode: %v", err)
	}
	if !reflect.DeepEqual(u.Colors, []string{"red"}) {
		t.Errorf("colors = %v", u.Colors)
	}
	if !u.Budget.IsZero() {
		t.Errorf("mistyped budget should be ignored, got %+v", u.Budget)
	}
	if u.FlowerTypes != nil {
		t.Errorf("empty entries should collapse to nil, got %v", u.FlowerTypes)
	}
	if u.Season != "" {
		t.Errorf("null season should be ignored, got %q", u.Season)
	}
}

func TestDecodeEffortLevelCanonicalized(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"effort_level": "ready to go", "exclude_effort_levels": ["diy from scratch", "extreme"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.EffortLevel != "Ready To Go" {
		t.Errorf("effort_level = %q, want canonical casing", u.EffortLevel)
	}
	if !reflect.DeepEqual(u.ExcludeEffortLevels, []string{"DIY From Scratch"}) {
		t.Errorf("exclude_effort_levels = %v, want unknown levels dropped", u.ExcludeEffortLevels)
	}

	u, err = DecodeUpdate([]byte(`{"effort_level": "super hard"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.EffortLevel != "" {
		t.Errorf("unknown effort level must be dropped, got %q", u.EffortLevel)
	}
}

func TestDecodeBareStringAsList(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"flower_types": "rose"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(u.FlowerTypes, []string{"rose"}) {
		t.Errorf("flower_types = %v", u.FlowerTypes)
	}
}

func TestDecodeMalformedJSONFails(t *testing.T) {
	if _, err := DecodeUpdate([]byte(`{"colors": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDecodeEmptyObject(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !u.IsEmpty() {
		t.Errorf("expected empty update, got %+v", u)
	}
}

func TestStripFences(t *testing.T) {
	in := "```json\n{\"colors\": [\"red\"]}\n```"
	if got := stripFences(in); got != `{"colors": ["red"]}` {
		t.Errorf("stripFences = %q", got)
	}
	if got := stripFences(`{"a":1}`); got != `{"a":1}` {
		t.Errorf("unfenced input changed: %q", got)
	}
}
