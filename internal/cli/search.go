package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petalrow/bloom/internal/consult"
	"github.com/petalrow/bloom/internal/memory"
	"github.com/petalrow/bloom/internal/query"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a one-shot catalog search",
		Long:  "Query the catalog directly from flags, without the conversational layer.",
		Args:  cobra.NoArgs,
		Run:   runSearch,
	}

	cmd.Flags().StringSlice("color", nil, "Color or color family (repeatable)")
	cmd.Flags().StringSlice("exclude-color", nil, "Color to exclude (repeatable)")
	cmd.Flags().Bool("any-color", false, "Match any listed color instead of all")
	cmd.Flags().StringSlice("flower", nil, "Flower type (repeatable)")
	cmd.Flags().StringSlice("exclude-flower", nil, "Flower type to exclude (repeatable)")
	cmd.Flags().StringSlice("occasion", nil, "Occasion (repeatable)")
	cmd.Flags().Float64("min", 0, "Minimum price")
	cmd.Flags().Float64("max", 0, "Maximum price")
	cmd.Flags().Float64("around", 0, "Approximate price")
	cmd.Flags().String("effort", "", "Effort level (Ready To Go, DIY In A Kit, DIY From Scratch)")
	cmd.Flags().String("product-type", "", "Product type keyword")
	cmd.Flags().String("quantity", "", "Quantity text, e.g. \"100 stems\"")
	cmd.Flags().String("season", "", "Season, month, or date, e.g. spring, june, \"May 12\"")
	cmd.Flags().IntP("limit", "l", 0, "Max products (default: configured result_limit)")
	cmd.Flags().Bool("json", false, "Print products as JSON")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	prefs := searchPrefs(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		exitErr("open catalog", err)
	}
	defer store.Close()

	// The flag wins over the configured result_limit when set.
	if !cmd.Flags().Changed("limit") {
		limit = cfg.ResultLimit
	}
	compiler := &query.Compiler{Limit: limit}
	products, err := store.Select(cmd.Context(), compiler.Compile(*prefs))
	if err != nil {
		exitErr("search", err)
	}

	if asJSON {
		b, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Println(consult.Render(products))
}

func searchPrefs(cmd *cobra.Command) *memory.Preferences {
	p := memory.New()

	p.Colors, _ = cmd.Flags().GetStringSlice("color")
	p.ExcludeColors, _ = cmd.Flags().GetStringSlice("exclude-color")
	if any, _ := cmd.Flags().GetBool("any-color"); any {
		p.ColorLogic = memory.ColorOr
	}
	p.FlowerTypes, _ = cmd.Flags().GetStringSlice("flower")
	p.ExcludeFlowerTypes, _ = cmd.Flags().GetStringSlice("exclude-flower")
	p.Occasions, _ = cmd.Flags().GetStringSlice("occasion")

	if v, _ := cmd.Flags().GetFloat64("min"); v > 0 {
		p.Budget.Min = &v
	}
	if v, _ := cmd.Flags().GetFloat64("max"); v > 0 {
		p.Budget.Max = &v
	}
	if v, _ := cmd.Flags().GetFloat64("around"); v > 0 {
		p.Budget.Around = &v
	}

	p.EffortLevel, _ = cmd.Flags().GetString("effort")
	p.ProductType, _ = cmd.Flags().GetString("product-type")
	p.Quantity, _ = cmd.Flags().GetString("quantity")
	p.Season, _ = cmd.Flags().GetString("season")

	return p
}
