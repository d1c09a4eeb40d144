package consult

import (
	"fmt"
	"strings"

	"github.com/petalrow/bloom/internal/model"
)

const noMatchesMessage = "I couldn't find matching products with those exact criteria. Try:\n" +
	"- removing some filters (like budget or season)\n" +
	"- using broader terms (e.g. \"flowers\" instead of specific types)\n" +
	"- checking that the date or season is valid"

var monthAbbr = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatAvailability renders a product's availability: "Year-round" or
// the set ranges joined like "Jan 15 - Mar 20 / Sep 10 - Nov 15".
func FormatAvailability(p *model.Product) string {
	if p.YearRound {
		return "Year-round"
	}
	var parts []string
	for _, r := range p.Ranges {
		if !r.Valid() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %02d - %s %02d",
			monthAbbr[r.StartMonth-1], r.StartDay, monthAbbr[r.EndMonth-1], r.EndDay))
	}
	return strings.Join(parts, " / ")
}

// Render formats a result window as the assistant's reply.
func Render(products []model.Product) string {
	if len(products) == 0 {
		return noMatchesMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are %d recommendations I have:\n\n", len(products))

	seasonal := 0
	for i := range products {
		p := &products[i]
		if !p.YearRound {
			seasonal++
		}

		name := p.ProductName
		if p.VariantName != "" && !strings.EqualFold(p.VariantName, name) {
			name = name + " - " + p.VariantName
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)

		if p.Price != nil {
			fmt.Fprintf(&b, "   - Price: $%.2f\n", *p.Price)
		}
		writeField(&b, "Colors", p.ColorsRaw)
		writeField(&b, "Options", p.NonColorOptions)
		writeField(&b, "Effort Level", p.EffortLevel)
		if pt := firstNonEmpty(p.ProductType, p.GroupCategory); pt != "" {
			writeField(&b, "Product Type", pt)
		}
		writeField(&b, "Recipe", p.Recipe)
		writeField(&b, "Availability", FormatAvailability(p))
		writeField(&b, "Occasions", p.Occasion)
		writeField(&b, "Description", p.Description)
		b.WriteString("\n")
	}

	if seasonal > 0 {
		fmt.Fprintf(&b, "Seasonality: %d seasonal, %d year-round products\n",
			seasonal, len(products)-seasonal)
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "   - %s: %s\n", label, value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
