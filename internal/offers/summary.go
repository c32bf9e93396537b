package offers

import (
	"fmt"
	"io"
	"ubereats-scraper/internal/components/assert"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary prints the first `limit` restaurants by name with the rating of
// their first offer.
func (r Result) Summary(w io.Writer, limit int) {
	assert.Positive("limit", limit)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Restaurant", "Rating", "Delivery Time", "Delivery Cost", "Offers"})

	names := r.Names()
	for i, name := range names {
		if i >= limit {
			break
		}
		first := r[name][0]
		t.AppendRow(table.Row{name, first.Rating, first.DeliveryTime, first.DeliveryCost, len(r[name])})
	}
	if len(names) > limit {
		t.AppendFooter(table.Row{fmt.Sprintf("... and %d more", len(names)-limit)})
	}
	t.Render()
}
