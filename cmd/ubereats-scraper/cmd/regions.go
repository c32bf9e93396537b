package cmd

import (
	"io"
	"strings"
	"ubereats-scraper/internal/scrapers/ubereats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var regionsCountry string

func init() {
	regionsCmd.Flags().StringVar(&regionsCountry, "country", "", "Only list the regions of this country (ca or us).")
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the states and provinces accepted by --state.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printRegions(cmd.OutOrStdout(), regionsCountry)
	},
}

func printRegions(w io.Writer, country string) {
	country = strings.ToLower(strings.TrimSpace(country))

	t := newTable(w)
	t.AppendHeader(table.Row{"Code", "Name", "Country"})
	for _, r := range ubereats.Regions() {
		if country != "" && r.Country != country {
			continue
		}
		t.AppendRow(table.Row{r.Code, r.Name, strings.ToUpper(r.Country)})
	}
	t.Render()
}
