package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/duoqstats/internal/model"
)

// PrintPlain writes one "label games rate" line per row.
func PrintPlain(w io.Writer, rows []model.ReportRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s %d %s\n", r.Label, r.Games, formatRate(r))
	}
}

// PrintTable writes the rows as a table with the rate as a percentage.
func PrintTable(w io.Writer, rows []model.ReportRow) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("NAME", "GAMES", "WIN%")
	for _, r := range rows {
		pct := "n/a"
		if !r.Undefined {
			pct = fmt.Sprintf("%.1f%%", 100*r.WinRate)
		}
		table.Append(r.Label, strconv.Itoa(r.Games), pct)
	}
	table.Render()
}

func formatRate(r model.ReportRow) string {
	if r.Undefined {
		return "n/a"
	}
	return strconv.FormatFloat(r.WinRate, 'g', -1, 64)
}
