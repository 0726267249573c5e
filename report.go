package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

func showResult(w io.Writer, ch *chart) {
	fmt.Fprintln(w, "\nResult")
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 6))

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	headers := []string{"Threads"}
	for _, s := range ch.Series {
		headers = append(headers, s.Label)
	}
	table.SetHeader(headers)
	table.SetRowLine(true)
	table.AppendBulk(generateRows(ch))
	table.Render()
}

func generateRows(ch *chart) [][]string {
	rows := make([][]string, len(ch.XTicks))
	for i, threads := range ch.XTicks {
		row := []string{strconv.Itoa(threads)}
		for _, s := range ch.Series {
			row = append(row, fmt.Sprintf("%.0f ms", s.Points[i].Y))
		}
		rows[i] = row
	}
	return rows
}
