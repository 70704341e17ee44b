package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// sizeUnits are the binary multiples used by formatSize, smallest first.
var sizeUnits = []string{"KB", "MB", "GB", "TB"}

// formatSize renders a byte count with one decimal in the largest unit that
// keeps the value at or above 1 (e.g. "1.5 KB"). Values under 1 KiB are exact.
func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n) / 1024
	unit := 0

	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", v, sizeUnits[unit])
}

// formatTime renders t like ls -l: time of day within the current year,
// the year otherwise. The zero time prints as "-".
func formatTime(t time.Time) string {
	switch {
	case t.IsZero():
		return "-"
	case t.Year() == time.Now().Year():
		return t.Format("Jan _2 15:04")
	default:
		return t.Format("Jan _2  2006")
	}
}

// printTable writes headers and rows as left-aligned columns separated by
// two spaces. The last column is never padded.
func printTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	_ = tw.Flush()
}
