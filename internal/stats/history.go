package stats

import (
	"fmt"
	"io"
	"unicode/utf8"

	"strings"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"
)

// RenderHistory prints a table of stored races, most recent last.
func RenderHistory(w io.Writer, races []model.RaceAggregate) error {
	if len(races) == 0 {
		_, err := fmt.Fprintln(w, "No races found.")
		return err
	}
	headers := []string{"When", "Mode", "Pos", "WPM", "Accuracy", "XP"}
	rows := make([][]string, 0, len(races))
	for _, race := range races {
		rows = append(rows, []string{
			race.EndedAt.Local().Format("2006-01-02 15:04"),
			race.Mode,
			fmt.Sprintf("%d", race.Position),
			fmt.Sprintf("%.1f", race.WPM),
			fmt.Sprintf("%.1f%%", race.Accuracy),
			fmt.Sprintf("%d", race.Reward),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := utf8.RuneCountInString(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
