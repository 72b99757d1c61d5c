package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisSeparator       = " | "
	terminalWidthBackup = 80
)

// TerminalWidth reports the current terminal width, falling back to a
// conservative default when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderWPMPlot prints a text plot of the WPM curve, smoothed by a moving
// average and resampled to the available width.
func RenderWPMPlot(w io.Writer, values []float64, window, totalWidth, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}

	smoothed := MovingAverage(values, window)
	minVal, maxVal := seriesMinMax(smoothed)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	labelWidth := len(fmt.Sprintf("%.0f", maxVal))
	plotWidth := totalWidth - labelWidth - len(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	sampled := resample(smoothed, plotWidth)

	if _, err := fmt.Fprintf(w, "WPM curve (min=%.1f max=%.1f)\n", minVal, maxVal); err != nil {
		return err
	}
	for row := 0; row < height; row++ {
		// Row 0 is the top band of the value range.
		upper := maxVal - (maxVal-minVal)*float64(row)/float64(height)
		lower := maxVal - (maxVal-minVal)*float64(row+1)/float64(height)
		label := ""
		if row == 0 {
			label = fmt.Sprintf("%.0f", maxVal)
		} else if row == height-1 {
			label = fmt.Sprintf("%.0f", minVal)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", labelWidth, label, axisSeparator)
		for _, v := range sampled {
			switch {
			case v >= upper:
				b.WriteByte('.')
			case v >= lower:
				b.WriteByte('#')
			default:
				b.WriteByte(' ')
			}
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func seriesMinMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// resample stretches or shrinks values to exactly width samples using
// nearest-neighbor selection; good enough for a terminal plot.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, width)
	for x := 0; x < width; x++ {
		idx := x * len(values) / width
		if idx >= len(values) {
			idx = len(values) - 1
		}
		out[x] = values[idx]
	}
	return out
}
