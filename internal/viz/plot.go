package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"sysflow/internal/sim"
)

const (
	plotWidth  = 70
	plotHeight = 12
)

// Plot charts the named series from a results table, one graph per name.
// Unknown names report instead of charting.
func Plot(res *sim.Results, names []string) string {
	if len(names) == 0 {
		names = res.Names()
	}

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		series := res.Series(name)
		if series == nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("no series %q", name)) + "\n")
			continue
		}
		if len(series) < 2 {
			b.WriteString(errStyle.Render(fmt.Sprintf("series %q too short to plot", name)) + "\n")
			continue
		}
		chart := asciigraph.Plot(series,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(name),
		)
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	return b.String()
}

// PlotSeries charts one raw series with a caption, sized for inline use.
func PlotSeries(values []float64, caption string, height int) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}
