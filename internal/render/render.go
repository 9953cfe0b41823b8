// Package render serializes a reactor layout to a self-contained HTML
// artifact: one heatmap per horizontal layer, colored by cell code.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"reactorai/internal/grid"
)

// Grid writes the layout to path as an HTML page. Rendering is a
// post-run convenience: callers should log failures, not abort on
// them.
func Grid(g grid.Grid, title string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = title

	for x := 0; x < g.Shape.X; x++ {
		page.AddCharts(layerChart(g, x, title))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return page.Render(f)
}

func layerChart(g grid.Grid, x int, title string) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s — layer x=%d", title, x),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "y",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Name:      "z",
			Data:      axisLabels("z", g.Shape.Z),
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        grid.CodeMin,
			Max:        grid.CodeMax,
		}),
	)

	data := make([]opts.HeatMapData, 0, g.Shape.Y*g.Shape.Z)
	for y := 0; y < g.Shape.Y; y++ {
		for z := 0; z < g.Shape.Z; z++ {
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{y, z, g.At(x, y, z)},
			})
		}
	}

	hm.SetXAxis(axisLabels("y", g.Shape.Y)).AddSeries("cells", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return hm
}

func axisLabels(prefix string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return labels
}
