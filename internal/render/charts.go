package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// ChartsHTML writes an interactive HTML page with a time-series line chart
// and, when phase is non-nil, a phase scatter of phase[0] against phase[1].
func ChartsHTML(path, title string, times []float64, series []Series, phase *[2]Series) error {
	page := components.NewPage()
	page.PageTitle = title

	xs := make([]string, len(times))
	for i, t := range times {
		xs[i] = fmt.Sprintf("%.3f", t)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("samples=%d", len(times))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xs)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	page.AddCharts(line)

	if phase != nil {
		sc := charts.NewScatter()
		sc.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "600px"}),
			charts.WithTitleOpts(opts.Title{Title: "Phase portrait"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: phase[0].Name, NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: phase[1].Name, NameLocation: "middle", NameGap: 30}),
		)
		n := len(phase[0].Values)
		if len(phase[1].Values) < n {
			n = len(phase[1].Values)
		}
		pts := make([]opts.ScatterData, n)
		for i := 0; i < n; i++ {
			pts[i] = opts.ScatterData{Value: []interface{}{phase[0].Values[i], phase[1].Values[i]}}
		}
		sc.AddSeries("phase", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
		page.AddCharts(sc)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return &dynamo.RenderError{Op: "charts", Frame: -1, Wrapped: err}
	}
	err := writeAtomic(path, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
	if err != nil {
		return &dynamo.RenderError{Op: "charts", Frame: -1, Wrapped: err}
	}
	return nil
}
