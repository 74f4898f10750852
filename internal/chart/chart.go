// Package chart renders the analyzer's charts to raster image files: the
// top pain-point bar chart and the electricity-consumption time series.
package chart

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"surveycli/internal/loader"
	"surveycli/internal/painpoint"
)

// RenderPainChart draws the selected metrics as a bar chart of mean pain
// score, labeled with the metric labels, and saves it to path (format from
// the extension, PNG by default).
func RenderPainChart(path string, metrics []painpoint.SelectedMetric) error {
	if len(metrics) == 0 {
		return fmt.Errorf("no metrics to chart")
	}

	p := plot.New()
	p.Title.Text = "Top pain points (importance minus satisfaction)"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Mean pain score"
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = -0.8

	values := make(plotter.Values, len(metrics))
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		values[i] = m.MeanDifference
		labels[i] = m.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save pain chart: %w", err)
	}
	return nil
}

// RenderConsumption draws one line per meter over time and saves the chart
// to path.
func RenderConsumption(path string, readings []loader.EnergyReading) error {
	if len(readings) == 0 {
		return fmt.Errorf("no readings to chart")
	}

	byMeter := make(map[string][]loader.EnergyReading)
	for _, r := range readings {
		byMeter[r.Meter] = append(byMeter[r.Meter], r)
	}
	meters := make([]string, 0, len(byMeter))
	for m := range byMeter {
		meters = append(meters, m)
	}
	sort.Strings(meters)

	p := plot.New()
	p.Title.Text = "Electricity consumption by meter"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "kWh"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	palette := []color.RGBA{
		{R: 70, G: 130, B: 180, A: 255},
		{R: 178, G: 34, B: 34, A: 255},
		{R: 34, G: 139, B: 34, A: 255},
		{R: 218, G: 165, B: 32, A: 255},
		{R: 106, G: 90, B: 205, A: 255},
	}

	for mi, meter := range meters {
		series := byMeter[meter]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})

		points := make(plotter.XYs, len(series))
		for i, r := range series {
			points[i].X = float64(r.Timestamp.Unix())
			points[i].Y = r.KWh
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("build line for meter %s: %w", meter, err)
		}
		line.Color = palette[mi%len(palette)]
		p.Add(line)
		p.Legend.Add(meter, line)
	}
	p.Legend.Top = true

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save consumption chart: %w", err)
	}
	return nil
}
