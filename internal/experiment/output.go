package experiment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/render"
)

// Scene fits the configured render width and padding around tr.
func (e *Experiment) Scene(tr *dynamo.Trajectory) render.Scene {
	return render.FitScene(tr, e.mapper, e.cfg.Render.Width, e.cfg.Render.Pad)
}

// Animate encodes every sample of tr to path at the configured frame rate.
func (e *Experiment) Animate(ctx context.Context, tr *dynamo.Trajectory, path string, onFrame func(int)) error {
	col, err := render.ParseColor(e.cfg.Render.Color)
	if err != nil {
		return &dynamo.RenderError{Op: "color", Frame: -1, Wrapped: err}
	}
	panel, err := render.ParsePanel(e.cfg.Render.Panel)
	if err != nil {
		return &dynamo.RenderError{Op: "panel", Frame: -1, Wrapped: err}
	}
	dash, err := e.Dashboard(tr)
	if err != nil {
		return &dynamo.RenderError{Op: "dashboard", Frame: -1, Wrapped: err}
	}
	enc, err := render.NewEncoder(ctx, path, e.cfg.FPS)
	if err != nil {
		return err
	}
	return render.AnimatePanel(ctx, tr, e.mapper, dash, panel, enc, render.AnimateOptions{
		Color:   col,
		Trail:   e.cfg.Render.Trail,
		Label:   true,
		Speed:   e.cfg.Speed,
		OnFrame: onFrame,
	})
}

// Dashboard sets up progressive plots of tr: every component against time
// and the first coordinate's phase portrait.
func (e *Experiment) Dashboard(tr *dynamo.Trajectory) (*render.Dashboard, error) {
	d, err := render.NewDashboard(e.Scene(tr), tr.Times(), e.Series(tr), 0, 1)
	if err != nil {
		return nil, err
	}
	d.Title = e.entry.Name
	return d, nil
}

// Still writes sample i of tr as a single image.
func (e *Experiment) Still(tr *dynamo.Trajectory, i int, path string) error {
	if i < 0 || i >= tr.Len() {
		return &dynamo.RenderError{Op: "still", Frame: i, Wrapped: dynamo.ErrInvalidSamples}
	}
	col, err := render.ParseColor(e.cfg.Render.Color)
	if err != nil {
		return &dynamo.RenderError{Op: "color", Frame: -1, Wrapped: err}
	}
	layer := render.Layer{Config: e.mapper.Map(tr.State(i), tr.Time(i)), Color: col}
	return render.Still(path, e.Scene(tr), []render.Layer{layer}, fmt.Sprintf("t = %.2f s", tr.Time(i)))
}

// Series returns every state component of tr labelled for this system.
func (e *Experiment) Series(tr *dynamo.Trajectory) []render.Series {
	series := make([]render.Series, tr.Dim())
	for j := range series {
		name := fmt.Sprintf("x%d", j)
		if j < len(e.entry.Labels) {
			name = e.entry.Labels[j]
		}
		series[j] = render.Series{Name: name, Values: tr.Column(j)}
	}
	return series
}

// Plots writes timeseries.png, phase.png and charts.html into dir and
// returns their paths.
func (e *Experiment) Plots(tr *dynamo.Trajectory, dir string) ([]string, error) {
	series := e.Series(tr)
	title := e.entry.Name

	paths := []string{
		filepath.Join(dir, "timeseries.png"),
		filepath.Join(dir, "phase.png"),
		filepath.Join(dir, "charts.html"),
	}
	if err := render.TimeSeries(paths[0], title, tr.Times(), series); err != nil {
		return nil, err
	}
	phase := [2]render.Series{series[0], series[1]}
	if err := render.Phase(paths[1], title, phase[0].Name, phase[1].Name, phase[0].Values, phase[1].Values); err != nil {
		return nil, err
	}
	if err := render.ChartsHTML(paths[2], title, tr.Times(), series, &phase); err != nil {
		return nil, err
	}
	return paths, nil
}
