package churn

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

// RenderExplanation writes a PNG chart of an explanation to w: the
// partial-dependence line for a numeric feature, a bar per level for a
// factor.
func RenderExplanation(w io.Writer, e *Explanation) error {
	if e.Empty() {
		return errors.NewValueError("churn.RenderExplanation", "explanation has no bins")
	}

	pl := plot.New()
	pl.Title.Text = "Partial dependence: " + e.Feature
	pl.X.Label.Text = e.Feature
	pl.Y.Label.Text = "mean churn response"

	if e.Factor {
		values := make(plotter.Values, len(e.Bins))
		labels := make([]string, len(e.Bins))
		for i, b := range e.Bins {
			values[i] = b.Effect
			labels[i] = b.Label
		}
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return errors.Wrap(err, "building bar chart")
		}
		pl.Add(bars)
		pl.NominalX(labels...)
	} else {
		points := make(plotter.XYs, len(e.Bins))
		for i, b := range e.Bins {
			points[i].X = b.Value
			points[i].Y = b.Effect
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrap(err, "building line plot")
		}
		pl.Add(plotter.NewGrid(), line)
	}

	writer, err := pl.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "rendering explanation")
	}
	if _, err := writer.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing explanation chart")
	}
	return nil
}
