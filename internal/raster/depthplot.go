package raster

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/andbeder/yardmap/internal/points"
)

// SaveDepthProfile writes a histogram of the cloud's projected depth
// distribution to a PNG at path. The plot is a tuning aid for the
// ground-selection percentile: a long upper tail is canopy, a tight lower
// mode is terrain.
func SaveDepthProfile(path string, cloud *points.Cloud, proj Projection) error {
	if cloud.Size() == 0 {
		return ErrEmptyDataset
	}

	p := project(cloud, proj)
	vals := make(plotter.Values, len(p.depth))
	for i, d := range p.depth {
		vals[i] = float64(d)
	}

	mean, std := stat.MeanStdDev(vals, nil)

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Depth profile (%s): mean %.2f, stddev %.2f", proj, mean, std)
	pl.X.Label.Text = "depth"
	pl.Y.Label.Text = "points"

	hist, err := plotter.NewHist(vals, 60)
	if err != nil {
		return fmt.Errorf("building depth histogram: %w", err)
	}
	pl.Add(hist)

	if err := pl.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving depth profile: %w", err)
	}
	return nil
}
