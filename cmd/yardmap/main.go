// Command yardmap renders a photogrammetry point cloud into a top-down yard
// map PNG. Point input is a CloudCompare-style .asc listing; the engine
// itself only ever sees in-memory point arrays.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andbeder/yardmap/internal/device"
	"github.com/andbeder/yardmap/internal/points"
	"github.com/andbeder/yardmap/internal/raster"
	"github.com/andbeder/yardmap/internal/renderdb"
	"github.com/andbeder/yardmap/internal/security"
	"github.com/andbeder/yardmap/internal/version"
)

var (
	input        = flag.String("input", "", "Input .asc point file (required)")
	output       = flag.String("output", "", "Output PNG path (default: derived from the input name)")
	projection   = flag.String("projection", "xz", "Projection plane: xy, xz or yz")
	rotation     = flag.Float64("rotation", 0, "Rotation about the point centroid, degrees")
	boundsFlag   = flag.String("bounds", "", "Custom view bounds as xmin,xmax,ymin,ymax (default: 1st/99th percentile)")
	width        = flag.Int("width", 1280, "Output width in pixels")
	height       = flag.Int("height", 720, "Output height in pixels")
	coloring     = flag.String("coloring", "true_color", "Pixel coloring: true_color, height or path")
	algorithm    = flag.String("algorithm", "bottom_percentile", "Ground selection: bottom_percentile or simple_average")
	maxPoints    = flag.Int("max-points", 0, "Cap the cloud at N points by uniform decimation (0 = no cap)")
	workers      = flag.Int("workers", 0, "Compute workers (0 = all CPUs)")
	dbFile       = flag.String("db", "", "Optional SQLite file to record this render run")
	report       = flag.Bool("report", false, "With -db: write an HTML run report next to it and exit")
	reportLimit  = flag.Int("report-limit", 50, "Number of runs in the report")
	depthProfile = flag.String("depth-profile", "", "Optional PNG path for a depth histogram of the projected cloud")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("yardmap %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *report {
		if *dbFile == "" {
			log.Fatal("-report requires -db")
		}
		writeReport()
		return
	}

	if *input == "" {
		log.Fatal("-input is required")
	}

	proj, err := raster.ParseProjection(*projection)
	if err != nil {
		log.Fatalf("invalid -projection: %v", err)
	}
	col, err := raster.ParseColoring(*coloring)
	if err != nil {
		log.Fatalf("invalid -coloring: %v", err)
	}
	alg, err := raster.ParseAlgorithm(*algorithm)
	if err != nil {
		log.Fatalf("invalid -algorithm: %v", err)
	}

	cfg := raster.Config{
		Projection:      proj,
		RotationDegrees: *rotation,
		Width:           *width,
		Height:          *height,
		Coloring:        col,
		Algorithm:       alg,
		MaxPoints:       *maxPoints,
	}
	if *boundsFlag != "" {
		b, err := parseBounds(*boundsFlag)
		if err != nil {
			log.Fatalf("invalid -bounds: %v", err)
		}
		cfg.Bounds = &b
	}

	cloud, err := points.ReadASCFile(*input)
	if err != nil {
		log.Fatalf("failed to read points: %v", err)
	}
	log.Printf("loaded %d points from %s (colors: %v)", cloud.Size(), *input, cloud.HasColor())

	if *depthProfile != "" {
		if err := raster.SaveDepthProfile(*depthProfile, cloud, proj); err != nil {
			log.Fatalf("failed to write depth profile: %v", err)
		}
		log.Printf("wrote depth profile to %s", *depthProfile)
	}

	dev, err := device.Open(*workers)
	if err != nil {
		log.Fatalf("failed to open compute device: %v", err)
	}
	defer dev.Close()

	renderer, err := raster.New(dev)
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}

	start := time.Now()
	frame, renderErr := renderer.Render(cloud, cfg)
	elapsed := time.Since(start)

	if *dbFile != "" {
		recordRun(cloud, cfg, frame, renderErr, elapsed)
	}
	if renderErr != nil {
		log.Fatalf("render failed: %v", renderErr)
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputName(*input)
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, frame.RGBA()); err != nil {
		log.Fatalf("failed to encode PNG: %v", err)
	}
	log.Printf("wrote %dx%d yard map to %s in %v", frame.Width, frame.Height, outPath, elapsed)
}

// defaultOutputName derives a PNG name from the input scan path, e.g.
// "scans/back yard.asc" becomes "back_yard-yardmap.png".
func defaultOutputName(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return security.SanitizeFilename(base) + "-yardmap.png"
}

// parseBounds parses "xmin,xmax,ymin,ymax".
func parseBounds(s string) (raster.Bounds, error) {
	var b raster.Bounds
	n, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.XMin, &b.XMax, &b.YMin, &b.YMax)
	if err != nil || n != 4 {
		return b, fmt.Errorf("want xmin,xmax,ymin,ymax, got %q", s)
	}
	return b, nil
}

func recordRun(cloud *points.Cloud, cfg raster.Config, frame *raster.Frame, renderErr error, elapsed time.Duration) {
	db, err := renderdb.Open(*dbFile)
	if err != nil {
		log.Printf("failed to open render db: %v", err)
		return
	}
	defer db.Close()

	params, _ := json.Marshal(map[string]interface{}{
		"projection": cfg.Projection.String(),
		"rotation":   cfg.RotationDegrees,
		"bounds":     cfg.Bounds,
		"coloring":   cfg.Coloring.String(),
		"algorithm":  cfg.Algorithm.String(),
		"max_points": cfg.MaxPoints,
	})
	rec := renderdb.RunRecord{
		Source:     *input,
		Params:     params,
		Width:      cfg.Width,
		Height:     cfg.Height,
		PointCount: cloud.Size(),
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000,
	}
	if renderErr != nil {
		rec.Error = renderErr.Error()
	} else {
		stats, _ := json.Marshal(frame.Stats)
		rec.Stats = stats
	}
	runID, err := db.InsertRun(rec)
	if err != nil {
		log.Printf("failed to record render run: %v", err)
		return
	}
	log.Printf("recorded render run %s", runID)
}

func writeReport() {
	db, err := renderdb.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open render db: %v", err)
	}
	defer db.Close()

	path := *dbFile + ".report.html"
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("failed to create report file: %v", err)
	}
	defer f.Close()
	if err := db.WriteReport(f, *reportLimit); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	log.Printf("wrote run report to %s", path)
}
