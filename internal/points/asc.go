package points

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadASC parses a CloudCompare-compatible .asc point listing: one point per
// line as "X Y Z" or "X Y Z R G B", whitespace separated, with '#' comment
// lines ignored. Color columns may be 0-255 or 0-1 scale; values are kept
// as written. Lines whose color columns are missing on a cloud that
// previously had them are an error, so Colors stays aligned with Points.
func ReadASC(r io.Reader) (*Cloud, error) {
	cloud := &Cloud{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 && len(fields) < 6 {
			return nil, fmt.Errorf("line %d: expected 3 or 6+ columns, got %d", lineNo, len(fields))
		}

		var vals [6]float64
		n := 3
		if len(fields) >= 6 {
			n = 6
		}
		for i := 0; i < n; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %d: %w", lineNo, i+1, err)
			}
			vals[i] = v
		}

		if n == 6 && cloud.Colors == nil && len(cloud.Points) > 0 {
			return nil, fmt.Errorf("line %d: color columns appear after colorless points", lineNo)
		}
		if n == 3 && cloud.Colors != nil {
			return nil, fmt.Errorf("line %d: missing color columns", lineNo)
		}

		cloud.Points = append(cloud.Points, Point{
			X: float32(vals[0]), Y: float32(vals[1]), Z: float32(vals[2]),
		})
		if n == 6 {
			cloud.Colors = append(cloud.Colors, Color{
				R: float32(vals[3]), G: float32(vals[4]), B: float32(vals[5]),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading asc: %w", err)
	}
	return cloud, nil
}

// ReadASCFile reads a .asc file from disk.
func ReadASCFile(path string) (*Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cloud, err := ReadASC(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cloud, nil
}

// WriteASC writes the cloud in the same .asc layout ReadASC accepts.
func WriteASC(w io.Writer, cloud *Cloud) error {
	if cloud.Size() == 0 {
		return fmt.Errorf("no points to export")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Exported points\n")
	if cloud.HasColor() {
		fmt.Fprintf(bw, "# Format: X Y Z R G B\n")
	} else {
		fmt.Fprintf(bw, "# Format: X Y Z\n")
	}
	for i, p := range cloud.Points {
		if cloud.HasColor() {
			c := cloud.Colors[i]
			fmt.Fprintf(bw, "%.6f %.6f %.6f %g %g %g\n", p.X, p.Y, p.Z, c.R, c.G, c.B)
		} else {
			fmt.Fprintf(bw, "%.6f %.6f %.6f\n", p.X, p.Y, p.Z)
		}
	}
	return bw.Flush()
}
