package drawing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/vellum/internal/geometry"
)

// PathToSVG renders points as an SVG path: "M x y L x y ...".
func PathToSVG(points []geometry.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return b.String()
}

// ParseSVGPath reads the subset of SVG path syntax produced by PathToSVG.
func ParseSVGPath(d string) ([]geometry.Point, error) {
	fields := strings.Fields(d)
	if len(fields) == 0 {
		return nil, nil
	}
	var out []geometry.Point
	for i := 0; i < len(fields); {
		cmd := fields[i]
		switch {
		case i == 0 && cmd != "M":
			return nil, fmt.Errorf("drawing: path must start with M, got %q", cmd)
		case i > 0 && cmd != "L":
			return nil, fmt.Errorf("drawing: unsupported command %q", cmd)
		}
		if i+2 >= len(fields) {
			return nil, fmt.Errorf("drawing: command %q at %d is missing coordinates", cmd, i)
		}
		x, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("drawing: parse x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("drawing: parse y: %w", err)
		}
		out = append(out, geometry.Point{X: x, Y: y})
		i += 3
	}
	return out, nil
}
