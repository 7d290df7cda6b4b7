package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

const (
	background = "#1e1e1e"
	ringColor  = "#9b9b9b"
)

// SnapshotToSVG draws the boundary ring and every body of a snapshot. The
// view box is the boundary's bounding square, so world coordinates are used
// as-is.
func SnapshotToSVG(bodies []dynamo.BodyView, bd dynamo.Boundary, size int) string {
	if size <= 0 {
		size = 600
	}
	minX, minY := bd.Center.X-bd.Radius, bd.Center.Y-bd.Radius
	side := 2 * bd.Radius

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%.1f %.1f %.1f %.1f">
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>
`, size, size, minX, minY, side, side,
		minX, minY, side, side, background,
		bd.Center.X, bd.Center.Y, bd.Radius, ringColor))

	for _, b := range bodies {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.Pos.X, b.Pos.Y, b.Radius, b.Color.String()))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots a sampled series (population, energy, ...) as a
// polyline against its index.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
