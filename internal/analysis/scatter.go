package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// Scatter is a set of positions in world coordinates, y pointing down.
type Scatter struct {
	Points []Point
}

func SnapshotScatter(bodies []dynamo.BodyView) *Scatter {
	sc := &Scatter{Points: make([]Point, 0, len(bodies))}
	for _, b := range bodies {
		sc.Points = append(sc.Points, Point{X: b.Pos.X, Y: b.Pos.Y})
	}
	return sc
}

// ScatterToASCII draws the points inside the boundary's bounding square,
// with the boundary circle outlined.
func ScatterToASCII(sc *Scatter, bd dynamo.Boundary, width, height int) string {
	if sc == nil || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := bd.Center.X-bd.Radius, bd.Center.X+bd.Radius
	minY, maxY := bd.Center.Y-bd.Radius, bd.Center.Y+bd.Radius
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(x, y float64) (int, int) {
		col := int((x - minX) / rangeX * float64(width-1))
		row := int((y - minY) / rangeY * float64(height-1))
		return row, col
	}

	// outline
	for i := 0; i < 4*(width+height); i++ {
		angle := float64(i) / float64(4*(width+height)) * 2 * math.Pi
		p := bd.Center.Add(dynamo.V(math.Cos(angle), math.Sin(angle)).Scale(bd.Radius))
		row, col := toCell(p.X, p.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '·'
		}
	}

	for _, p := range sc.Points {
		row, col := toCell(p.X, p.Y)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
