package gridsearch

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var layoutGlyphs = map[Role]byte{
	RoleEmpty: '.',
	RoleWall:  '#',
	RoleStart: 'S',
	RoleGoal:  'G',
}

// Layout is a parsed ASCII grid preset.
type Layout struct {
	Width  int
	Height int
	Walls  []Position
	Start  *Position
	Goal   *Position
}

// ParseLayout reads rows of '.' (or ' ') for empty cells, '#' for walls and
// 'S'/'G' for the endpoints. Rows must have equal length and each endpoint may
// appear at most once.
func ParseLayout(rows []string) (Layout, error) {
	var l Layout
	for y, row := range rows {
		row = strings.TrimRight(row, "\r")
		if y == 0 {
			l.Width = len(row)
		} else if len(row) != l.Width {
			return Layout{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, y, len(row), l.Width)
		}
		for x := 0; x < len(row); x++ {
			p := Position{X: x, Y: y}
			switch row[x] {
			case '.', ' ':
			case '#':
				l.Walls = append(l.Walls, p)
			case 'S', 's':
				if l.Start != nil {
					return Layout{}, fmt.Errorf("%w: second start at %s", ErrInvalidLayout, p)
				}
				l.Start = &p
			case 'G', 'g':
				if l.Goal != nil {
					return Layout{}, fmt.Errorf("%w: second goal at %s", ErrInvalidLayout, p)
				}
				l.Goal = &p
			default:
				return Layout{}, fmt.Errorf("%w: unexpected %q at %s", ErrInvalidLayout, row[x], p)
			}
		}
	}
	l.Height = len(rows)
	if l.Width == 0 || l.Height == 0 {
		return Layout{}, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	return l, nil
}

// ApplyLayout paints l onto the grid with its top-left corner at (0,0). Cells
// outside the layout are left as they are.
func (c *Controller) ApplyLayout(l Layout) error {
	if l.Width > c.grid.width || l.Height > c.grid.height {
		return fmt.Errorf("%w: %dx%d layout does not fit %dx%d grid", ErrInvalidLayout, l.Width, l.Height, c.grid.width, c.grid.height)
	}
	for _, p := range l.Walls {
		if _, err := c.Paint(p, RoleWall); err != nil {
			return fmt.Errorf("failed to paint wall: %w", err)
		}
	}
	for _, endpoint := range []struct {
		p    *Position
		role Role
	}{{l.Start, RoleStart}, {l.Goal, RoleGoal}} {
		if endpoint.p == nil {
			continue
		}
		if _, err := c.Paint(*endpoint.p, endpoint.role); err != nil {
			return fmt.Errorf("failed to paint %s: %w", endpoint.role, err)
		}
	}
	return nil
}

// Scatter configures ScatterWalls.
type Scatter struct {
	Clusters int     // number of random walks
	Steps    int     // length of each walk
	Density  float64 // chance a visited cell becomes a wall
}

// DefaultScatter matches the obstacle density of the interactive demo.
var DefaultScatter = Scatter{Clusters: 8, Steps: 200, Density: 0.25}

// ScatterWalls builds a width x height layout of clustered walls grown by random
// walks. Cells listed in keep never become walls. Walls are listed in row-major
// order.
func ScatterWalls(width, height int, s Scatter, r *rand.Rand, keep ...Position) Layout {
	l := Layout{Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return l
	}
	wall := make([]bool, width*height)
	for c := 0; c < s.Clusters; c++ {
		p := Position{X: r.IntN(width), Y: r.IntN(height)}
		for range s.Steps {
			if r.Float64() < s.Density {
				wall[p.Y*width+p.X] = true
			}
			d := offsets[r.IntN(len(offsets))]
			if np := (Position{X: p.X + d.X, Y: p.Y + d.Y}); np.X >= 0 && np.X < width && np.Y >= 0 && np.Y < height {
				p = np
			}
		}
	}
	for _, p := range keep {
		if p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height {
			wall[p.Y*width+p.X] = false
		}
	}
	for i, w := range wall {
		if w {
			l.Walls = append(l.Walls, Position{X: i % width, Y: i / width})
		}
	}
	return l
}
