package gridsearch

import (
	"strings"
	"time"
)

// Snapshot exposes a copy of the grid and search state, for renderers that
// attach after events have already been emitted.
type Snapshot struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	State     State         `json:"state"`
	Roles     []Role        `json:"roles"`
	Start     *Position     `json:"start,omitempty"`
	Goal      *Position     `json:"goal,omitempty"`
	Open      []Position    `json:"open,omitempty"`
	Closed    []Position    `json:"closed,omitempty"`
	Current   *Position     `json:"current,omitempty"`
	Path      []Position    `json:"path,omitempty"`
	Explored  int           `json:"explored"`
	StepDelay time.Duration `json:"stepDelay"`
	Turbo     bool          `json:"turbo"`
}

// Snapshot copies the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	grid := c.grid
	s := Snapshot{
		Width:     grid.width,
		Height:    grid.height,
		State:     c.state,
		Roles:     grid.Roles(),
		Path:      append([]Position(nil), c.path...),
		Explored:  c.explored,
		StepDelay: c.stepDelay,
		Turbo:     c.turbo,
	}
	if p, ok := grid.Start(); ok {
		s.Start = &p
	}
	if p, ok := grid.Goal(); ok {
		s.Goal = &p
	}
	if r := c.run; r != nil {
		for _, i := range r.frontier.Items() {
			s.Open = append(s.Open, grid.position(i))
		}
		for i, closed := range r.closed {
			if closed {
				s.Closed = append(s.Closed, grid.position(i))
			}
		}
		if r.current != noCell {
			p := grid.position(r.current)
			s.Current = &p
		}
	}
	return s
}

// Text draws the snapshot using the layout alphabet, with '*' for path cells
// between the endpoints.
func (s Snapshot) Text() string {
	cells := make([]byte, len(s.Roles))
	for i, role := range s.Roles {
		cells[i] = layoutGlyphs[role]
	}
	for k := 1; k < len(s.Path)-1; k++ {
		p := s.Path[k]
		cells[p.Y*s.Width+p.X] = '*'
	}
	var b strings.Builder
	for y := 0; y < s.Height; y++ {
		b.Write(cells[y*s.Width : (y+1)*s.Width])
		b.WriteByte('\n')
	}
	return b.String()
}
