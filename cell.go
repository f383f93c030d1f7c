package gridsearch

import (
	"fmt"
	"math"
	"strings"
)

// Unvisited is the g/h sentinel for cells the current run has not reached.
var Unvisited = math.Inf(1)

// Position is an integer grid coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String provides a string representation of Position
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Role is the painted designation of a cell.
type Role uint8

const (
	RoleEmpty Role = iota
	RoleWall
	RoleStart
	RoleGoal
	// RoleErase is accepted by Paint as a synonym of RoleEmpty. Cells never hold it.
	RoleErase
)

var roleNames = [...]string{
	RoleEmpty: "empty",
	RoleWall:  "wall",
	RoleStart: "start",
	RoleGoal:  "goal",
	RoleErase: "erase",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", r)
}

// ParseRole maps the text form used by transports and config back to a Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return Role(r), nil
		}
	}
	return RoleEmpty, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return int(r) < len(roleNames)
}

// normalize folds RoleErase into RoleEmpty.
func (r Role) normalize() Role {
	if r == RoleErase {
		return RoleEmpty
	}
	return r
}

// Cell is a read-only view of one grid position and its search bookkeeping.
type Cell struct {
	Position Position
	Role     Role
	G        float64
	H        float64
	// Parent is the predecessor on the best known path, nil when none.
	Parent *Position
}

// F returns g + h. It is never stored.
func (c Cell) F() float64 {
	return c.G + c.H
}
