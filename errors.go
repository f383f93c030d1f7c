package gridsearch

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the grid and the controller.
var (
	// ErrOutOfBounds is returned when a position lies outside the grid extent.
	// Callers are expected to clamp before painting or querying.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrMissingEndpoints is returned by StartSearch when the grid lacks a start
	// or a goal cell. The controller stays Idle.
	ErrMissingEndpoints = errors.New("start and goal must both be set")

	// ErrInvalidTransition is returned when a control call is not supported in
	// the current state. Nothing changes, so callers may treat it as a no-op.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrEmptyFrontier is returned by PopMin on an empty frontier. Reaching it
	// from a running search is a bug.
	ErrEmptyFrontier = errors.New("frontier is empty")

	// ErrSearchActive is returned by Controller.Paint once a search has left Idle.
	ErrSearchActive = errors.New("grid is locked while a search is active")

	// ErrUnknownRole is returned when parsing a role name fails.
	ErrUnknownRole = errors.New("unknown role")

	// ErrInvalidLayout is returned when an ASCII layout cannot be applied.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrInvalidSize is returned when a grid is requested with a non-positive dimension.
	ErrInvalidSize = errors.New("grid dimensions must be positive")
)

// OutOfBoundsError reports a position outside a Width x Height grid.
type OutOfBoundsError struct {
	Position Position
	Width    int
	Height   int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position %s outside %dx%d grid", e.Position, e.Width, e.Height)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// TransitionError reports a control operation refused in the current state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
