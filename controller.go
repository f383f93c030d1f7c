package gridsearch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// State is the controller's position in the search lifecycle.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StatePathFound
	StatePathNotFound
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateRunning:      "running",
	StatePaused:       "paused",
	StatePathFound:    "path_found",
	StatePathNotFound: "path_not_found",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s is PathFound or PathNotFound.
func (s State) Terminal() bool {
	return s == StatePathFound || s == StatePathNotFound
}

// Controller owns a Grid and at most one search run over it. The run is driven
// by a goroutine that performs one iteration per tick and suspends between
// ticks, so painting and control calls stay responsive.
//
// All methods are safe for concurrent use.
type Controller struct {
	mu           sync.Mutex
	grid         *Grid
	state        State
	run          *run
	cancel       context.CancelFunc
	done         chan struct{}
	trace        []Position
	path         []Position
	explored     int
	stepDelay    time.Duration
	turbo        bool
	pollInterval time.Duration
	frontier     FrontierFactory
	logger       *slog.Logger

	observersMu  sync.RWMutex
	observers    []subscription
	subscription int
}

type subscription struct {
	id       int
	observer Observer
}

// New creates a controller over an empty width x height grid.
func New(width, height int, options ...Option) (*Controller, error) {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}

	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if opts.Heuristic != nil {
		grid.heuristic = opts.Heuristic
	}
	if opts.Frontier == nil {
		opts.Frontier = NewLinearFrontier
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	c := &Controller{
		grid:         grid,
		stepDelay:    max(opts.StepDelay, 0),
		turbo:        opts.Turbo,
		pollInterval: opts.PollInterval,
		frontier:     opts.Frontier,
		logger:       opts.Logger.With("component", "gridsearch"),
	}
	for _, o := range opts.Observers {
		c.Subscribe(o)
	}
	c.logger.Debug("Controller created.", "width", width, "height", height)
	return c, nil
}

// Subscribe registers o for all future events and returns a function that
// removes it again.
func (c *Controller) Subscribe(o Observer) (unsubscribe func()) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()
	c.subscription++
	id := c.subscription
	c.observers = append(c.observers, subscription{id: id, observer: o})
	return func() {
		c.observersMu.Lock()
		defer c.observersMu.Unlock()
		for k, s := range c.observers {
			if s.id == id {
				c.observers = append(c.observers[:k:k], c.observers[k+1:]...)
				return
			}
		}
	}
}

func (c *Controller) emit(e Event) {
	c.observersMu.RLock()
	subs := c.observers
	c.observersMu.RUnlock()
	for _, s := range subs {
		s.observer.Observe(e)
	}
}

// Width returns the grid width in cells.
func (c *Controller) Width() int { return c.grid.width }

// Height returns the grid height in cells.
func (c *Controller) Height() int { return c.grid.height }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cell returns a copy of the cell at p.
func (c *Controller) Cell(p Position) (Cell, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Cell(p)
}

// Path returns the start..goal chain of the last successful search.
func (c *Controller) Path() []Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Position(nil), c.path...)
}

// Paint designates the cell at p as role and emits EventCellChanged when the
// cell changed. Painting is only accepted while Idle.
func (c *Controller) Paint(p Position, role Role) (bool, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return false, fmt.Errorf("%w (state %s)", ErrSearchActive, state)
	}
	change, err := c.grid.Paint(p, role)
	c.mu.Unlock()
	if err != nil || change == nil {
		return false, err
	}
	c.emit(Event{
		Kind:      EventCellChanged,
		Position:  change.Position,
		Role:      change.Role,
		Displaced: change.Displaced,
	})
	return true, nil
}

// StartSearch begins a search from Idle. It fails with ErrMissingEndpoints when
// the grid lacks a start or goal, and with a TransitionError outside Idle. The
// search keeps running until it finishes, Reset is called, or ctx is done.
func (c *Controller) StartSearch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return &TransitionError{Op: "start search", State: c.state}
	}
	if c.grid.start == noCell || c.grid.goal == noCell {
		return ErrMissingEndpoints
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := newRun(c.grid, c.frontier)
	done := make(chan struct{})
	c.run, c.cancel, c.done = r, cancel, done
	c.trace, c.path, c.explored = nil, nil, 0
	c.state = StateRunning

	start, _ := c.grid.Start()
	goal, _ := c.grid.Goal()
	c.logger.Info("Search started.", "start", start.String(), "goal", goal.String(), "turbo", c.turbo)

	go c.drive(runCtx, r, done)
	return nil
}

// Pause suspends a running search. Outside Running it returns a
// TransitionError and changes nothing.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return &TransitionError{Op: "pause", State: c.state}
	}
	c.state = StatePaused
	c.logger.Debug("Search paused.")
	return nil
}

// Resume continues a paused search. The driver notices at its next poll.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return &TransitionError{Op: "resume", State: c.state}
	}
	c.state = StateRunning
	c.logger.Debug("Search resumed.")
	return nil
}

// Reset stops any search, clears the whole grid (walls included) and returns
// to Idle. It is valid in every state and does not wait for the driver.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	previous := c.state
	c.run, c.cancel = nil, nil
	c.trace, c.path, c.explored = nil, nil, 0
	c.grid.Clear()
	c.state = StateIdle
	c.mu.Unlock()

	c.logger.Debug("Controller reset.", "previous_state", previous.String())
	c.emit(Event{Kind: EventReset})
}

// SetSpeed sets the delay between iterations. Negative values count as zero.
func (c *Controller) SetSpeed(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepDelay = max(delay, 0)
}

// SetTurbo toggles turbo mode, which drops the step delay but keeps yielding.
func (c *Controller) SetTurbo(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turbo = enabled
}

// Done returns a channel closed when the current (or last) search driver has
// exited. Without any search it returns a closed channel.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Wait blocks until the current search driver exits or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drive is the cooperative search task. Each tick returns how long to suspend
// before the next one; every suspension observes cancellation.
func (c *Controller) drive(ctx context.Context, r *run, done chan struct{}) {
	defer close(done)
	for {
		delay, finished := c.tick(ctx, r)
		if finished {
			return
		}
		if !suspend(ctx, delay) {
			c.abandon(r)
			return
		}
	}
}

// abandon returns to Idle when the caller's context ended a run that Reset did
// not already tear down. Painted roles are kept.
func (c *Controller) abandon(r *run) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run != r {
		c.logger.Debug("Search cancelled by reset.")
		return
	}
	c.run, c.trace = nil, nil
	c.cancel()
	c.state = StateIdle
	c.logger.Info("Search abandoned.", "explored", c.explored)
}

func (c *Controller) tick(ctx context.Context, r *run) (time.Duration, bool) {
	c.mu.Lock()
	if c.run != r || ctx.Err() != nil {
		c.mu.Unlock()
		return 0, true
	}
	if c.state == StatePaused {
		poll := c.pollInterval
		c.mu.Unlock()
		return poll, false
	}

	events, err := c.advance(r)
	finished := c.state.Terminal()
	delay := c.nextDelay()
	if finished {
		c.run = nil
		c.cancel()
		c.logger.Info("Search finished.", "outcome", c.state.String(), "explored", c.explored, "path_length", max(len(c.path)-1, 0))
	}
	c.mu.Unlock()

	if err != nil {
		panic(fmt.Errorf("gridsearch: search invariant violated: %w", err))
	}
	for _, e := range events {
		if !finished && ctx.Err() != nil {
			return 0, true
		}
		c.emit(e)
	}
	return delay, finished
}

// advance performs one tick of work with c.mu held: either one search
// iteration or one step of the path animation.
func (c *Controller) advance(r *run) ([]Event, error) {
	if r.done() {
		return c.advanceTrace(), nil
	}

	result, err := r.Step()
	if err != nil {
		return nil, err
	}

	var events []Event
	if result.Explored {
		c.explored++
		events = append(events, Event{Kind: EventExplored, Position: result.Current})
	}

	switch result.Outcome {
	case OutcomePathFound:
		c.path = result.Path
		// intermediate cells, goal side first
		for k := len(result.Path) - 2; k >= 1; k-- {
			c.trace = append(c.trace, result.Path[k])
		}
		if len(c.trace) == 0 {
			events = append(events, c.finish(StatePathFound, OutcomePathFound))
		}
	case OutcomePathNotFound:
		events = append(events, c.finish(StatePathNotFound, OutcomePathNotFound))
	}
	return events, nil
}

func (c *Controller) advanceTrace() []Event {
	if len(c.trace) == 0 {
		return []Event{c.finish(StatePathFound, OutcomePathFound)}
	}
	next := c.trace[0]
	c.trace = c.trace[1:]
	events := []Event{{Kind: EventPathCell, Position: next}}
	if len(c.trace) == 0 {
		events = append(events, c.finish(StatePathFound, OutcomePathFound))
	}
	return events
}

func (c *Controller) finish(state State, outcome Outcome) Event {
	c.state = state
	return Event{Kind: EventFinished, Outcome: outcome}
}

func (c *Controller) nextDelay() time.Duration {
	if c.turbo {
		return 0
	}
	return c.stepDelay
}

// suspend waits for d or until ctx is done, reporting whether to continue.
// A zero delay still yields the processor.
func suspend(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
