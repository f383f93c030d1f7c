package gridsearch

import (
	"log/slog"
	"time"
)

const (
	// DefaultStepDelay is the pause between search iterations outside turbo mode.
	DefaultStepDelay = 20 * time.Millisecond
	// DefaultPollInterval is how often a paused search rechecks its state.
	DefaultPollInterval = 100 * time.Millisecond
)

// Options defines parameters for a Controller.
type Options struct {
	StepDelay    time.Duration
	Turbo        bool
	PollInterval time.Duration
	Frontier     FrontierFactory
	Heuristic    Heuristic
	Logger       *slog.Logger
	Observers    []Observer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStepDelay sets the suspension after each search iteration.
func WithStepDelay(delay time.Duration) Option {
	return func(options *Options) { options.StepDelay = delay }
}

// WithTurbo starts the controller in turbo mode (no step delay).
func WithTurbo(enabled bool) Option {
	return func(options *Options) { options.Turbo = enabled }
}

// WithPollInterval sets how often a paused search wakes to look for Resume.
func WithPollInterval(interval time.Duration) Option {
	return func(options *Options) { options.PollInterval = interval }
}

// WithFrontier selects the open-set implementation.
func WithFrontier(factory FrontierFactory) Option {
	return func(options *Options) { options.Frontier = factory }
}

// WithHeuristic replaces the Manhattan estimate. It must stay admissible and
// consistent for closed cells to remain final.
func WithHeuristic(heuristic Heuristic) Option {
	return func(options *Options) { options.Heuristic = heuristic }
}

// WithLogger sets the logger used for state transitions and outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithObserver registers observers before any event can be emitted.
func WithObserver(observers ...Observer) Option {
	return func(options *Options) { options.Observers = append(options.Observers, observers...) }
}

func defaultOptions() Options {
	return Options{
		StepDelay:    DefaultStepDelay,
		PollInterval: DefaultPollInterval,
		Frontier:     NewLinearFrontier,
		Heuristic:    Manhattan,
		Logger:       slog.Default(),
	}
}
