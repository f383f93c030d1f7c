package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/pdrpinto/gridsearch"
	"github.com/pdrpinto/gridsearch/internal/config"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	controller *gridsearch.Controller

	mu  sync.Mutex
	ctx context.Context // parent of every search started through the App
	// tool is the role painted by PaintAt.
	tool gridsearch.Role
}

// New builds the App from cfg: an isolated logger writing to outW and a
// controller sized and paced by the configuration, with the optional layout
// preset already painted.
func New(outW io.Writer, cfg *config.Config, options ...gridsearch.Option) (*App, error) {
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, outW)
	logger.Debug("Logger configured successfully.")

	frontier, err := frontierFactory(cfg.Search.Frontier)
	if err != nil {
		return nil, err
	}
	width, height := cfg.Grid.Dimensions()
	opts := append([]gridsearch.Option{
		gridsearch.WithLogger(logger),
		gridsearch.WithStepDelay(cfg.Search.StepDelay),
		gridsearch.WithTurbo(cfg.Search.Turbo),
		gridsearch.WithPollInterval(cfg.Search.PollInterval),
		gridsearch.WithFrontier(frontier),
	}, options...)
	controller, err := gridsearch.New(width, height, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	if len(cfg.Grid.Layout) > 0 {
		layout, err := gridsearch.ParseLayout(cfg.Grid.Layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout preset: %w", err)
		}
		if err := controller.ApplyLayout(layout); err != nil {
			return nil, fmt.Errorf("failed to apply layout preset: %w", err)
		}
		logger.Debug("Layout preset applied.", "width", layout.Width, "height", layout.Height, "walls", len(layout.Walls))
	}

	logger.Info("Grid ready.", "width", width, "height", height, "frontier", cfg.Search.Frontier)
	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		controller: controller,
		ctx:        context.Background(),
		tool:       gridsearch.RoleWall,
	}, nil
}

func frontierFactory(name string) (gridsearch.FrontierFactory, error) {
	switch name {
	case "", "linear":
		return gridsearch.NewLinearFrontier, nil
	case "heap":
		return gridsearch.NewHeapFrontier, nil
	}
	return nil, fmt.Errorf("unknown frontier %q", name)
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config { return a.config }

// Controller returns the search controller.
func (a *App) Controller() *gridsearch.Controller { return a.controller }

// Tool returns the role PaintAt paints.
func (a *App) Tool() gridsearch.Role {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tool
}

// SetTool selects the role PaintAt paints.
func (a *App) SetTool(role gridsearch.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %s", gridsearch.ErrUnknownRole, role)
	}
	a.mu.Lock()
	a.tool = role
	a.mu.Unlock()
	a.logger.Debug("Paint tool selected.", "tool", role.String())
	return nil
}

// PaintAt paints the cell at p with the current tool.
func (a *App) PaintAt(p gridsearch.Position) (bool, error) {
	return a.controller.Paint(p, a.Tool())
}

// StartSearch starts a search bound to the App's lifetime rather than to the
// caller's request.
func (a *App) StartSearch() error {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	return a.controller.StartSearch(ctx)
}

// ScatterWalls paints clustered random walls, leaving the current endpoints in
// place. A zero seed draws a random one.
func (a *App) ScatterWalls(s gridsearch.Scatter, seed uint64) error {
	if seed == 0 {
		seed = rand.Uint64()
	}
	snap := a.controller.Snapshot()
	var keep []gridsearch.Position
	for _, p := range []*gridsearch.Position{snap.Start, snap.Goal} {
		if p != nil {
			keep = append(keep, *p)
		}
	}
	layout := gridsearch.ScatterWalls(snap.Width, snap.Height, s, rand.New(rand.NewPCG(seed, seed)), keep...)
	if err := a.controller.ApplyLayout(layout); err != nil {
		return fmt.Errorf("failed to scatter walls: %w", err)
	}
	a.logger.Debug("Walls scattered.", "seed", seed, "walls", len(layout.Walls))
	return nil
}
