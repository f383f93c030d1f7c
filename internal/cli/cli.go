package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdrpinto/gridsearch/internal/config"
)

// ConfigPathEnv names the environment variable consulted when -config is absent.
const ConfigPathEnv = "CONFIG_PATH"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments for the program called name. It
// returns the loaded configuration, a boolean indicating if the program should
// exit cleanly, or an ExitError.
func Parse(name string, args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprintf(output, `
%s - step-by-step A* search over a paintable grid.

Usage:
  %s [options]

The configuration file is taken from -config, then $%s. Without either the
built-in defaults are used.

Options:
`, name, name, ConfigPathEnv)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the YAML configuration file.")
	cFlag := flagSet.String("c", "", "Path to the YAML configuration file (shorthand).")
	hostFlag := flagSet.String("host", "", "Address to listen on.")
	portFlag := flagSet.Int("port", 0, "Port to listen on.")
	widthFlag := flagSet.Int("width", 0, "Grid width in cells.")
	heightFlag := flagSet.Int("height", 0, "Grid height in cells.")
	frontierFlag := flagSet.String("frontier", "", "Frontier implementation. Options: 'linear' or 'heap'.")
	turboFlag := flagSet.Bool("turbo", false, "Run searches without a step delay.")
	stepDelayFlag := flagSet.Duration("step-delay", 0, "Delay between search iterations, e.g. 20ms.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", flagSet.Arg(0))}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *configFlag
	if path == "" {
		path = *cFlag
	}
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	slog.Debug("Config path determined.", "path", path)

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
	}

	set := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["host"] {
		cfg.Server.Host = *hostFlag
	}
	if set["port"] {
		cfg.Server.Port = *portFlag
	}
	if set["width"] {
		cfg.Grid.Width = *widthFlag
	}
	if set["height"] {
		cfg.Grid.Height = *heightFlag
	}
	if set["frontier"] {
		cfg.Search.Frontier = strings.ToLower(*frontierFlag)
	}
	if set["turbo"] {
		cfg.Search.Turbo = *turboFlag
	}
	if set["step-delay"] {
		cfg.Search.StepDelay = *stepDelayFlag
	}
	if set["log-format"] {
		cfg.Log.Format = strings.ToLower(*logFormatFlag)
	}
	if set["log-level"] {
		cfg.Log.Level = strings.ToLower(*logLevelFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
