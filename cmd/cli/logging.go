package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/log/sinks"
	"github.com/rs/zerolog"
)

// Globals are the flags shared by every command.
type Globals struct {
	Verbose bool   `help:"Log debug output and show playwright driver output." env:"ROWPILOT_VERBOSE"`
	LogDir  string `help:"Directory run logs are written to." default:".rowpilot/logs" env:"ROWPILOT_LOG_DIR"`

	// EnvErr is set by main when .env could not be loaded.
	EnvErr error `kong:"-"`
}

type cmdLogging struct {
	Logger  *log.ZerologAdapter
	Router  *log.Router
	LogFile string
}

// setupLogging routes a zerolog logger to the console and, when runID is
// set, to <log-dir>/<runID>.json.
func (g *Globals) setupLogging(runID string) (*cmdLogging, error) {
	router := log.NewRouter(sinks.NewConsoleSink())

	var logFile string
	if runID != "" {
		logFile = filepath.Join(g.LogDir, fmt.Sprintf("%s.json", runID))
		fileSink, err := sinks.NewFileSink(logFile)
		if err != nil {
			return nil, fmt.Errorf("creating file log sink: %w", err)
		}
		router.AddSink(fileSink)
	}

	level := zerolog.InfoLevel
	if g.Verbose {
		level = zerolog.DebugLevel
	}
	logger := log.New(router, level)

	if g.EnvErr != nil {
		logger.Debug().Err(g.EnvErr).Msg("No .env file loaded, relying on existing ENV")
	}
	return &cmdLogging{Logger: logger, Router: router, LogFile: logFile}, nil
}

func (c *cmdLogging) Close() {
	if err := c.Router.Close(); err != nil {
		fmt.Printf("Error during log shutdown: %v\n", err)
	}
}
