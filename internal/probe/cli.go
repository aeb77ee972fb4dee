package probe

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/contribgrid/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initialises the logger. When logFile is set, output goes to
// both stdout and the file. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp() {
	os.Stdout.WriteString(`contribgrid probe
=================

Drives a running contribgrid service: waits for the model to become ready,
submits concurrent grab requests and checks that the frame loop applied them.

Usage:
  grid-probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -grabs int
        Number of grab requests to submit (default 500)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -duplicates float
        Share of grabs that reuse an earlier request ID (default 0.1)
  -seed int
        Generator seed, 0 picks one from the clock
  -timeout duration
        HTTP request timeout (default 10s)
  -ready-timeout duration
        How long to wait for the model (default 2m)
  -verify-timeout duration
        How long to wait for grabs to be applied (default 30s)
  -output string
        Write generated grabs to this JSON file
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message
`)
}
