package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/contribgrid/internal/probe"
)

// Default configuration constants.
const (
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numGrabs      = flag.Int("grabs", probe.DefaultNumGrabs, "Number of grab requests to submit")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		duplicates    = flag.Float64("duplicates", probe.DefaultDuplicateRatio, "Share of grabs that reuse an earlier request ID")
		seed          = flag.Int64("seed", 0, "Generator seed, 0 picks one from the clock")
		timeout       = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		readyTimeout  = flag.Duration("ready-timeout", probe.DefaultReadyTimeout, "How long to wait for the model")
		verifyTimeout = flag.Duration("verify-timeout", probe.DefaultVerifyTimeout, "How long to wait for grabs to be applied")
		outputFile    = flag.String("output", "", "Write generated grabs to this JSON file")
		logFile       = flag.String("log", "", "Also write logs to this file")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	closer, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)

	_, err = probe.Run(ctx, &probe.Config{
		BaseURL:        *baseURL,
		NumGrabs:       *numGrabs,
		Workers:        *workers,
		Timeout:        *timeout,
		ReadyTimeout:   *readyTimeout,
		VerifyTimeout:  *verifyTimeout,
		DuplicateRatio: *duplicates,
		Seed:           *seed,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	})
	cancel()
	stop()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
