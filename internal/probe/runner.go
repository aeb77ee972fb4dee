// Package probe drives a running grid service end to end: it waits for the
// model, submits concurrent grabs and checks that the frame loop applied
// them.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/contribgrid/pkg/logger"
)

const directoryPermission = 0o750

// Run executes the complete probe and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting contribgrid probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("grabs", cfg.NumGrabs),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Float64("duplicateRatio", cfg.DuplicateRatio),
	)

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Wait for the population pass
	st, err := waitReady(ctx, cfg, client)
	if err != nil {
		return stats, err
	}
	stats.CellCount = st.CellCount
	if st.CellCount == 0 {
		log.Warn(ctx, "model is ready but empty; nothing to grab")
		return finish(stats), nil
	}

	// Step 3: Generate and submit grabs
	grabs := generateGrabs(ctx, cfg, st.CellCount, stats)
	days, err := submitGrabs(ctx, cfg, client, grabs, stats)
	if err != nil {
		return stats, fmt.Errorf("grab submission failed: %w", err)
	}

	// Step 4: Verify the frame loop applied them
	if err := verifyMoved(ctx, cfg, client, days, stats); err != nil {
		return stats, err
	}

	// Step 5: Save grabs to file
	if cfg.OutputFile != "" {
		if err := saveGrabsToFile(ctx, cfg.OutputFile, grabs); err != nil {
			log.Warn(ctx, "failed to save grabs to file", logger.Error(err))
		}
	}

	displayFinalStats(ctx, finish(stats))
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

func finish(stats *Stats) *Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Any 200 is healthy; the body is the Prometheus exposition.
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveGrabsToFile writes the generated grabs as a JSON array.
func saveGrabsToFile(ctx context.Context, filename string, grabs []Grab) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(grabs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal grabs: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "grabs saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, grabsPerSecond float64
	if stats.GrabsSubmitted > 0 {
		acceptRate = float64(stats.GrabsAccepted) / float64(stats.GrabsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		grabsPerSecond = float64(stats.GrabsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("cells", stats.CellCount),
		logger.Int("grabsGenerated", stats.GrabsGenerated),
		logger.Int("grabsSubmitted", stats.GrabsSubmitted),
		logger.Int("grabsAccepted", stats.GrabsAccepted),
		logger.Int("grabsDuplicate", stats.GrabsDuplicate),
		logger.Int("grabsBackpressure", stats.GrabsBackpressure),
		logger.Int("grabsFailed", stats.GrabsFailed),
		logger.Int("daysVerified", stats.DaysVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("grabsPerSecond", grabsPerSecond),
	)
}
