package probe

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
)

// Bounds of generated positions, in meters around the grid.
const (
	positionSpanX = 6.0
	positionSpanY = 1.0
	positionSpanZ = 1.0
)

// generateGrabs builds n grab requests for days in [1, cellCount]. A share
// of them reuse an earlier request ID so the service's dedupe is exercised.
func generateGrabs(ctx context.Context, cfg *Config, cellCount int, stats *Stats) []Grab {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // load generation, not security sensitive

	grabs := make([]Grab, 0, cfg.NumGrabs)
	for i := 0; i < cfg.NumGrabs; i++ {
		if len(grabs) > 0 && rng.Float64() < cfg.DuplicateRatio {
			grabs = append(grabs, grabs[rng.Intn(len(grabs))])
			continue
		}
		grabs = append(grabs, Grab{
			RequestID: uuid.NewString(),
			DayIndex:  1 + rng.Intn(cellCount),
			Position: model.Vec3{
				X: rng.Float64() * positionSpanX,
				Y: rng.Float64() * positionSpanY,
				Z: rng.Float64() * positionSpanZ,
			},
			Orientation: randomOrientation(rng),
		})
	}

	stats.GrabsGenerated = len(grabs)
	logger.Get().Info(ctx, "grabs generated",
		logger.Int("grabs", len(grabs)),
		logger.Int64("seed", seed),
	)
	return grabs
}

// randomOrientation returns a rotation about Y; never the zero quaternion.
func randomOrientation(rng *rand.Rand) model.Quat {
	if rng.Intn(2) == 0 {
		return model.Identity
	}
	// sin/cos of half a quarter turn
	return model.Quat{Y: 0.7071067811865476, W: 0.7071067811865476}
}
