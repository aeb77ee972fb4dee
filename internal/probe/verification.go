package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
)

// modelState is the parsed header of GET /model.
type modelState struct {
	State     string
	Error     string
	CellCount int
	Frame     uint64
}

func parseModelState(body []byte) (modelState, error) {
	if !gjson.ValidBytes(body) {
		return modelState{}, fmt.Errorf("%w: model is not json", ErrBadResponse)
	}
	doc := gjson.ParseBytes(body)
	st := doc.Get("state")
	if !st.Exists() {
		return modelState{}, fmt.Errorf("%w: model has no state", ErrBadResponse)
	}
	return modelState{
		State:     st.String(),
		Error:     doc.Get("error").String(),
		CellCount: int(doc.Get("cell_count").Int()),
		Frame:     doc.Get("frame").Uint(),
	}, nil
}

// waitReady polls GET /model until the model is ready, fails or the ready
// timeout elapses.
func waitReady(ctx context.Context, cfg *Config, client *HTTPClient) (modelState, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := ""
	for {
		status, body, err := client.Get(ctx, "/model?cells=false")
		if err == nil && status == http.StatusOK {
			st, perr := parseModelState(body)
			if perr != nil {
				return modelState{}, perr
			}
			if st.State != last {
				log.Info(ctx, "model state", logger.String("state", st.State), logger.Uint64("frame", st.Frame))
				last = st.State
			}
			switch st.State {
			case model.StateReady.String():
				return st, nil
			case model.StateFailed.String():
				return st, fmt.Errorf("%w: %s", ErrModelFailed, st.Error)
			}
		}

		select {
		case <-ctx.Done():
			return modelState{}, fmt.Errorf("%w: last state %q", ErrNotReady, last)
		case <-ticker.C:
		}
	}
}

// verifyMoved polls GET /model until every day in days reports moved.
func verifyMoved(ctx context.Context, cfg *Config, client *HTTPClient, days map[int]struct{}, stats *Stats) error {
	log := logger.Get()
	if len(days) == 0 {
		log.Warn(ctx, "no accepted grabs to verify")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.VerifyTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	missing := len(days)
	for {
		status, body, err := client.Get(ctx, "/model")
		if err == nil && status == http.StatusOK {
			moved := make(map[int]struct{})
			for _, d := range gjson.GetBytes(body, "cells.#(moved==true)#.day_index").Array() {
				moved[int(d.Int())] = struct{}{}
			}
			missing = 0
			for day := range days {
				if _, ok := moved[day]; !ok {
					missing++
				}
			}
			stats.DaysVerified = len(days) - missing
			if missing == 0 {
				log.Info(ctx, "all grabbed days moved", logger.Int("days", len(days)))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d of %d days still in place", ErrNotApplied, missing, len(days))
		case <-ticker.C:
		}
	}
}
