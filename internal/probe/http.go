package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/okian/contribgrid/internal/domain/model"
	"github.com/okian/contribgrid/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Get performs a GET request and returns the status and body.
func (c *HTTPClient) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

type grabBody struct {
	RequestID   string     `json:"request_id"`
	Position    model.Vec3 `json:"position"`
	Orientation model.Quat `json:"orientation"`
}

// submitGrabs posts grabs with at most cfg.Workers in flight and returns
// the set of days that had at least one accepted grab.
func submitGrabs(ctx context.Context, cfg *Config, client *HTTPClient, grabs []Grab, stats *Stats) (map[int]struct{}, error) {
	log := logger.Get()
	log.Info(ctx, "submitting grabs",
		logger.Int("grabs", len(grabs)),
		logger.Int("workers", cfg.Workers),
	)

	var (
		submitted, accepted, duplicate, backpressure, failed atomic.Int64

		mu   sync.Mutex
		days = make(map[int]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, grab := range grabs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := submitSingleGrab(gctx, client, grab)
			submitted.Add(1)
			switch outcome {
			case outcomeAccepted:
				accepted.Add(1)
				mu.Lock()
				days[grab.DayIndex] = struct{}{}
				mu.Unlock()
			case outcomeDuplicate:
				duplicate.Add(1)
			case outcomeBackpressure:
				backpressure.Add(1)
			default:
				failed.Add(1)
			}
			if cfg.Verbose {
				log.Debug(gctx, "grab submitted",
					logger.String("requestID", grab.RequestID),
					logger.Int("day", grab.DayIndex),
					logger.String("outcome", outcome),
				)
			}
			return nil
		})
	}
	err := g.Wait()

	stats.GrabsSubmitted = int(submitted.Load())
	stats.GrabsAccepted = int(accepted.Load())
	stats.GrabsDuplicate = int(duplicate.Load())
	stats.GrabsBackpressure = int(backpressure.Load())
	stats.GrabsFailed = int(failed.Load())

	log.Info(ctx, "grab submission completed",
		logger.Int("accepted", stats.GrabsAccepted),
		logger.Int("duplicate", stats.GrabsDuplicate),
		logger.Int("backpressure", stats.GrabsBackpressure),
		logger.Int("failed", stats.GrabsFailed),
		logger.Int("days", len(days)),
	)
	return days, err
}

// submitSingleGrab submits one grab and classifies the response.
func submitSingleGrab(ctx context.Context, client *HTTPClient, grab Grab) string {
	path := fmt.Sprintf("/cells/%d/grab", grab.DayIndex)
	status, body, err := client.Post(ctx, path, grabBody{
		RequestID:   grab.RequestID,
		Position:    grab.Position,
		Orientation: grab.Orientation,
	})
	if err != nil {
		return outcomeFailed
	}

	switch status {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		if gjson.GetBytes(body, "duplicate").Bool() {
			return outcomeDuplicate
		}
		return outcomeFailed
	case http.StatusTooManyRequests:
		return outcomeBackpressure
	default:
		logger.Get().Debug(ctx, "grab rejected",
			logger.Int("status", status),
			logger.String("body", snippet(body)),
		)
		return outcomeFailed
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet]
	}
	return s
}
