// Package github fetches a user's contribution calendar from the GitHub
// GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/okian/contribgrid/internal/adapters/source"
	"github.com/okian/contribgrid/internal/domain/model"
)

// Default client configuration constants.
const (
	DefaultEndpoint  = "https://api.github.com/graphql"
	defaultUserAgent = "contribgrid"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

// Failure kinds, each wrapped together with source.ErrFetch.
var (
	ErrRequest      = errors.New("request failed")
	ErrStatus       = errors.New("unexpected status")
	ErrGraphQL      = errors.New("graphql error")
	ErrUserNotFound = errors.New("user not found")
	ErrMalformed    = errors.New("malformed response")
)

const calendarQuery = `query($login: String!) {
  user(login: $login) {
    name
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          firstDay
          contributionDays {
            contributionCount
            date
            weekday
          }
        }
      }
    }
  }
}`

const calendarPath = "data.user.contributionsCollection.contributionCalendar"

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client implements source.Source against the GitHub GraphQL API.
type Client struct {
	login     string
	endpoint  string
	token     string
	userAgent string
	http      *http.Client
}

var _ source.Source = (*Client)(nil)

// New creates a client for login's calendar.
func New(login string, opts ...Option) *Client {
	c := &Client{
		login:     login,
		endpoint:  DefaultEndpoint,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements source.Source.
func (c *Client) Name() string { return source.NameGitHub }

// Fetch implements source.Source.
func (c *Client) Fetch(ctx context.Context) (model.Calendar, error) {
	body, err := c.post(ctx)
	if err != nil {
		return model.Calendar{}, fmt.Errorf("%w: %w", source.ErrFetch, err)
	}
	cal, err := parseCalendar(c.login, body)
	if err != nil {
		return model.Calendar{}, fmt.Errorf("%w: %w", source.ErrFetch, err)
	}
	return cal, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func (c *Client) post(ctx context.Context) ([]byte, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query:     calendarQuery,
		Variables: map[string]any{"login": c.login},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, snippet)
	}
	return body, nil
}

// parseCalendar extracts the calendar from a GraphQL response body.
func parseCalendar(login string, body []byte) (model.Calendar, error) {
	if !gjson.ValidBytes(body) {
		return model.Calendar{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.ParseBytes(body)

	if errs := doc.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		msgs := make([]string, 0, len(errs.Array()))
		for _, e := range errs.Array() {
			msgs = append(msgs, e.Get("message").String())
		}
		return model.Calendar{}, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	user := doc.Get("data.user")
	if !user.Exists() || user.Type == gjson.Null {
		return model.Calendar{}, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}

	calendar := doc.Get(calendarPath)
	weeks := calendar.Get("weeks")
	if !weeks.IsArray() {
		return model.Calendar{}, fmt.Errorf("%w: missing weeks", ErrMalformed)
	}

	cal := model.Calendar{
		Login:              login,
		Name:               user.Get("name").String(),
		TotalContributions: int(calendar.Get("totalContributions").Int()),
	}
	for wi, w := range weeks.Array() {
		week := model.Week{}
		if fd := w.Get("firstDay").String(); fd != "" {
			t, err := time.Parse(model.DateLayout, fd)
			if err != nil {
				return model.Calendar{}, fmt.Errorf("%w: week %d first day %q", ErrMalformed, wi, fd)
			}
			week.FirstDay = t
		}
		for di, d := range w.Get("contributionDays").Array() {
			date, err := time.Parse(model.DateLayout, d.Get("date").String())
			if err != nil {
				return model.Calendar{}, fmt.Errorf("%w: week %d day %d date %q", ErrMalformed, wi, di, d.Get("date").String())
			}
			weekday := int(d.Get("weekday").Int())
			if weekday < 0 || weekday > 6 {
				return model.Calendar{}, fmt.Errorf("%w: week %d day %d weekday %d", ErrMalformed, wi, di, weekday)
			}
			week.Days = append(week.Days, model.ContributionDay{
				Date:              date,
				Weekday:           weekday,
				ContributionCount: int(d.Get("contributionCount").Int()),
			})
		}
		if len(week.Days) > model.DaysPerWeek {
			return model.Calendar{}, fmt.Errorf("%w: week %d has %d days", ErrMalformed, wi, len(week.Days))
		}
		if week.FirstDay.IsZero() && len(week.Days) > 0 {
			week.FirstDay = week.Days[0].Date
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal, nil
}
