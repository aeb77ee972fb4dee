// Package synthetic generates a fake contribution year for demos and tests.
package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/contribgrid/internal/adapters/source"
	"github.com/okian/contribgrid/internal/domain/model"
)

// Default generator parameters.
const (
	DefaultWeeks    = 52
	DefaultMinCount = -30
	DefaultMaxCount = 60 // exclusive
	defaultLogin    = "synthetic"
)

// DefaultStart is the first generated date.
var DefaultStart = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // value constant

// Sampler returns the next contribution count.
type Sampler func() int

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithStartDate sets the first generated date. Only the calendar date is kept.
func WithStartDate(t time.Time) Option {
	return func(s *Source) {
		if !t.IsZero() {
			s.start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
}

// WithWeeks sets how many full weeks are generated.
func WithWeeks(n int) Option {
	return func(s *Source) {
		if n >= 0 {
			s.weeks = n
		}
	}
}

// WithCountRange sets the closed-open range counts are drawn from.
func WithCountRange(lo, hi int) Option {
	return func(s *Source) {
		if hi > lo {
			s.lo, s.hi = lo, hi
		}
	}
}

// WithSeed makes generation deterministic. Each Fetch restarts from the seed.
func WithSeed(seed int64) Option {
	return func(s *Source) {
		s.seed = seed
		s.seeded = true
	}
}

// WithSampler replaces random counts with sampler, for scripted sequences.
func WithSampler(sampler Sampler) Option {
	return func(s *Source) {
		s.sampler = sampler
	}
}

// WithLogin sets the login reported in the calendar.
func WithLogin(login string) Option {
	return func(s *Source) {
		if login != "" {
			s.login = login
		}
	}
}

// Source implements source.Source with generated data.
type Source struct {
	start   time.Time
	weeks   int
	lo, hi  int
	seed    int64
	seeded  bool
	sampler Sampler
	login   string
}

var _ source.Source = (*Source)(nil)

// New creates a generator with default parameters.
func New(opts ...Option) *Source {
	s := &Source{
		start: DefaultStart,
		weeks: DefaultWeeks,
		lo:    DefaultMinCount,
		hi:    DefaultMaxCount,
		login: defaultLogin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements source.Source.
func (s *Source) Name() string { return source.NameSynthetic }

// Fetch implements source.Source.
func (s *Source) Fetch(ctx context.Context) (model.Calendar, error) {
	if err := ctx.Err(); err != nil {
		return model.Calendar{}, fmt.Errorf("%w: %w", source.ErrFetch, err)
	}

	next := s.sampler
	if next == nil {
		seed := s.seed
		if !s.seeded {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not security sensitive
		span := s.hi - s.lo
		next = func() int { return s.lo + rng.Intn(span) }
	}

	cal := model.Calendar{Login: s.login, Name: s.login, Weeks: make([]model.Week, 0, s.weeks)}
	date := s.start
	for w := 0; w < s.weeks; w++ {
		week := model.Week{FirstDay: date, Days: make([]model.ContributionDay, 0, model.DaysPerWeek)}
		for d := 0; d < model.DaysPerWeek; d++ {
			count := next()
			week.Days = append(week.Days, model.ContributionDay{
				Date:              date,
				Weekday:           int(date.Weekday()),
				ContributionCount: count,
			})
			cal.TotalContributions += max(count, 0)
			date = date.AddDate(0, 0, 1)
		}
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal, nil
}

// Script returns a sampler that yields counts in order and then repeats the
// last one.
func Script(counts ...int) Sampler {
	i := 0
	return func() int {
		if len(counts) == 0 {
			return 0
		}
		c := counts[min(i, len(counts)-1)]
		i++
		return c
	}
}
