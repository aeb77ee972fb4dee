package service

import (
	"fmt"
	"strings"

	"github.com/okian/contribgrid/internal/adapters/source"
	"github.com/okian/contribgrid/internal/adapters/source/github"
	"github.com/okian/contribgrid/internal/adapters/source/synthetic"
	"github.com/okian/contribgrid/internal/config"
	"github.com/okian/contribgrid/internal/domain/layout"
)

// SourceFromConfig builds the contribution source selected by cfg.
func SourceFromConfig(cfg *config.Config) (source.Source, error) {
	switch strings.ToLower(cfg.Source) {
	case config.SourceGitHub:
		return github.New(cfg.GitHubLogin,
			github.WithEndpoint(cfg.GitHubEndpoint),
			github.WithToken(cfg.GitHubToken),
		), nil
	case config.SourceSynthetic:
		start, err := cfg.StartDate()
		if err != nil {
			return nil, err
		}
		opts := []synthetic.Option{
			synthetic.WithStartDate(start),
			synthetic.WithWeeks(cfg.SyntheticWeeks),
			synthetic.WithCountRange(cfg.SyntheticMinCount, cfg.SyntheticMaxCount),
		}
		if cfg.SyntheticSeed != 0 {
			opts = append(opts, synthetic.WithSeed(cfg.SyntheticSeed))
		}
		return synthetic.New(opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalidConfig, cfg.Source)
	}
}

// OptionsFromConfig maps cfg onto service options.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	src, err := SourceFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithSource(src),
		WithQueueSize(cfg.InputQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithMaxGrabsPerFrame(cfg.MaxGrabsPerFrame),
		WithFrameRate(cfg.FrameRate),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithLayout(
			layout.WithUnitHeight(cfg.UnitHeight),
			layout.WithColumnSpacing(cfg.ColumnSpacing),
			layout.WithRowSpacing(cfg.RowSpacing),
		),
	}, nil
}
