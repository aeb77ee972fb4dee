// Package source defines the contract for producing contribution calendars.
package source

import (
	"context"
	"errors"

	"github.com/okian/contribgrid/internal/domain/model"
)

// Source names accepted by configuration.
const (
	NameSynthetic = "synthetic"
	NameGitHub    = "github"
)

// ErrFetch wraps every failure a source reports. Callers check it with
// errors.Is; the wrapped chain carries the specific kind.
var ErrFetch = errors.New("fetch contributions")

// Source produces an ordered calendar of weeks. On error the returned
// calendar is the zero value; partial results are never returned.
type Source interface {
	Fetch(ctx context.Context) (model.Calendar, error)
	Name() string
}
