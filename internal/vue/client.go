// Package vue provides a client for the Vue Cinemas catalog abstracted
// behind an interface for testability.
package vue

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

var (
	// ErrMissingMovieID is returned when the movie endpoint answers with an
	// object that carries no id, which means the configured movie does not exist.
	ErrMissingMovieID = errors.New("movie response has no id")

	// ErrUnexpectedStatus is returned for any non-200 catalog response.
	ErrUnexpectedStatus = errors.New("unexpected catalog status")
)

// Catalog defines the interface for reading the Vue Cinemas catalog.
type Catalog interface {
	// Movie fetches the static metadata of a movie.
	Movie(ctx context.Context, movieID int) (*domain.Movie, error)
	// Performances fetches the performance list at the given URL, as built
	// by BuildPerformancesURL.
	Performances(ctx context.Context, url string) ([]domain.Performance, error)
}
