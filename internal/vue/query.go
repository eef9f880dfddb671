package vue

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

// dateOffsetLayout is the timestamp format the performances endpoint
// expects for its dateOffset parameter.
const dateOffsetLayout = "2006-01-02 00:00:00"

// BuildPerformancesURL returns the performances query for target, using now
// as the evaluation date. The result only depends on its arguments: query
// parameters are encoded once by url.Values, which sorts them by key.
func BuildPerformancesURL(base string, target domain.WatchTarget, now time.Time) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing performances URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("performances URL must be absolute (got %q)", base)
	}

	params := u.Query()
	params.Set("movie_id", strconv.Itoa(target.MovieID))
	params.Set("filters", target.Filters)
	params.Set("cinema_ids[]", joinInts(target.CinemaIDs))
	params.Set("dateOffset", startDate(now, target.DateOffset))
	params.Set("range", strconv.Itoa(target.Range))

	u.RawQuery = params.Encode()
	return u.String(), nil
}

// startDate returns the first searched day: the calendar date of now in
// its own location, shifted by offset days.
func startDate(now time.Time, offset int) string {
	y, m, d := now.Date()
	day := time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
	return day.Format(dateOffsetLayout)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Placeholders recognised in the ticket URL template. The item/candidate
// spellings are aliases of the movie/performance ones.
var ticketPlaceholders = []struct {
	token string
	slug  bool
}{
	{token: "{movie.slug}", slug: true},
	{token: "{item.slug}", slug: true},
	{token: "{performance.id}"},
	{token: "{candidate.id}"},
}

// TicketURL fills the ticket purchase template with the movie slug and the
// performance id.
func TicketURL(template string, movie *domain.Movie, perf *domain.Performance) string {
	pairs := make([]string, 0, len(ticketPlaceholders)*2)
	for _, p := range ticketPlaceholders {
		if p.slug {
			pairs = append(pairs, p.token, url.PathEscape(movie.Slug))
		} else {
			pairs = append(pairs, p.token, url.PathEscape(perf.ID.String()))
		}
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
