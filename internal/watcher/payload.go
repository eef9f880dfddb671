package watcher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/ticket-watcher/internal/notify"
	"github.com/donaldgifford/ticket-watcher/internal/vue"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

const (
	successTitle = "Tickets available!"
	failureTitle = "Error!"
	failureBody  = "An error has occurred, check your console for more information."

	buyLabel       = "Buy tickets"
	invisibleLabel = " (invisible performance, might result in error)"
)

// PayloadConfig holds the delivery parameters and the ticket link template
// used to build notification payloads.
type PayloadConfig struct {
	TicketURLTemplate string
	Sound             string
	FailureSound      string
	Priority          int
	Expire            int
	Retry             int
	AttachImage       bool
}

// BuildSuccessPayload builds the notification for a qualified performance.
func BuildSuccessPayload(
	cfg *PayloadConfig,
	movie *domain.Movie,
	perf *domain.Performance,
	now time.Time,
) notify.Payload {
	label := buyLabel
	if !perf.Visible {
		label += invisibleLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has tickets available on %s!\n\n", movie.Title, perf.Start)
	fmt.Fprintf(&b, "[%s](%s)\n\n", label, vue.TicketURL(cfg.TicketURLTemplate, movie, perf))
	b.WriteString("```\n")
	b.WriteString(PerformanceDetails(perf))
	b.WriteString("```")

	p := notify.Payload{
		Kind:      notify.KindSuccess,
		Title:     successTitle,
		Body:      b.String(),
		URL:       movie.URL,
		Timestamp: now,
		Sound:     cfg.Sound,
		Priority:  cfg.Priority,
		Expire:    cfg.Expire,
		Retry:     cfg.Retry,
	}
	if movie.URL != "" {
		p.URLTitle = movie.Title + " (Movie page)"
	}
	if cfg.AttachImage {
		p.ImageURL = movie.Image
	}
	return p
}

// BuildFailurePayload builds the fixed alert sent when a run fails.
func BuildFailurePayload(cfg *PayloadConfig, now time.Time) notify.Payload {
	return notify.Payload{
		Kind:      notify.KindFailure,
		Title:     failureTitle,
		Body:      failureBody,
		Timestamp: now,
		Sound:     cfg.FailureSound,
		Priority:  cfg.Priority,
		Expire:    cfg.Expire,
		Retry:     cfg.Retry,
	}
}

// PerformanceDetails renders one line per attribute present on perf. Seat
// lines need the seat counts; feature lines are written only when true.
func PerformanceDetails(perf *domain.Performance) string {
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	if perf.OccupiedSeats != nil {
		line("occupied seats", strconv.Itoa(*perf.OccupiedSeats))
	}
	if perf.TotalSeats != nil {
		line("total seats", strconv.Itoa(*perf.TotalSeats))
	}
	if n, ok := perf.AvailableSeats(); ok {
		line("available seats", strconv.Itoa(n))
	}
	line("Has a break", strconv.FormatBool(perf.HasBreak))

	for _, f := range []struct {
		label string
		on    bool
	}{
		{"Has 2D", perf.Has2D},
		{"Has 3D", perf.Has3D},
		{"Has DBOX", perf.HasDBox},
		{"Has XD", perf.HasXD},
		{"Has Dolby Cinema", perf.HasDolbyCinema},
		{"OV", perf.HasOV},
		{"NL", perf.HasNL},
	} {
		if f.on {
			line(f.label, "true")
		}
	}

	for _, v := range []struct {
		label string
		value domain.Value
	}{
		{"Price", perf.Price},
		{"Full Price", perf.FullPrice},
		{"Reservation Fee", perf.ReservationFee},
		{"Ticket Fee", perf.TicketFee},
		{"Has Rental 3D Glasses", perf.HasRental3DGlasses},
		{"Cinema", perf.Cinema},
		{"Auditorium Name", perf.AuditoriumName},
		{"Special Category", perf.SpecialCategory},
		{"Variant Name", perf.VariantName},
		{"Variant Slug", perf.VariantSlug},
		{"Prices", perf.Prices},
	} {
		if v.value.IsSet() {
			line(v.label, v.value.String())
		}
	}

	return b.String()
}
