package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/ticket-watcher/internal/notify"
	domain "github.com/donaldgifford/ticket-watcher/pkg/types"
)

func intPtr(n int) *int { return &n }

func testPayloadConfig() PayloadConfig {
	return PayloadConfig{
		TicketURLTemplate: "https://www.vuecinemas.nl/kopen/{movie.slug}/{performance.id}",
		Sound:             "cosmic",
		FailureSound:      "siren",
		Priority:          1,
		Expire:            60,
		Retry:             30,
		AttachImage:       true,
	}
}

func testMovie() *domain.Movie {
	return &domain.Movie{
		ID:    domain.IntValue(43871),
		Title: "Oppenheimer",
		Slug:  "oppenheimer",
		URL:   "https://www.vuecinemas.nl/films/oppenheimer",
		Image: "https://cdn.example.com/oppenheimer.jpg",
	}
}

var testNow = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func TestBuildSuccessPayload(t *testing.T) {
	t.Parallel()

	cfg := testPayloadConfig()
	perf := domain.Performance{
		ID:            domain.IntValue(2),
		Start:         "2024-01-01T10:00",
		End:           "2024-01-01T12:00",
		Visible:       true,
		TotalSeats:    intPtr(100),
		OccupiedSeats: intPtr(40),
	}

	p := BuildSuccessPayload(&cfg, testMovie(), &perf, testNow)

	assert.Equal(t, notify.KindSuccess, p.Kind)
	assert.Equal(t, "Tickets available!", p.Title)
	assert.Equal(t, "https://www.vuecinemas.nl/films/oppenheimer", p.URL)
	assert.Equal(t, "Oppenheimer (Movie page)", p.URLTitle)
	assert.Equal(t, "https://cdn.example.com/oppenheimer.jpg", p.ImageURL)
	assert.Equal(t, testNow, p.Timestamp)
	assert.Equal(t, "cosmic", p.Sound)
	assert.Equal(t, 1, p.Priority)
	assert.Equal(t, 60, p.Expire)
	assert.Equal(t, 30, p.Retry)

	want := "Oppenheimer has tickets available on 2024-01-01T10:00!\n\n" +
		"[Buy tickets](https://www.vuecinemas.nl/kopen/oppenheimer/2)\n\n" +
		"```\n" +
		"occupied seats: 40\n" +
		"total seats: 100\n" +
		"available seats: 60\n" +
		"Has a break: false\n" +
		"```"
	assert.Equal(t, want, p.Body)
}

func TestBuildSuccessPayload_InvisibleLabel(t *testing.T) {
	t.Parallel()

	cfg := testPayloadConfig()
	perf := domain.Performance{ID: domain.IntValue(7), Start: "2024-01-01T10:00"}

	p := BuildSuccessPayload(&cfg, testMovie(), &perf, testNow)
	assert.Contains(t, p.Body,
		"[Buy tickets (invisible performance, might result in error)](https://www.vuecinemas.nl/kopen/oppenheimer/7)")
}

func TestBuildSuccessPayload_NoImageWhenDisabled(t *testing.T) {
	t.Parallel()

	cfg := testPayloadConfig()
	cfg.AttachImage = false
	perf := domain.Performance{ID: domain.IntValue(2), Start: "x", Visible: true}

	p := BuildSuccessPayload(&cfg, testMovie(), &perf, testNow)
	assert.Empty(t, p.ImageURL)
}

func TestBuildSuccessPayload_NoMoviePage(t *testing.T) {
	t.Parallel()

	cfg := testPayloadConfig()
	movie := testMovie()
	movie.URL = ""
	perf := domain.Performance{ID: domain.IntValue(2), Start: "x", Visible: true}

	p := BuildSuccessPayload(&cfg, movie, &perf, testNow)
	assert.Empty(t, p.URL)
	assert.Empty(t, p.URLTitle)
}

func TestBuildFailurePayload(t *testing.T) {
	t.Parallel()

	cfg := testPayloadConfig()
	p := BuildFailurePayload(&cfg, testNow)

	assert.Equal(t, notify.KindFailure, p.Kind)
	assert.Equal(t, "Error!", p.Title)
	assert.Equal(t, "An error has occurred, check your console for more information.", p.Body)
	assert.Equal(t, "siren", p.Sound)
	assert.Equal(t, 1, p.Priority)
	assert.Equal(t, 60, p.Expire)
	assert.Equal(t, 30, p.Retry)
	assert.Equal(t, testNow, p.Timestamp)
	assert.Empty(t, p.URL)
	assert.Empty(t, p.ImageURL)
}

func TestPerformanceDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		perf domain.Performance
		want string
	}{
		{
			name: "bare performance",
			perf: domain.Performance{},
			want: "Has a break: false\n",
		},
		{
			name: "only total seats",
			perf: domain.Performance{TotalSeats: intPtr(80)},
			want: "total seats: 80\nHas a break: false\n",
		},
		{
			name: "features only when true",
			perf: domain.Performance{
				HasBreak:       true,
				Has2D:          true,
				Has3D:          false,
				HasDolbyCinema: true,
				HasOV:          true,
			},
			want: "Has a break: true\n" +
				"Has 2D: true\n" +
				"Has Dolby Cinema: true\n" +
				"OV: true\n",
		},
		{
			name: "present values in fixed order",
			perf: domain.Performance{
				Prices:         domain.NewValue(`[{"name":"adult","price":1250}]`),
				Price:          domain.NewValue("12.50"),
				TicketFee:      domain.IntValue(0),
				Cinema:         domain.NewValue("Vue Amsterdam"),
				AuditoriumName: domain.NewValue("Zaal 1"),
				VariantSlug:    domain.NewValue("imax"),
			},
			want: "Has a break: false\n" +
				"Price: 12.50\n" +
				"Ticket Fee: 0\n" +
				"Cinema: Vue Amsterdam\n" +
				"Auditorium Name: Zaal 1\n" +
				"Variant Slug: imax\n" +
				`Prices: [{"name":"adult","price":1250}]` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PerformanceDetails(&tt.perf))
		})
	}
}
