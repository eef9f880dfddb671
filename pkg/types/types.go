// Package domain defines the core types shared by the catalog client, the
// watcher and the notifiers.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// WatchTarget describes what is being polled for. It is built once from
// configuration and never changes during a run.
type WatchTarget struct {
	MovieID   int
	CinemaIDs []int
	Filters   string
	// DateOffset is the number of days added to the evaluation date to form
	// the first day of the searched window.
	DateOffset int
	// Range is the number of days searched from the first day.
	Range int
}

// Movie is the static metadata of the watched movie, fetched once at startup.
type Movie struct {
	ID    Value  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"vue_url"`
	Image string `json:"image,omitempty"`
}

// Performance is one scheduled showing returned by the catalog.
type Performance struct {
	ID      Value  `json:"id"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Visible bool   `json:"visible"`

	// Seats
	TotalSeats    *int `json:"total_seats"`
	OccupiedSeats *int `json:"occupied_seats"`

	// Features
	HasBreak       bool `json:"has_break"`
	Has2D          bool `json:"has_2d"`
	Has3D          bool `json:"has_3d"`
	HasDBox        bool `json:"has_dbox"`
	HasXD          bool `json:"has_xd"`
	HasDolbyCinema bool `json:"has_dolbycinema"`
	HasOV          bool `json:"has_ov"`
	HasNL          bool `json:"has_nl"`

	// Pricing
	Price          Value `json:"price"`
	FullPrice      Value `json:"full_price"`
	ReservationFee Value `json:"reservation_fee"`
	TicketFee      Value `json:"ticket_fee"`
	Prices         Value `json:"prices"`

	// Descriptive
	HasRental3DGlasses Value `json:"has_rental_3d_glasses"`
	Cinema             Value `json:"cinema"`
	AuditoriumName     Value `json:"auditorium_name"`
	SpecialCategory    Value `json:"special_category"`
	VariantName        Value `json:"variant_name"`
	VariantSlug        Value `json:"variant_slug"`
}

// AvailableSeats returns total minus occupied seats. ok is false when either
// count is missing.
func (p *Performance) AvailableSeats() (n int, ok bool) {
	if p.TotalSeats == nil || p.OccupiedSeats == nil {
		return 0, false
	}
	return *p.TotalSeats - *p.OccupiedSeats, true
}

// HasSchedule reports whether the performance carries a start or end time.
func (p *Performance) HasSchedule() bool {
	return p.Start != "" || p.End != ""
}

// Value is a JSON scalar whose type the catalog does not keep stable: the
// same field can arrive as a number, a string, null or a nested document.
// A null or absent field leaves the Value unset.
type Value struct {
	text string
	set  bool
}

// NewValue returns a set Value holding s.
func NewValue(s string) Value {
	return Value{text: s, set: true}
}

// IntValue returns a set Value holding n.
func IntValue(n int) Value {
	return Value{text: strconv.Itoa(n), set: true}
}

// IsSet reports whether the field was present and non-null.
func (v Value) IsSet() bool {
	return v.set
}

// String returns the printable form: strings unquoted, everything else as
// compact JSON.
func (v Value) String() string {
	return v.text
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewValue(s)
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*v = NewValue(buf.String())
	return nil
}

// MarshalJSON implements json.Marshaler. Values that look like JSON
// literals are written raw; everything else is written as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	if json.Valid([]byte(v.text)) && !isBareString(v.text) {
		return []byte(v.text), nil
	}
	return json.Marshal(v.text)
}

func isBareString(s string) bool {
	return len(s) > 0 && s[0] == '"'
}
