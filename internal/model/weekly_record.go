package model

import (
	"fmt"
	"time"

	"github.com/pcrawford/timeclock/internal/week"
)

// Date is a calendar date serialized as YYYY-MM-DD, without a time
// component. Week anchors are dates, not instants.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return fmt.Errorf("parse date %s: %w", b, err)
	}
	d.Time = t
	return nil
}

// WeeklyRecord is one user's time data for one calendar week. At most
// one record exists per (user_id, week_start) pair; week_start is always
// a Monday.
type WeeklyRecord struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	WeekStart Date         `json:"week_start"`
	Payload   week.Payload `json:"week_data"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
