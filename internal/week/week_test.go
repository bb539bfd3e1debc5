package week

import (
	"encoding/json"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMondayMidweek(t *testing.T) {
	// Wednesday 2024-06-12 resolves to Monday 2024-06-10
	got := Monday(date(2024, time.June, 12))
	want := date(2024, time.June, 10)
	if !got.Equal(want) {
		t.Errorf("Monday(2024-06-12) = %v, want %v", got, want)
	}
}

func TestMondayOnMonday(t *testing.T) {
	d := date(2024, time.June, 10)
	got := Monday(d)
	if !got.Equal(d) {
		t.Errorf("Monday of a Monday = %v, want %v", got, d)
	}
}

func TestMondayOnSunday(t *testing.T) {
	// Sunday belongs to the week that started 6 days earlier
	got := Monday(date(2024, time.June, 16))
	want := date(2024, time.June, 10)
	if !got.Equal(want) {
		t.Errorf("Monday(2024-06-16) = %v, want %v", got, want)
	}
}

func TestMondayIdempotent(t *testing.T) {
	// Walk a full year of dates; resolving twice must equal resolving once
	d := date(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		once := Monday(d)
		twice := Monday(once)
		if !twice.Equal(once) {
			t.Fatalf("Monday not idempotent for %v: %v != %v", d, twice, once)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestMondayInvariant(t *testing.T) {
	d := date(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		monday := Monday(d)
		if monday.Weekday() != time.Monday {
			t.Fatalf("Monday(%v) = %v, weekday %v", d, monday, monday.Weekday())
		}
		diff := int(time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Sub(monday).Hours() / 24)
		if diff < 0 || diff > 6 {
			t.Fatalf("Monday(%v) = %v, offset %d days", d, monday, diff)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestMondayYearBoundary(t *testing.T) {
	// 2024-01-01 was a Monday; 2023-12-31 (Sunday) belongs to the prior week
	got := Monday(date(2023, time.December, 31))
	want := date(2023, time.December, 25)
	if !got.Equal(want) {
		t.Errorf("Monday(2023-12-31) = %v, want %v", got, want)
	}
}

func TestMondayDropsTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.June, 12, 23, 59, 59, 0, time.UTC)
	if got, want := Monday(late), date(2024, time.June, 10); !got.Equal(want) {
		t.Errorf("Monday(%v) = %v, want %v", late, got, want)
	}
}

func TestEmptyPayloadShape(t *testing.T) {
	p := EmptyPayload()
	if len(p) != 7 {
		t.Fatalf("expected 7 day entries, got %d", len(p))
	}
	for i, entry := range p {
		if entry.Day != DayNames[i] {
			t.Errorf("day %d = %q, want %q", i, entry.Day, DayNames[i])
		}
		if len(entry.Sessions) != 1 {
			t.Errorf("%s: expected 1 session, got %d", entry.Day, len(entry.Sessions))
			continue
		}
		s := entry.Sessions[0]
		if s.CheckIn != "" || s.CheckOut != "" {
			t.Errorf("%s: expected empty session, got %+v", entry.Day, s)
		}
	}
}

func TestEmptyPayloadNotShared(t *testing.T) {
	a := EmptyPayload()
	a[0].Sessions[0].CheckIn = "09:00"

	b := EmptyPayload()
	if b[0].Sessions[0].CheckIn != "" {
		t.Error("mutating one payload leaked into a fresh one")
	}
}

func TestValidateAcceptsDefault(t *testing.T) {
	if err := EmptyPayload().Validate(); err != nil {
		t.Errorf("default payload failed validation: %v", err)
	}
}

func TestValidateRejectsShortWeek(t *testing.T) {
	p := EmptyPayload()[:3]
	if err := p.Validate(); err == nil {
		t.Error("expected error for 3-day payload")
	}
}

func TestValidateRejectsWrongOrder(t *testing.T) {
	p := EmptyPayload()
	p[0], p[1] = p[1], p[0]
	if err := p.Validate(); err == nil {
		t.Error("expected error for out-of-order days")
	}
}

func TestValidateRejectsEmptySessions(t *testing.T) {
	p := EmptyPayload()
	p[4].Sessions = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error for day with no sessions")
	}
}

func TestValidateAcceptsExtraSessions(t *testing.T) {
	p := EmptyPayload()
	p[0].Sessions = append(p[0].Sessions, Session{CheckIn: "13:00", CheckOut: "17:30"})
	if err := p.Validate(); err != nil {
		t.Errorf("multi-session day failed validation: %v", err)
	}
}

func TestPayloadJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(EmptyPayload()[:1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"day":"Monday","sessions":[{"checkIn":"","checkOut":""}]}]`
	if string(data) != want {
		t.Errorf("payload JSON = %s, want %s", data, want)
	}
}
