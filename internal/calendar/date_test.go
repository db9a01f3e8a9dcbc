package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("parsed wrong date: %s", d)
	}

	for _, bad := range []string{"", "2024-2-1", "2023-02-29", "01/02/2024", "2024-01-01T10:00:00Z"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestArithmetic(t *testing.T) {
	d := MustParse("2024-01-31")

	if got := d.AddDays(1).String(); got != "2024-02-01" {
		t.Errorf("AddDays(1) = %s", got)
	}
	if got := d.AddDays(-31).String(); got != "2023-12-31" {
		t.Errorf("AddDays(-31) = %s", got)
	}
	if got := MustParse("2024-01-01").AddMonths(1).String(); got != "2024-02-01" {
		t.Errorf("AddMonths(1) = %s", got)
	}
	if got := MustParse("2024-01-01").DaysUntil(MustParse("2024-03-01")); got != 60 {
		t.Errorf("DaysUntil = %d, want 60", got)
	}
	if got := MustParse("2024-03-01").DaysUntil(MustParse("2024-01-01")); got != -60 {
		t.Errorf("DaysUntil = %d, want -60", got)
	}
}

func TestFromTimeUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	// 2024-05-01 20:00 UTC is already 2024-05-02 in UTC+7.
	ts := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC).In(loc)
	if got := FromTime(ts).String(); got != "2024-05-02" {
		t.Errorf("FromTime = %s, want 2024-05-02", got)
	}
}

func TestJSON(t *testing.T) {
	type payload struct {
		On   Date  `json:"on"`
		Till *Date `json:"till,omitempty"`
	}

	raw, err := json.Marshal(payload{On: MustParse("2024-06-15")})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"on":"2024-06-15"}` {
		t.Errorf("unexpected json %s", raw)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"on":"2024-06-15","till":"2024-07-14"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Till == nil || p.Till.String() != "2024-07-14" {
		t.Errorf("till not decoded: %+v", p.Till)
	}

	if err := json.Unmarshal([]byte(`{"on":"15/06/2024"}`), &p); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPgDateRoundTrip(t *testing.T) {
	d := MustParse("2024-01-01")
	v, err := d.DateValue()
	if err != nil || !v.Valid {
		t.Fatalf("DateValue = %+v, %v", v, err)
	}

	var back Date
	if err := back.ScanDate(v); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip got %s", back)
	}

	if err := back.ScanDate(pgtype.Date{}); err != nil || !back.IsZero() {
		t.Errorf("NULL should scan to zero date, got %s, %v", back, err)
	}
}
