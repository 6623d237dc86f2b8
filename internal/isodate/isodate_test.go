package isodate

import (
	"errors"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "2024-01-10T00:00:00.000Z"},
		{"millis", time.Date(2024, 1, 1, 8, 30, 5, 123456789, time.UTC), "2024-01-01T08:30:05.123Z"},
		{"offset converted", time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)), "2024-01-01T00:00:00.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-10T00:00:00.000Z", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), false},
		{"2024-01-10T12:34:56Z", time.Date(2024, 1, 10, 12, 34, 56, 0, time.UTC), false},
		{"2024-01-10T12:34:56+02:00", time.Date(2024, 1, 10, 10, 34, 56, 0, time.UTC), false},
		{"2024-01-10T12:34:56", time.Date(2024, 1, 10, 12, 34, 56, 0, time.UTC), false},
		{"2024-01-10T12:34:56.5", time.Date(2024, 1, 10, 12, 34, 56, 500000000, time.UTC), false},
		{"2024-01-10", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), false},
		{" 2024-01-10 ", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"yesterday", time.Time{}, true},
		{"2024-13-01", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q): expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Parse blank: got %v, want ErrEmpty", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("ParseDate blank: got %v, want ErrEmpty", err)
	}
}

func TestRoundTrip(t *testing.T) {
	in := time.Date(2024, 3, 15, 9, 45, 12, 987000000, time.UTC)
	got, err := Parse(Format(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equal(in) {
		t.Fatalf("round trip: got %v, want %v", got, in)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("ParseDate: got %v, want %v", got, want)
	}
	if FormatDate(got) != "2024-01-05" {
		t.Fatalf("FormatDate: got %q", FormatDate(got))
	}

	for _, bad := range []string{"05/01/2024", "2024-1-5", "2024-01-05T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)); got != "Jan 10, 2024" {
		t.Fatalf("Display: got %q, want Jan 10, 2024", got)
	}
}

func TestDate(t *testing.T) {
	in := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)
	if got := Date(in); !got.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Date: got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	in := time.Now().In(time.FixedZone("X", 7200))
	got := Truncate(in)
	if got.Location() != time.UTC || got.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("Truncate: got %v", got)
	}
	back, err := Parse(Format(in))
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(got) {
		t.Errorf("Parse(Format(t)) = %v, want Truncate(t) = %v", back, got)
	}
}

func TestEqual(t *testing.T) {
	a := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("X", 7200))
	c := a.Add(time.Second)

	tests := []struct {
		name string
		x, y *time.Time
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", &a, nil, false},
		{"other nil", nil, &a, false},
		{"same instant different zone", &a, &b, true},
		{"different instant", &a, &c, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.x, tt.y); got != tt.want {
				t.Errorf("Equal: got %v, want %v", got, tt.want)
			}
		})
	}
}
