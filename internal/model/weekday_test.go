package model

import (
	"errors"
	"testing"
)

func TestParseWeekday(t *testing.T) {
	cases := []struct {
		in   string
		want Weekday
	}{
		{"LUNDI", Monday},
		{"mardi", Tuesday},
		{" Mercredi ", Wednesday},
		{"jeudi", Thursday},
		{"VENDREDI", Friday},
		{"samedi", Saturday},
		{"Dimanche", Sunday},
		{"MONDAY", Monday},
		{"friday", Friday},
		{"Sunday", Sunday},
	}
	for _, tc := range cases {
		got, err := ParseWeekday(tc.in)
		if err != nil {
			t.Errorf("ParseWeekday(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWeekday(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseWeekday_Invalid(t *testing.T) {
	for _, in := range []string{"", "FUNDAY", "lun", "8"} {
		if _, err := ParseWeekday(in); !errors.Is(err, ErrInvalidDay) {
			t.Errorf("ParseWeekday(%q) expected ErrInvalidDay, got %v", in, err)
		}
	}
}

func TestWeekday_String(t *testing.T) {
	if Wednesday.String() != "WEDNESDAY" {
		t.Errorf("expected WEDNESDAY, got %s", Wednesday.String())
	}
	if Weekday(0).Valid() || Weekday(8).Valid() {
		t.Error("0 and 8 must not be valid weekdays")
	}
	if Weekday(9).String() != "Weekday(9)" {
		t.Errorf("unexpected string for out-of-range day: %s", Weekday(9).String())
	}
}
