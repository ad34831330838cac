package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDay is returned when a day token cannot be mapped to a weekday.
var ErrInvalidDay = errors.New("invalid day")

// Weekday is an ISO day of week: 1 = Monday … 7 = Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// localized names accepted on input, alongside the symbolic ones.
var localizedWeekdays = map[string]Weekday{
	"LUNDI":    Monday,
	"MARDI":    Tuesday,
	"MERCREDI": Wednesday,
	"JEUDI":    Thursday,
	"VENDREDI": Friday,
	"SAMEDI":   Saturday,
	"DIMANCHE": Sunday,
}

// Valid reports whether d is within Monday…Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday accepts French day names (LUNDI…DIMANCHE) or the symbolic
// names (MONDAY…SUNDAY), case-insensitively and ignoring surrounding spaces.
func ParseWeekday(s string) (Weekday, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	if d, ok := localizedWeekdays[token]; ok {
		return d, nil
	}
	for i := Monday; i <= Sunday; i++ {
		if weekdayNames[i] == token {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}
