// Package slots generates the fixed 15-minute time-slot grid appointments
// are booked against. Labels are plain strings ("08:00 AM - 08:15 AM") so
// they can be stored and compared byte-for-byte across services.
package slots

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// Interval is the fixed slot width. Product convention, not configurable.
	Interval = 15 * time.Minute

	labelTimeLayout = "03:04 PM"
)

// LabelRegex matches a well-formed slot label on quarter-hour boundaries.
// Format only; ValidLabel additionally checks the interval width.
var LabelRegex = regexp.MustCompile(`^(0[1-9]|1[0-2]):(00|15|30|45) (AM|PM) - (0[1-9]|1[0-2]):(00|15|30|45) (AM|PM)$`)

// ValidLabel reports whether label is one Generate can produce: both times
// on a quarter-hour boundary, end exactly one Interval after start. Labels
// are compared byte-for-byte when checking conflicts, so a wider or
// off-grid label would overlap real slots without ever colliding with them.
func ValidLabel(label string) bool {
	if !LabelRegex.MatchString(label) {
		return false
	}

	parts := strings.Split(label, " - ")
	start, err := time.Parse(labelTimeLayout, parts[0])
	if err != nil {
		return false
	}
	end, err := time.Parse(labelTimeLayout, parts[1])
	if err != nil {
		return false
	}

	span := end.Sub(start)
	if span < 0 {
		// The 11:45 PM slot ends at 12:00 AM.
		span += 24 * time.Hour
	}
	return span == Interval
}

// Period is a named block of consulting hours. StartHour is inclusive,
// EndHour exclusive.
type Period struct {
	Name      string
	StartHour int
	EndHour   int
}

var (
	Morning = Period{Name: "morning", StartHour: 8, EndHour: 12}
	Evening = Period{Name: "evening", StartHour: 12, EndHour: 18}
	Night   = Period{Name: "night", StartHour: 18, EndHour: 22}
)

// Periods returns the named periods in day order.
func Periods() []Period {
	return []Period{Morning, Evening, Night}
}

// PeriodByName resolves a period by its case-insensitive name.
func PeriodByName(name string) (Period, bool) {
	for _, p := range Periods() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Period{}, false
}

// Generate returns the slot labels for every 15-minute boundary in
// [startHour:00, endHour:00), ascending and duplicate-free. It requires
// 0 <= startHour < endHour <= 24.
func Generate(startHour, endHour int) ([]string, error) {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, fmt.Errorf("invalid hour range [%d, %d): want 0 <= start < end <= 24", startHour, endHour)
	}

	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	start := base.Add(time.Duration(startHour) * time.Hour)
	end := base.Add(time.Duration(endHour) * time.Hour)

	labels := make([]string, 0, (endHour-startHour)*4)
	for t := start; t.Before(end); t = t.Add(Interval) {
		labels = append(labels, formatLabel(t, t.Add(Interval)))
	}
	return labels, nil
}

// Slots generates the grid for this period.
func (p Period) Slots() ([]string, error) {
	return Generate(p.StartHour, p.EndHour)
}

func formatLabel(start, end time.Time) string {
	return start.Format(labelTimeLayout) + " - " + end.Format(labelTimeLayout)
}
