// Package dateparse turns date expressions into instants. Expressions are
// either relative to a caller-supplied reference instant ("3d", "2w") or
// absolute ("2024-01-01", "2024-01-01 10:30"). The package holds no clock
// state of its own so callers can pin "now" in tests.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jwulff/flowscribe/internal/errs"
)

// Month and year units are fixed approximations, not calendar-aware.
const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var relativeExpr = regexp.MustCompile(`^(\d+)\s*(h|hour|hours|d|day|days|w|week|weeks|m|month|months|y|year|years)$`)

// Absolute layouts tried in order. Date-only layouts resolve to start of day
// in the reference instant's location.
var absoluteLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	time.RFC3339,
	"2006-01-02T15:04:05.999999Z",
}

// Parse evaluates a date expression against the reference instant ref.
// Relative expressions subtract from ref; absolute expressions parse in
// ref's location. Anything else fails with InvalidDateExpression.
func Parse(expr string, ref time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return time.Time{}, errs.New(errs.InvalidDateExpression, "empty date expression")
	}

	if m := relativeExpr.FindStringSubmatch(strings.ToLower(trimmed)); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, errs.Newf(errs.InvalidDateExpression, "invalid amount in %q", expr)
		}
		return ref.Add(-time.Duration(amount) * unitDuration(m[2])), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, ref.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errs.Newf(errs.InvalidDateExpression, "unrecognized date expression %q", expr)
}

func unitDuration(unit string) time.Duration {
	switch unit[0] {
	case 'h':
		return time.Hour
	case 'd':
		return day
	case 'w':
		return week
	case 'm':
		return month
	default: // 'y'
		return year
	}
}
