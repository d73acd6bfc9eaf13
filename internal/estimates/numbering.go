package estimates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	numberPrefix   = "EST"
	numberPadWidth = 4
)

// ErrMalformedNumber signals an existing estimate number whose suffix is not
// numeric. This is a data-integrity defect, never silently defaulted.
var ErrMalformedNumber = errors.New("malformed estimate number")

// NumberPrefixForYear returns the shared prefix for a year, e.g. "EST-2026-".
func NumberPrefixForYear(year int) string {
	return fmt.Sprintf("%s-%04d-", numberPrefix, year)
}

// NextNumber derives the next estimate number for a year from the greatest
// existing number with that year's prefix. An empty maxExisting starts the
// sequence at 1. Suffixes are zero-padded to 4 digits; larger values widen
// the field rather than truncate.
func NextNumber(year int, maxExisting string) (string, error) {
	prefix := NumberPrefixForYear(year)
	if maxExisting == "" {
		return fmt.Sprintf("%s%0*d", prefix, numberPadWidth, 1), nil
	}

	idx := strings.LastIndex(maxExisting, "-")
	if idx < 0 || idx == len(maxExisting)-1 {
		return "", fmt.Errorf("%w: %q", ErrMalformedNumber, maxExisting)
	}
	suffix := maxExisting[idx+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: %q", ErrMalformedNumber, maxExisting)
	}

	return fmt.Sprintf("%s%0*d", prefix, numberPadWidth, n+1), nil
}
