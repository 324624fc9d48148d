package identity

import (
	"fmt"
	"strings"
	"time"
)

// dateFormats lists every format ParseDate accepts, tried in order per spec
// §4.3: ISO 8601 date and datetime variants with and without a Z suffix or
// offset, then %m/%d/%Y, %d-%m-%Y, %d/%m/%Y as fallback. First successful
// format wins.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate parses s using the first matching format in dateFormats (spec
// §4.3). Failure to match any format is a record error.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("identity: date is empty")
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("identity: %q does not match any supported date format", s)
}
