package document

import "time"

// TimeLayout is the wire format for every timestamp in the document:
// ISO-8601 with millisecond precision, always UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Now returns the current time in the document wire format.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}

// FormatTime renders t in the document wire format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a document timestamp or a bare business date.
// Returns false for anything unparsable; callers decide whether that
// is fail-open or skip.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
