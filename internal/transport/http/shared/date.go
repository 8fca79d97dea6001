package shared

// Appraisal periods are calendar dates, but clients built on JS Date
// objects tend to send full RFC3339 timestamps. Both are accepted.

import "time"

const dateLayout = "2006-01-02"

func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
