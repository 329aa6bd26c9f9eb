package util

import (
    "fmt"
    "strings"
    "time"
)

// PeriodStart returns the first calendar day covered by a relative period token
// ("1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max") ending at now.
// "max" yields the zero time, meaning no lower bound.
func PeriodStart(token string, now time.Time) (time.Time, error) {
    now = now.UTC()
    day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
    switch strings.ToLower(strings.TrimSpace(token)) {
    case "1d":
        return day.AddDate(0, 0, -1), nil
    case "5d":
        return day.AddDate(0, 0, -5), nil
    case "1mo":
        return day.AddDate(0, -1, 0), nil
    case "3mo":
        return day.AddDate(0, -3, 0), nil
    case "6mo":
        return day.AddDate(0, -6, 0), nil
    case "1y":
        return day.AddDate(-1, 0, 0), nil
    case "2y":
        return day.AddDate(-2, 0, 0), nil
    case "5y":
        return day.AddDate(-5, 0, 0), nil
    case "10y":
        return day.AddDate(-10, 0, 0), nil
    case "ytd":
        return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
    case "max":
        return time.Time{}, nil
    default:
        return time.Time{}, fmt.Errorf("unsupported period: %q", token)
    }
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
    if t.IsZero() {
        return ""
    }
    return t.Format("2006-01-02")
}
