package util

import (
    "strings"
)

// SplitCSV splits a comma separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

// NormalizeSymbols upper-cases, trims and dedupes symbols keeping first-seen order.
func NormalizeSymbols(symbols []string) []string {
    seen := make(map[string]struct{}, len(symbols))
    out := make([]string, 0, len(symbols))
    for _, s := range symbols {
        s = strings.ToUpper(strings.TrimSpace(s))
        if s == "" {
            continue
        }
        if _, ok := seen[s]; ok {
            continue
        }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}
