package http

import (
    xutil "Monexa/pkg/util"
)

// SplitCSV splits a comma separated query value.
func SplitCSV(s string) []string { return xutil.SplitCSV(s) }
