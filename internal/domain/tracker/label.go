package tracker

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// labelClass ranks the kinds of label. Every number sorts before every date
// and every date before every other label.
type labelClass int

const (
	classNumber labelClass = iota
	classDate
	classText
)

type labelKey struct {
	class labelClass
	num   float64
	at    time.Time
	raw   string
}

func parseLabel(s string) labelKey {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return labelKey{class: classNumber, num: n, raw: s}
	}
	if t, ok := parseDate(trimmed); ok {
		return labelKey{class: classDate, at: t, raw: s}
	}
	return labelKey{class: classText, raw: s}
}

// CompareLabels orders two event labels. Numbers come first and compare by
// value, then dates compared chronologically, then everything else compared
// as plain strings. Dates at the same instant fall back to string order.
func CompareLabels(a, b string) int {
	if a == b {
		return 0
	}
	x, y := parseLabel(a), parseLabel(b)
	if c := cmp.Compare(x.class, y.class); c != 0 {
		return c
	}
	switch x.class {
	case classNumber:
		return cmp.Compare(x.num, y.num)
	case classDate:
		if c := x.at.Compare(y.at); c != 0 {
			return c
		}
	}
	return strings.Compare(x.raw, y.raw)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
