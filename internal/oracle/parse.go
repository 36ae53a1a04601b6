package oracle

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
)

// planLine matches lines starting with a time like 9:00 or 09:00.
var planLine = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])\b\s+(.+)$`)

var firstInt = regexp.MustCompile(`-?\d+`)

// ParsePlan extracts (time, action) pairs from freeform plan text. Lines
// without an HH:MM prefix are dropped.
func ParsePlan(text string) []PlanAction {
	var plan []PlanAction
	for _, line := range strings.Split(text, "\n") {
		m := planLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		plan = append(plan, PlanAction{
			Time:   clock.New(hour, float64(minute)),
			Action: strings.TrimSpace(m[3]),
		})
	}
	return plan
}

// ParseChoice extracts a candidate index and the trailing justification from a
// route-choice response. The first line containing an integer supplies the
// index; everything after it is the justification.
func ParseChoice(text string) (idx int, justification string, ok bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := firstInt.FindString(line)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		rest := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return n, rest, true
	}
	return 0, "", false
}

// ParseComfort extracts an integer comfort score, clamped to 1–10.
func ParseComfort(text string) (int, bool) {
	m := firstInt.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	return n, true
}
