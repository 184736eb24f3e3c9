package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ampmRe matches 12-hour times with a single A/P marker, e.g. "1:24P".
	ampmRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})([AP])$`)

	// hmmRe matches bare hour:minute times, e.g. "1:23" or "12:34".
	hmmRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	digitsRe = regexp.MustCompile(`^\d+$`)
)

// NormalizeTime canonicalizes a free-text time cell to HH:MM:SS. It returns
// the empty string for a missing value and passes unrecognized shapes
// through unchanged; ParseClockTime decides whether the result is usable.
//
// The five-digit branch emits an unpadded single-digit seconds field
// ("12345" → "12:34:5"), matching the legacy workbook tooling byte for byte.
func NormalizeTime(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if m := ampmRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		switch {
		case m[3] == "P" && hour != 12:
			hour += 12
		case m[3] == "A" && hour == 12:
			hour = 0
		}
		return fmt.Sprintf("%02d:%s:00", hour, m[2])
	}

	if m := hmmRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s:00", hour, m[2])
	}

	if digitsRe.MatchString(s) {
		switch len(s) {
		case 3: // "123" → hour is the first digit
			return fmt.Sprintf("%c:%s:00", s[0], s[1:])
		case 4:
			return s[:2] + ":" + s[2:] + ":00"
		case 5:
			return s[:2] + ":" + s[2:4] + ":" + s[4:]
		}
	}

	return s
}

// ParseClockTime validates a normalized string as a time of day and returns
// its components. It accepts H:MM and H:MM:S[S] part widths so the unpadded
// outputs of NormalizeTime resolve, and rejects anything that is not a real
// wall-clock time.
func ParseClockTime(s string) (hour, minute, sec int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 2 || !digitsRe.MatchString(p) {
			return 0, 0, 0, false
		}
		nums[i], _ = strconv.Atoi(p)
	}

	hour, minute = nums[0], nums[1]
	if len(nums) == 3 {
		sec = nums[2]
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return 0, 0, 0, false
	}
	return hour, minute, sec, true
}
