package boxscore

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	didNotPlaySentinels = map[string]bool{
		"DNP": true,
		"DND": true,
		"NWT": true,
		"INA": true,
		"DEC": true,
	}

	isoDuration = regexp.MustCompile(`^PT(\d+)M(?:(\d+)(?:\.\d+)?S)?$`)
	clockTime   = regexp.MustCompile(`^(\d+):(\d{1,2})$`)
	wholeNumber = regexp.MustCompile(`^\d+$`)
)

// NormalizeMinutes converts a minutes cell or duration token to "M:SS".
// played is false for did-not-play sentinels, zero durations and anything
// unparseable.
func NormalizeMinutes(raw string) (display string, played bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || didNotPlaySentinels[s] || strings.Contains(s, "DNP") {
		return "", false
	}

	if m := isoDuration.FindStringSubmatch(s); m != nil {
		seconds := m[2]
		if seconds == "" {
			seconds = "0"
		}
		if totalSeconds(m[1], seconds) == 0 {
			return "", false
		}
		return m[1] + ":" + padSeconds(seconds), true
	}

	if m := clockTime.FindStringSubmatch(s); m != nil {
		if totalSeconds(m[1], m[2]) == 0 {
			return "", false
		}
		return m[1] + ":" + padSeconds(m[2]), true
	}

	if wholeNumber.MatchString(s) {
		if totalSeconds(s, "0") == 0 {
			return "", false
		}
		return s + ":00", true
	}

	return "", false
}

// IsDidNotPlay reports whether a minutes value means the player sat out.
func IsDidNotPlay(raw string) bool {
	_, played := NormalizeMinutes(raw)
	return !played
}

func totalSeconds(minutes, seconds string) int {
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	return m*60 + s
}

func padSeconds(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
