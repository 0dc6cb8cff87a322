package bitrate

import (
	"fmt"
	"strconv"
	"strings"
)

// AudioTokens is the allowed set of audio bitrates, highest first.
var AudioTokens = []string{"192k", "128k", "96k", "64k"}

// IsAllowedAudio reports whether token is one of AudioTokens. Matching is
// exact: "128K" or "128" are not accepted.
func IsAllowedAudio(token string) bool {
	for _, t := range AudioTokens {
		if t == token {
			return true
		}
	}
	return false
}

// ParseKbps converts a token like "128k" into 128.
func ParseKbps(token string) (int, error) {
	s := strings.TrimSpace(token)
	if !strings.HasSuffix(s, "k") {
		return 0, fmt.Errorf("bitrate %q: missing k suffix", token)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "k"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bitrate %q: not a positive integer", token)
	}
	return n, nil
}

// FormatKbps is the inverse of ParseKbps.
func FormatKbps(kbps int) string {
	return strconv.Itoa(kbps) + "k"
}
