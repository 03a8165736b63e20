package chat

import (
	"net/url"
	"strings"
)

// ParseVideoID normalizes user input into a bare YouTube video id. Accepts
// full watch URLs, youtu.be short links and already-bare ids.
func ParseVideoID(input string) string {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "/") && !strings.Contains(input, "?") {
		return input
	}
	u, err := url.Parse(input)
	if err != nil {
		return input
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if strings.Contains(u.Host, "youtu.be") {
		return strings.TrimPrefix(u.Path, "/")
	}
	// Embed-style paths keep the id as the last segment.
	if idx := strings.LastIndex(u.Path, "/"); idx >= 0 && idx < len(u.Path)-1 {
		return u.Path[idx+1:]
	}
	return input
}
