package utils

import "strings"

// ClientInfo summarises a User-Agent header for session bookkeeping.
type ClientInfo struct {
	Device  string
	Browser string
	OS      string
}

// ParseUserAgent classifies a raw User-Agent header into coarse device,
// browser and operating system buckets. Unrecognised agents fall back to
// "Unknown" rather than failing.
func ParseUserAgent(userAgent string) ClientInfo {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return ClientInfo{Device: "Unknown", Browser: "Unknown", OS: "Unknown"}
	}

	info := ClientInfo{Device: "Desktop", Browser: "Unknown", OS: "Unknown"}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		info.Device = "Tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		info.Device = "Mobile"
	}

	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		info.Browser = "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	return info
}
