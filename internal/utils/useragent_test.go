package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserAgent(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		want      ClientInfo
	}{
		{
			name:      "windows chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			want:      ClientInfo{Device: "Desktop", Browser: "Chrome", OS: "Windows"},
		},
		{
			name:      "android mobile",
			userAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			want:      ClientInfo{Device: "Mobile", Browser: "Chrome", OS: "Android"},
		},
		{
			name:      "iphone safari",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
			want:      ClientInfo{Device: "Mobile", Browser: "Safari", OS: "iOS"},
		},
		{
			name:      "ipad tablet",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 Version/16.0 Safari/604.1",
			want:      ClientInfo{Device: "Tablet", Browser: "Safari", OS: "iOS"},
		},
		{
			name:      "mac firefox",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
			want:      ClientInfo{Device: "Desktop", Browser: "Firefox", OS: "macOS"},
		},
		{
			name:      "edge on windows",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0",
			want:      ClientInfo{Device: "Desktop", Browser: "Edge", OS: "Windows"},
		},
		{
			name:      "empty header",
			userAgent: "",
			want:      ClientInfo{Device: "Unknown", Browser: "Unknown", OS: "Unknown"},
		},
		{
			name:      "gibberish",
			userAgent: "curl/8.4.0",
			want:      ClientInfo{Device: "Desktop", Browser: "Unknown", OS: "Unknown"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseUserAgent(tc.userAgent))
		})
	}
}
