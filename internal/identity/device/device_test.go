package device

import "testing"

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "desktop chrome",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: "Chrome on Intel Mac OS X 10_15_7",
		},
		{
			name: "empty",
			ua:   "",
			want: "Unknown Device",
		},
		{
			name: "garbage",
			ua:   "definitely-not-a-user-agent",
			want: "Unknown Browser on Unknown OS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseUserAgent(tt.ua); got != tt.want {
				t.Fatalf("ParseUserAgent(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}
