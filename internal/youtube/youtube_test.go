package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=rfscVS0vtbw", "rfscVS0vtbw", true},
		{"https://youtube.com/watch?v=abc123&t=42s", "abc123", true},
		{"https://youtu.be/rfscVS0vtbw", "rfscVS0vtbw", true},
		{"https://www.youtu.be/xyz", "xyz", true},
		{"https://www.youtube.com/embed/emb42", "emb42", true},
		{"https://www.youtube.com/v/old99", "old99", true},
		{"  https://www.youtube.com/watch?v=trim  ", "trim", true},
		{"https://www.youtube.com/watch", "", false},
		{"https://youtu.be/", "", false},
		{"https://vimeo.com/12345", "", false},
		{"https://www.youtube.com/channel/UC123", "", false},
		{"not a url", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJumpURL(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      string
	}{
		{"hours", "00:02:10", "https://www.youtube.com/watch?v=rfscVS0vtbw&t=130s"},
		{"minutes", "1:30", "https://www.youtube.com/watch?v=rfscVS0vtbw&t=90s"},
		{"malformed", "??:??:??", "https://www.youtube.com/watch?v=rfscVS0vtbw&t=0s"},
		{"negative minutes", "-1:00", "https://www.youtube.com/watch?v=rfscVS0vtbw&t=0s"},
		{"negative total", "00:00:-5", "https://www.youtube.com/watch?v=rfscVS0vtbw&t=0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JumpURL("rfscVS0vtbw", tt.timestamp))
		})
	}
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL("abc"))
}
