// Package timecode converts between colon-delimited timestamps and elapsed seconds.
//
// Timestamps come in MM:SS or HH:MM:SS form. Parsing is lenient by default:
// anything that is not two or three integer fields degrades to zero, which
// callers treat as "unknown, start of video".
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Zero is the display form used when a timestamp is unknown.
const Zero = "00:00:00"

// ErrInvalidFormat is returned by Parse when the input is not MM:SS or HH:MM:SS.
var ErrInvalidFormat = errors.New("timecode: invalid format")

// Parse converts a timestamp to seconds, reporting malformed input.
// Field ranges are not validated: "00:75:00" is 4500 and "-1:00" is -60.
func Parse(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		fields[i] = n
	}

	if len(fields) == 2 {
		return fields[0]*60 + fields[1], nil
	}
	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// ToSeconds converts a timestamp to seconds, returning 0 for anything Parse rejects.
func ToSeconds(s string) int {
	n, err := Parse(s)
	if err != nil {
		return 0
	}
	return n
}

// Format renders seconds as zero-padded HH:MM:SS. Negative input renders as Zero.
func Format(seconds int) string {
	if seconds <= 0 {
		return Zero
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
