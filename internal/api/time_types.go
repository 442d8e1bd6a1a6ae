package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

// FlexTimestamp is an offset into a video that can unmarshal from either:
// - a timestamp string: "1:05", "01:02:03"
// - seconds as a number: 65 or 65.7
// - seconds as a string: "65"
//
// It always marshals to HH:MM:SS.
type FlexTimestamp struct {
	Seconds int
}

// UnmarshalJSON handles flexible offset parsing from JSON.
func (ft *FlexTimestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return ft.set(n)
		}
		n, err := timecode.Parse(s)
		if err != nil {
			return fmt.Errorf("cannot parse timestamp %q", s)
		}
		return ft.set(n)
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return ft.set(int(math.Floor(f)))
	}

	return fmt.Errorf("cannot unmarshal %s into FlexTimestamp", string(data))
}

func (ft *FlexTimestamp) set(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("negative offset %d", seconds)
	}
	ft.Seconds = seconds
	return nil
}

// MarshalJSON outputs the offset as HH:MM:SS.
func (ft FlexTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(timecode.Format(ft.Seconds))
}

// String returns the HH:MM:SS form.
func (ft FlexTimestamp) String() string {
	return timecode.Format(ft.Seconds)
}

// Schema lets huma accept both the string and the numeric form.
func (FlexTimestamp) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "Offset as HH:MM:SS, MM:SS or seconds",
		OneOf: []*huma.Schema{
			{Type: huma.TypeString},
			{Type: huma.TypeNumber, Minimum: ptrFloat(0)},
		},
	}
}

func ptrFloat(f float64) *float64 { return &f }
