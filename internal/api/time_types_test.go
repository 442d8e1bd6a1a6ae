package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"minutes and seconds", `"1:05"`, 65},
		{"hours", `"01:02:03"`, 3723},
		{"integer", `65`, 65},
		{"fractional seconds floor", `65.9`, 65},
		{"numeric string", `"90"`, 90},
		{"zero", `0`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTimestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ft))
			assert.Equal(t, tt.want, ft.Seconds)
		})
	}
}

func TestFlexTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	for _, input := range []string{`"soon"`, `"1:2:3:4"`, `-5`, `"-1:00"`, `true`, `{}`} {
		t.Run(input, func(t *testing.T) {
			var ft FlexTimestamp
			assert.Error(t, json.Unmarshal([]byte(input), &ft))
		})
	}
}

func TestFlexTimestamp_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FlexTimestamp{Seconds: 3723})
	require.NoError(t, err)
	assert.Equal(t, `"01:02:03"`, string(data))
}

func TestFlexTimestamp_InStruct(t *testing.T) {
	var body struct {
		At FlexTimestamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2:30"}`), &body))
	assert.Equal(t, 150, body.At.Seconds)
	assert.Equal(t, "00:02:30", body.At.String())
}
