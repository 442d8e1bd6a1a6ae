package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askRequest struct {
	VideoID string `json:"video_id" validate:"required,videoid"`
	Query   string `json:"query" validate:"required,min=1,max=500"`
	K       int    `json:"k" validate:"gte=0,lte=50"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(askRequest{VideoID: "rfscVS0vtbw", Query: "what is a loop", K: 5}))
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       askRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing query",
			req:       askRequest{VideoID: "abc"},
			wantField: "query",
			wantMsg:   "is required",
		},
		{
			name:      "path traversal video id",
			req:       askRequest{VideoID: "../etc", Query: "q"},
			wantField: "video_id",
			wantMsg:   "must be a video ID of letters, digits, '-' or '_'",
		},
		{
			name:      "k too large",
			req:       askRequest{VideoID: "abc", Query: "q", K: 99},
			wantField: "k",
			wantMsg:   "must be less than or equal to 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidVideoID(t *testing.T) {
	assert.True(t, validation.ValidVideoID("rfscVS0vtbw"))
	assert.True(t, validation.ValidVideoID("a-b_c"))
	assert.False(t, validation.ValidVideoID(""))
	assert.False(t, validation.ValidVideoID("has space"))
	assert.False(t, validation.ValidVideoID("slash/id"))
}
