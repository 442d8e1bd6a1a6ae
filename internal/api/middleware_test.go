package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			assert.Equal(t, tt.want, clientIP(tt.remote))
		})
	}
}

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "VALIDATION"},
		{http.StatusUnprocessableEntity, "VALIDATION"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusTooManyRequests, "RATE_LIMITED"},
		{http.StatusInternalServerError, "INTERNAL"},
		{http.StatusTeapot, "INTERNAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusToCode(tt.status), http.StatusText(tt.status))
	}
}
