package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid message type", ErrInvalidMessageType, http.StatusBadRequest},
		{"wrapped invalid type", fmt.Errorf("%w: %q", ErrInvalidMessageType, "video"), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"storage unavailable", ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"wrapped storage unavailable", fmt.Errorf("%w: timeout", ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestAPIError(t *testing.T) {
	apiErr := NewAPIError("something broke", http.StatusBadGateway)
	assert.Equal(t, "something broke", apiErr.Error())
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
}
