package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"auroma-service/internal/service"
	"auroma-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty cart", service.ErrCartEmpty, http.StatusBadRequest},
		{"unknown tier", service.ErrUnknownTier, http.StatusBadRequest},
		{"invalid creator code", service.ErrInvalidCreatorCode, http.StatusNotFound},
		{"order not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"profile not found", service.ErrProfileNotFound, http.StatusNotFound},
		{"row not found", store.ErrNotFound, http.StatusNotFound},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict},
		{"insufficient points", store.ErrInsufficientPoints, http.StatusConflict},
		{"insufficient credit", store.ErrInsufficientCredit, http.StatusConflict},
		{"unexpected error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err, "fallback")

			assert.Equal(t, tc.status, w.Code)
		})
	}
}
