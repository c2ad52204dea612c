package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessResponse(rec, map[string]int{"n": 1}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "profile not found")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"profile not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusOK, func() {})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alex"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "alex", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alex","extra":1}`))
	assert.Error(t, DecodeJSON(req, &dst))
}
