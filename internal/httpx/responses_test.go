package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusCreated, map[string]int{"id": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id": 3}`, w.Body.String())
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid input", []ErrorDetail{
		{Field: "title", Message: "title must be at least 3 characters"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "Invalid input", resp.Error.Message)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "title", resp.Error.Details[0].Field)
}

func TestJSONError_NoDetailsOmitted(t *testing.T) {
	w := httptest.NewRecorder()

	JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)

	assert.NotContains(t, w.Body.String(), "details")
}
