package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/lab-records/internal/ident"
)

func TestLogEntryHandler(t *testing.T) {
	h := newTestAPI(t)
	userID := registerAlice(t, h)
	mouseID := createMouse(t, h, "M1", userID)

	rr, body := call(t, h, http.MethodPost, "/lab/create", map[string]any{"name": "Smith Lab"})
	require.Equal(t, http.StatusCreated, rr.Code)
	labID := object(t, body, "lab")["id"].(string)

	rr, body = call(t, h, http.MethodPost, "/log-entry/create", map[string]any{
		"userId":  userID,
		"labId":   labID,
		"mice":    mouseID,
		"content": "Weighed M1: 21g",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Log entry created successfully", body["message"])

	entry := object(t, body, "logEntry")
	entryID := entry["id"].(string)
	assert.Equal(t, "Smith Lab", object(t, entry, "lab")["name"])
	mice := entry["mice"].([]any)
	require.Len(t, mice, 1)
	assert.Equal(t, "M1", object(t, mice[0].(map[string]any), "mouse")["name"])

	t.Run("get", func(t *testing.T) {
		rr, body := call(t, h, http.MethodGet, "/log-entry/"+entryID, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Log entry retrieved successfully", body["message"])
	})

	t.Run("lists", func(t *testing.T) {
		tests := []struct {
			path    string
			message string
		}{
			{"/log-entry/mouse/" + mouseID, "Found 1 log entries for mouse"},
			{"/log-entry/lab/" + labID, "Found 1 log entries for lab"},
			{"/log-entry/user/" + userID, "Found 1 log entries by user"},
			{"/log-entry/user/" + ident.New(), "Found 0 log entries by user"},
		}
		for _, tt := range tests {
			rr, body := call(t, h, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.message, body["message"])
		}
	})

	t.Run("missing mice", func(t *testing.T) {
		rr, body := call(t, h, http.MethodPost, "/log-entry/create", map[string]any{
			"userId":  userID,
			"labId":   labID,
			"mice":    []string{},
			"content": "nothing",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "missing_fields", body["error"])
	})

	t.Run("update", func(t *testing.T) {
		rr, body := call(t, h, http.MethodPut, "/log-entry/update/"+entryID, map[string]any{"content": "Weighed M1: 22g"})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Log entry updated successfully", body["message"])
		assert.Equal(t, "Weighed M1: 22g", object(t, body, "logEntry")["content"])
	})

	t.Run("delete", func(t *testing.T) {
		rr, body := call(t, h, http.MethodDelete, "/log-entry/delete/"+entryID, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Log entry deleted successfully", body["message"])

		rr, body = call(t, h, http.MethodDelete, "/log-entry/delete/"+entryID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Log entry not found", body["message"])
	})
}
