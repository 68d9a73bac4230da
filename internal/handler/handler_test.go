package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/lab-records/internal/auth"
	"github.com/sakif/lab-records/internal/handler"
	sqliteRepo "github.com/sakif/lab-records/internal/repository/sqlite"
	"github.com/sakif/lab-records/internal/service"
)

// newTestAPI mounts every handler over a fresh in-memory database.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	labs := handler.NewLabHandler(service.NewLabService(db, logger), logger)

	r := chi.NewRouter()
	r.Mount("/user", handler.NewUserHandler(service.NewUserService(db, passwords, logger), logger).Routes())
	r.Mount("/mouse", handler.NewMouseHandler(service.NewMouseService(db, service.MouseOptions{}, logger), logger).Routes())
	r.Mount("/log-entry", handler.NewLogEntryHandler(service.NewLogEntryService(db, logger), logger).Routes())
	r.Mount("/lab", labs.LabRoutes())
	r.Mount("/protocol", labs.ProtocolRoutes())
	return r
}

// call issues one request and decodes the JSON body.
func call(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	return rr, decoded
}

func object(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	obj, ok := body[key].(map[string]any)
	require.True(t, ok, "missing %q in %v", key, body)
	return obj
}

func registerAlice(t *testing.T, h http.Handler) string {
	t.Helper()
	rr, body := call(t, h, http.MethodPost, "/user/register", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return object(t, body, "user")["id"].(string)
}

func createMouse(t *testing.T, h http.Handler, name, userID string) string {
	t.Helper()
	rr, body := call(t, h, http.MethodPost, "/mouse/create", map[string]any{
		"name":      name,
		"sex":       "female",
		"genotype":  "WT",
		"strain":    "C57BL/6J",
		"birthDate": "2024-01-01",
		"userId":    userID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return object(t, body, "mouse")["id"].(string)
}
