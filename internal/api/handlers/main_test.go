package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/linkdeck/linkdeck/internal/api"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/testutil"
)

// newTestRouter wires the full router against the test database. No Redis
// and no asynq client, so clicks are inserted synchronously.
func newTestRouter(tc *testutil.TestSetup) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewRouter(api.RouterConfig{
		DB:          tc.DB,
		Logger:      logger,
		JWTService:  tc.JWTService,
		AuthService: auth.NewService(tc.DB, tc.JWTService),
	})
}

func doRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
