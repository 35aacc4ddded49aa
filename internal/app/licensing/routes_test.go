package licensing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	RegisterRoutes(r, logger, nil, nil, nil, nil)
	return r
}

func TestDocsEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("swagger.json отдаётся и содержит спецификацию", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/swagger.json", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var spec map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
		assert.Equal(t, "2.0", spec["swagger"])
		assert.Contains(t, spec, "paths")
	})

	t.Run("swagger ui открывается", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/index.html", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "swagger")
	})
}
