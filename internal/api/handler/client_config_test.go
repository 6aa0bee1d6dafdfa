package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/backend/internal/api/handler"
	"nexus/backend/internal/config"
)

func TestGetClientConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := handler.NewHandler(nil, config.Config{
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "llama3.1:8b",
	}, zerolog.Nop())

	r := gin.New()
	r.GET("/api/config", h.GetClientConfig)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "http://localhost:11434", body["ollamaHost"])
	assert.Equal(t, "llama3.1:8b", body["ollamaModel"])

	// Only non-sensitive keys are exposed.
	assert.Len(t, body, 2)
}
