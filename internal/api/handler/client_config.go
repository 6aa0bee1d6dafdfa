package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetClientConfig exposes the non-sensitive runtime configuration the
// browser needs: where the local model lives and which model to ask for.
func (h *Handler) GetClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ollamaHost":  h.Cfg.OllamaHost,
		"ollamaModel": h.Cfg.OllamaModel,
	})
}
