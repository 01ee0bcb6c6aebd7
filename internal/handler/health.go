package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "floatwatch"

// Health godoc
// @Summary      Health check
// @Description  Reports that the snapshot API is up; it does not call the marketplace
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}
