package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	welcomeMessage = "Welcome to the CatFrame movie catalog API. See /swagger/index.html for the documentation."
)

// @Summary      Welcome message
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *Handler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
