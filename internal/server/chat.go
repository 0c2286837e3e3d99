package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Query string `json:"query" binding:"required"`
}

// handleChatWithData proxies a free-text question to the external NL-to-SQL
// service and returns its validated answer verbatim.
func (s *Server) handleChatWithData(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	answer, err := s.chat.Ask(c.Request.Context(), req.Query)
	if err != nil {
		s.logger.Error("chat-with-data failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}
