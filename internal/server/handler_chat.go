package server

import (
	"io"
	"net/http"
	"time"

	"resumechat/internal/metrics"

	"github.com/gin-gonic/gin"
)

// chatHandler handles POST /api/chat
func (s *Server) chatHandler(c *gin.Context) {
	startTime := time.Now()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.respondWithChatError(c, readBodyError(err), startTime)
		return
	}

	resp, err := s.chat.Process(c.Request.Context(), body)
	if err != nil {
		s.respondWithChatError(c, err, startTime)
		return
	}

	c.JSON(http.StatusOK, resp)
	metrics.RecordChatResult(s.metricsService, startTime, s.chat.Protocol(), http.StatusOK)
}
