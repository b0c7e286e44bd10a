package server

import (
	"errors"
	"net/http"
	"time"

	"resumechat/internal/core"
	"resumechat/internal/metrics"

	"github.com/gin-gonic/gin"
)

// respondWithChatError renders err as {"error": ...} with its status and records the failure
func (s *Server) respondWithChatError(c *gin.Context, err error, startTime time.Time) {
	chatErr := core.AsChatError(err)

	if chatErr.Status >= http.StatusInternalServerError {
		s.config.Logger.Error("Chat request [%s] failed: %v", getRequestID(c), chatErr)
	} else {
		s.config.Logger.Warn("Chat request [%s] rejected: %v", getRequestID(c), chatErr)
	}

	if chatErr.Kind == core.KindPayloadTooLarge {
		c.Header(core.HeaderConnection, core.ConnectionClose)
	}

	c.JSON(chatErr.Status, core.ErrorResponse{Error: chatErr.Message})
	metrics.RecordChatResult(s.metricsService, startTime, s.chat.Protocol(), chatErr.Status)
}

// respondWithAssetError renders asset failures as plain text
func (s *Server) respondWithAssetError(c *gin.Context, err error) {
	chatErr := core.AsChatError(err)
	if chatErr.Status >= http.StatusInternalServerError {
		s.config.Logger.Error("Asset request [%s] %s failed: %v", getRequestID(c), c.Request.URL.Path, chatErr)
	} else {
		s.config.Logger.Debug("Asset request [%s] %s: %v", getRequestID(c), c.Request.URL.Path, chatErr)
	}
	c.Data(chatErr.Status, core.ContentTypeTextUTF8, []byte(chatErr.Message))
}

// readBodyError maps a failed body read; exceeding the MaxBytesReader cap is a 413
func readBodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return core.ErrPayloadTooLarge(err)
	}
	return core.ErrInvalidRequest(core.MsgInvalidJSON, err)
}
