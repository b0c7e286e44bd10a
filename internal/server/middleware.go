package server

import (
	"net/http"
	"slices"
	"strings"

	"resumechat/internal/core"
	"resumechat/internal/util"

	"github.com/gin-gonic/gin"
)

const requestIDKey = "request_id"

func (s *Server) maxBodySizeMiddleware() gin.HandlerFunc {
	limit := s.config.MaxChatBodySize
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// requestIDMiddleware propagates the client's X-Request-ID or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(core.HeaderRequestID))
		if requestID == "" || len(requestID) > 128 {
			requestID = util.GenerateRequestID()
		}
		c.Set(requestIDKey, requestID)
		c.Header(core.HeaderRequestID, requestID)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowed := s.config.CORSAllowOrigins
	if len(allowed) == 0 {
		allowed = []string{core.DefaultCORSOrigin}
	}
	wildcard := slices.Contains(allowed, "*")

	return func(c *gin.Context) {
		if wildcard {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin := c.GetHeader("Origin"); origin != "" && slices.Contains(allowed, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", core.HeaderRequestID)
		c.Header("Access-Control-Max-Age", core.CORSMaxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// recoverPanic renders a JSON 500 instead of gin's bare status
func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.config.Logger.Error("Panic in handler [%s] %s %s: %v", getRequestID(c), c.Request.Method, c.Request.URL.Path, recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, core.ErrorResponse{Error: core.MsgInternalError})
}
