package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// serveAsset streams the file behind the request path
func (s *Server) serveAsset(c *gin.Context) {
	asset, err := s.assets.Open(c.Request.URL.EscapedPath())
	if err != nil {
		s.respondWithAssetError(c, err)
		return
	}
	defer func() { _ = asset.Close() }()

	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", asset.ContentType)
		c.Header("Content-Length", strconv.FormatInt(asset.Size, 10))
		c.Status(http.StatusOK)
		return
	}

	c.DataFromReader(http.StatusOK, asset.Size, asset.ContentType, asset.File, nil)
}
