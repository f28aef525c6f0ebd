package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the compiled frontend from the configured directory.
// Without a frontend the root path reports API status instead.
func (s *Server) mountStatic() {
	s.engine.NoRoute(s.handleNoRoute)

	if s.opts.StaticDir == "" {
		s.logger.Debug("static directory not configured; API only mode")
		s.engine.GET("/", s.handleRoot)
		return
	}

	info, err := os.Stat(s.opts.StaticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing; API only mode", "path", s.opts.StaticDir, "error", err)
		s.engine.GET("/", s.handleRoot)
		return
	}

	indexPath := filepath.Join(s.opts.StaticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		s.engine.GET("/", s.handleRoot)
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		s.engine.NoRoute(func(c *gin.Context) {
			if s.isAPIPath(c.Request.URL.Path) || c.Request.Method != http.MethodGet {
				s.handleNoRoute(c)
				return
			}
			c.File(indexPath)
		})
	}

	assetsDir := filepath.Join(s.opts.StaticDir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	favicon := filepath.Join(s.opts.StaticDir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

// isAPIPath reports whether path belongs to the API. With an empty prefix the
// API shares the root, so unmatched GETs fall through to the frontend.
func (s *Server) isAPIPath(path string) bool {
	if s.opts.APIPrefix == "" {
		return false
	}
	return path == s.opts.APIPrefix || strings.HasPrefix(path, s.opts.APIPrefix+"/")
}

func (s *Server) handleNoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
}
