package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/toolshub/internal/security"
)

var templateIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

func (s *Server) registerRoutes(engine *gin.Engine) {
	api := engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/contact", s.handleContact)
	api.GET("/templates/download/:templateId", s.handleTemplateDownload)

	engine.GET("/sitemap.xml", s.handleSitemap)
	engine.GET("/robots.txt", s.handleRobots)

	engine.NoRoute(s.handleStatic)
}

func (s *Server) handleHealth(c *gin.Context) {
	status, err := s.store.Health(c.Request.Context())
	if err != nil {
		s.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status.Status,
		"timestamp": status.Timestamp.Format(time.RFC3339),
	})
}

// handleTemplateDownload describes where a template would be downloaded
// from. Template files themselves are served as static assets.
func (s *Server) handleTemplateDownload(c *gin.Context) {
	id := c.Param("templateId")
	if !templateIDPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Template download endpoint",
		"templateId":  id,
		"downloadUrl": "/templates/" + id + ".pdf",
	})
}

func (s *Server) handleRobots(c *gin.Context) {
	c.String(http.StatusOK, robotsTxt(s.opts.BaseURL))
}

func (s *Server) handleSitemap(c *gin.Context) {
	data, err := buildSitemap(s.opts.BaseURL)
	if err != nil {
		s.logger.Error("failed to build sitemap", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// handleStatic serves files from the static directory. Unknown paths fall
// back to index.html so client-side routes resolve; unknown /api/ paths 404.
func (s *Server) handleStatic(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	// path.Clean on a rooted path drops leading "..", SafeJoin catches the rest.
	rel := filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+reqPath), "/"))
	if full, err := security.SafeJoin(s.opts.StaticDir, rel); err == nil && serveFile(c, full) {
		return
	}
	if serveFile(c, filepath.Join(s.opts.StaticDir, "index.html")) {
		return
	}

	c.String(http.StatusNotFound, "404 page not found")
}

// serveFile writes the regular file at p and reports whether it did.
func serveFile(c *gin.Context, p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}
