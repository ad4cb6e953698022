package http

import (
	nethttp "net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"persona/backend/pkg/logger"
)

const (
	cacheNoStore   = "no-cache"
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheShort     = "public, max-age=3600"
)

// registerStatic hosts the chat widget build. The shell page is always
// revalidated so a deploy picks up new bundles; fingerprinted bundles under
// assets/ never change and are cached for a year.
func registerStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	indexPath := filepath.Join(dir, "index.html")
	if info, err := os.Stat(indexPath); err != nil || info.IsDir() {
		logger.Warn("static index not found, serving api only", "path", indexPath)
		return
	}

	files := nethttp.FileServer(nethttp.Dir(dir))
	serveIndex := func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, cacheNoStore)
		return c.File(indexPath)
	}

	e.GET("/*", func(c echo.Context) error {
		requestPath := c.Request().URL.Path
		if isAPIPath(requestPath) {
			return echo.ErrNotFound
		}

		name := strings.TrimPrefix(path.Clean("/"+requestPath), "/")
		if name == "" || name == "index.html" {
			return serveIndex(c)
		}
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil || info.IsDir() {
			// Client-side routes of the widget fall back to the shell.
			return serveIndex(c)
		}

		c.Response().Header().Set(echo.HeaderCacheControl, assetCachePolicy(name))
		files.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/") || p == "/metrics" || strings.HasPrefix(p, "/swagger/")
}

func assetCachePolicy(name string) string {
	if strings.HasPrefix(name, "assets/") {
		return cacheImmutable
	}
	return cacheShort
}
