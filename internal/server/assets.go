package server

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// Chart library is pinned so the dashboard renders the same everywhere and
// keeps working offline once the asset is cached.
var assetURLs = map[string]string{
	"chart.umd.min.js": "https://cdn.jsdelivr.net/npm/chart.js@4.4.3/dist/chart.umd.min.js",
}

// ensureAssets downloads missing dashboard assets. Best effort: the page
// degrades to a plain table without the chart library.
func (h *Server) ensureAssets(ctx context.Context) {
	if err := os.MkdirAll(h.config.AssetsDir, 0o755); err != nil {
		h.log.Warn("cannot create assets dir", "dir", h.config.AssetsDir, "error", err)
		return
	}

	for name, url := range assetURLs {
		target := filepath.Join(h.config.AssetsDir, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}

		h.log.Info("downloading asset", "name", name)

		resp, err := h.cli.Get(ctx, url)
		if err != nil {
			h.log.Warn("failed to download asset", "name", name, "error", err)
			continue
		}
		if err := os.WriteFile(target, resp.Body(), 0o644); err != nil {
			h.log.Warn("failed to save asset", "name", name, "error", err)
		}
	}
}

func (h *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := path.Base(r.URL.Path)
	if _, ok := assetURLs[name]; !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.config.AssetsDir, name))
}
