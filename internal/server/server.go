// Package server serves the census dashboard: an embedded static page, the
// dataset file itself and small JSON endpoints with precomputed aggregates.
// It never mutates the dataset; the fetcher owns the file.
package server

import (
	"context"
	_ "embed"
	"net/http"
	"os"
	"time"

	"github.com/maxbolgarin/census/internal/dataset"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/census/internal/stats"
	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"
)

//go:embed static/index.html
var indexHTML []byte

// Server is the dashboard HTTP server.
type Server struct {
	config Config
	log    logze.Logger
	server *servex.Server
	cli    *cliex.HTTP
}

// New creates a new dashboard server.
func New(cfg Config) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	cli, err := cliex.New(cliex.WithLogger(log))
	if err != nil {
		return nil, erro.Wrap(err, "failed to create HTTP client")
	}

	h := &Server{
		config: cfg,
		log:    log,
		server: server,
		cli:    cli,
	}

	server.HandleFunc("/", h.handleIndex)
	server.HandleFunc("/index.html", h.handleIndex)
	server.HandleFunc("/dataset.json", h.handleDataset)
	server.HandleFunc("/api/stats", h.handleStats)
	server.HandleFunc("/api/commits", h.handleCommits)
	for name := range assetURLs {
		server.HandleFunc("/assets/"+name, h.handleAsset)
	}

	return h, nil
}

// Start starts the dashboard server.
func (h *Server) Start(ctx context.Context) error {
	if h.config.FetchAssets {
		h.ensureAssets(ctx)
	}
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the dashboard server.
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleDataset serves the raw dataset file, proxying the configured remote
// URL when the local file does not exist.
func (h *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	raw, err := h.loadRaw(r.Context())
	if err != nil {
		ctx.InternalServerError(err, "dataset unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// handleStats returns the derived aggregates of the current dataset. A
// malformed dataset yields the validation report, not a crash.
func (h *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	ds, report, err := h.loadValidated(r.Context())
	if err != nil {
		ctx.InternalServerError(err, "dataset unavailable")
		return
	}
	if !report.OK() {
		ctx.Response(http.StatusUnprocessableEntity, report)
		return
	}

	ctx.Response(http.StatusOK, stats.Summarize(ds.Commits))
}

// handleCommits returns filtered and sorted records. Filtering happens over
// the loaded in-memory sequence; nothing is re-fetched per request change.
func (h *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	filter, key, desc, err := parseQuery(r)
	if err != nil {
		ctx.BadRequest(err, "invalid query parameters")
		return
	}

	ds, report, err := h.loadValidated(r.Context())
	if err != nil {
		ctx.InternalServerError(err, "dataset unavailable")
		return
	}
	if !report.OK() {
		ctx.Response(http.StatusUnprocessableEntity, report)
		return
	}

	records := filter.Apply(ds.Commits)
	if key != "" {
		records = stats.SortRecords(records, key, desc)
	}

	ctx.Response(http.StatusOK, records)
}

// loadRaw reads the dataset with the documented fallback order: the local
// path first, then the configured remote URL.
func (h *Server) loadRaw(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(h.config.DatasetPath)
	if err == nil {
		return raw, nil
	}
	if !os.IsNotExist(err) {
		return nil, errm.Wrap(err, "read dataset file")
	}
	if h.config.RemoteDatasetURL == "" {
		return nil, errm.Wrap(err, "dataset file not found and no remote URL configured")
	}

	h.log.Debug("local dataset missing, falling back to remote", "url", h.config.RemoteDatasetURL)

	resp, err := h.cli.Get(ctx, h.config.RemoteDatasetURL)
	if err != nil {
		return nil, errm.Wrap(err, "fetch remote dataset")
	}
	return resp.Body(), nil
}

func (h *Server) loadValidated(ctx context.Context) (*model.Dataset, *dataset.Report, error) {
	raw, err := h.loadRaw(ctx)
	if err != nil {
		return nil, nil, err
	}

	ds, err := dataset.Parse(raw)
	if err != nil {
		report := &dataset.Report{Issues: []dataset.Issue{{Index: -1, Reason: err.Error()}}}
		return nil, report, nil
	}

	return ds, dataset.Validate(ds), nil
}

func parseQuery(r *http.Request) (stats.Filter, stats.SortKey, bool, error) {
	q := r.URL.Query()

	filter := stats.Filter{
		Repo:   q.Get("repo"),
		Author: q.Get("author"),
	}

	if from := q.Get("from"); from != "" {
		t, err := parseDay(from, false)
		if err != nil {
			return filter, "", false, errm.Wrap(err, "invalid 'from' date")
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseDay(to, true)
		if err != nil {
			return filter, "", false, errm.Wrap(err, "invalid 'to' date")
		}
		filter.To = t
	}

	var key stats.SortKey
	switch q.Get("sort") {
	case "":
	case "date":
		key = stats.SortByDate
	case "repo":
		key = stats.SortByRepo
	default:
		return filter, "", false, errm.New("sort must be 'date' or 'repo'")
	}

	desc := q.Get("order") == "desc"

	return filter, key, desc, nil
}

// parseDay accepts YYYY-MM-DD or RFC 3339; a bare 'to' day is extended to
// its last second so the range stays inclusive.
func parseDay(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, time.UTC); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
