package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxbolgarin/census/internal/dataset"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/census/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestDataset(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.json")
	ds := &model.Dataset{
		Meta: model.Meta{
			Source:     "GitHub Search API (commits)",
			Query:      "Sure! Pl",
			DateField:  "committer",
			Start:      "2024-01-01",
			End:        "2024-01-02",
			FetchedAt:  time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			TotalCount: 2,
		},
		Commits: []model.CommitRecord{
			{
				SHA: "a1", Repo: "x/y", Message: "Sure! Pl deploy", AuthorLogin: "bob",
				CommitterDate: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			},
			{
				SHA: "b2", Repo: "z/w", Message: "Sure! Pl merge", AuthorLogin: "alice",
				CommitterDate: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	require.NoError(t, dataset.Save(path, ds))
	return path
}

func newTestServer(t *testing.T, datasetPath string) *Server {
	t.Helper()

	h, err := New(Config{
		Address:     "127.0.0.1:0",
		DatasetPath: datasetPath,
	})
	require.NoError(t, err)
	return h
}

func TestHandleIndex(t *testing.T) {
	h := newTestServer(t, writeTestDataset(t))

	rec := httptest.NewRecorder()
	h.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Commit Census")
	assert.Contains(t, rec.Body.String(), "Methodology caveats")
}

func TestHandleDataset(t *testing.T) {
	h := newTestServer(t, writeTestDataset(t))

	rec := httptest.NewRecorder()
	h.handleDataset(rec, httptest.NewRequest(http.MethodGet, "/dataset.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	ds, err := dataset.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Meta.TotalCount)
}

func TestHandleStats(t *testing.T) {
	h := newTestServer(t, writeTestDataset(t))

	rec := httptest.NewRecorder()
	h.handleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
	assert.Contains(t, rec.Body.String(), `"distinct_repos":2`)
	assert.Contains(t, rec.Body.String(), `"distinct_authors":2`)
}

func TestHandleStatsMalformedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"commits": "not an array"}`), 0o644))
	h := newTestServer(t, path)

	rec := httptest.NewRecorder()
	h.handleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	// A malformed dataset yields the validation report, never a crash.
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCommitsFilter(t *testing.T) {
	h := newTestServer(t, writeTestDataset(t))

	rec := httptest.NewRecorder()
	h.handleCommits(rec, httptest.NewRequest(http.MethodGet, "/api/commits?repo=x/y", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a1")
	assert.NotContains(t, rec.Body.String(), "b2")
}

func TestHandleCommitsBadQuery(t *testing.T) {
	h := newTestServer(t, writeTestDataset(t))

	rec := httptest.NewRecorder()
	h.handleCommits(rec, httptest.NewRequest(http.MethodGet, "/api/commits?sort=stars", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/commits?repo=x&author=bob&from=2024-01-01&to=2024-01-02&sort=repo&order=desc", nil)

	filter, key, desc, err := parseQuery(r)
	require.NoError(t, err)

	assert.Equal(t, "x", filter.Repo)
	assert.Equal(t, "bob", filter.Author)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filter.From)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC), filter.To)
	assert.Equal(t, stats.SortByRepo, key)
	assert.True(t, desc)
}

func TestParseQueryErrors(t *testing.T) {
	for _, target := range []string{
		"/api/commits?from=January",
		"/api/commits?to=01.02.2024",
		"/api/commits?sort=author",
	} {
		_, _, _, err := parseQuery(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Error(t, err, target)
	}
}

func TestLoadRawFallsBackToRemote(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"meta":{"query":"Sure! Pl"},"commits":[]}`))
	}))
	defer remote.Close()

	h, err := New(Config{
		Address:          "127.0.0.1:0",
		DatasetPath:      filepath.Join(t.TempDir(), "missing.json"),
		RemoteDatasetURL: remote.URL,
	})
	require.NoError(t, err)

	raw, err := h.loadRaw(t.Context())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Sure! Pl")
}

func TestLoadRawMissingEverywhere(t *testing.T) {
	h := newTestServer(t, filepath.Join(t.TempDir(), "missing.json"))

	_, err := h.loadRaw(t.Context())
	assert.Error(t, err)
}
