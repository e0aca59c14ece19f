package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/intel"
	"github.com/satark-labs/scamintel/internal/model"
	"github.com/satark-labs/scamintel/internal/source"
	"github.com/satark-labs/scamintel/internal/store"
)

func init() {
	// Replace global logger with a no-op to avoid nil pointer panics in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

type stubFetcher struct {
	items []model.RawReport
}

func (f *stubFetcher) Name() string         { return "stub" }
func (f *stubFetcher) Source() model.Source { return model.SourceNews }
func (f *stubFetcher) Fetch(ctx context.Context) ([]model.RawReport, error) {
	return f.items, nil
}

func newTestServer(t *testing.T, fetchers []source.Fetcher) (*httptest.Server, *intel.Database) {
	t.Helper()

	st := store.NewFile(filepath.Join(t.TempDir(), "cache.json"))
	db := intel.Open(context.Background(), st, fetchers, config.CacheConfig{TTLSecs: 3600, RetentionSize: 15})

	srv := httptest.NewServer(newMux(db))
	t.Cleanup(srv.Close)
	return srv, db
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestServe_Health(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServe_CheckPhone(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t, nil)
	db.AddReport(context.Background(), "+91 98765 43210", "", "News Report")

	var res model.CheckResult
	resp := getJSON(t, srv.URL+"/v1/check/phone?number=9876543210", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.Reports)
	assert.Equal(t, []string{"News Report"}, res.ScamTypes)
}

func TestServe_CheckPhoneMissingParam(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	resp := getJSON(t, srv.URL+"/v1/check/phone", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServe_CheckUPI(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t, nil)
	db.AddReport(context.Background(), "", "Fraudster@UPI", "Consumer Complaint")

	var res model.CheckResult
	resp := getJSON(t, srv.URL+"/v1/check/upi?id=fraudster@upi", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, res.Found)
}

func TestServe_UpdateThenCheck(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{items: []model.RawReport{
		{Title: "Scam calls from 9876543210", Source: model.SourceNews},
	}}
	srv, _ := newTestServer(t, []source.Fetcher{fetcher})

	resp, err := http.Post(srv.URL+"/v1/update", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary model.UpdateSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.TotalReportsFetched)
	assert.Equal(t, 1, summary.NewNumbers)

	var res model.CheckResult
	getJSON(t, srv.URL+"/v1/check/phone?number=9876543210", &res)
	assert.True(t, res.Found)
}

func TestServe_UpdateRejectsGet(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)

	resp := getJSON(t, srv.URL+"/v1/update", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServe_Stats(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t, nil)
	db.AddReport(context.Background(), "9876543210", "", "News Report")

	var stats model.Stats
	resp := getJSON(t, srv.URL+"/v1/stats", &stats)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stats.TotalReports)
	assert.Equal(t, 1, stats.ReportedNumbers)
}

func TestServe_ReportsLimit(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{items: []model.RawReport{
		{Title: "Alert one", Source: model.SourceNews},
		{Title: "Alert two", Source: model.SourceNews},
		{Title: "Alert three", Source: model.SourceNews},
	}}
	srv, db := newTestServer(t, []source.Fetcher{fetcher})
	db.Update(context.Background())

	var reports []model.RawReport
	resp := getJSON(t, srv.URL+"/v1/reports?limit=2", &reports)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, reports, 2)

	resp = getJSON(t, srv.URL+"/v1/reports?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
