package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/core"
	"chitieu/internal/memory"
	"chitieu/internal/services"
)

type fixedParser struct {
	results map[string]core.ParsedClause
}

func (p *fixedParser) ParseClause(_ context.Context, clause string) (core.ParsedClause, error) {
	if parsed, ok := p.results[clause]; ok {
		return parsed, nil
	}
	return core.ParsedClause{Amount: 1000, Category: "Khác", Description: clause}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	parser := &fixedParser{results: map[string]core.ParsedClause{
		"35k ăn sáng": {Amount: 35000, Category: "Ăn uống hằng ngày", Description: "ăn sáng"},
		"cafe 115k":   {Amount: 115000, Category: "Ăn uống hằng ngày", Description: "cafe"},
	}}
	s := NewServer(":0", services.NewTracker(store, parser, nil, nil))
	srv := httptest.NewServer(s.Server.Handler)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return srv, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeEntries(t *testing.T, resp *http.Response) []core.Entry {
	t.Helper()
	defer resp.Body.Close()
	var payload entriesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Entries
}

func TestAddSpendingEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/entries", `{"text":"35k ăn sáng, cafe 115k","date":"2025-01-05"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	entries := decodeEntries(t, resp)
	require.Len(t, entries, 2)
	assert.Equal(t, core.CategoryFood, entries[0].Category)
	assert.Equal(t, core.CategoryHangOut, entries[1].Category, "cafe clause is overridden to hang out")
	assert.Equal(t, "2025-01-05", entries[0].Date.String())
}

func TestAddSpendingEmptyText(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/entries", `{"text":" , , "}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddSpendingInvalidDate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/entries", `{"text":"35k ăn sáng","date":"05/01/2025"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEntries(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddBatch(context.Background(), []core.Entry{
		{ID: "jan", Date: core.NewDate(2025, 1, 5), Amount: 100, Category: core.CategoryFood},
		{ID: "feb", Date: core.NewDate(2025, 2, 5), Amount: 200, Category: core.CategoryFood},
	}))

	resp, err := http.Get(srv.URL + "/api/entries")
	require.NoError(t, err)
	assert.Len(t, decodeEntries(t, resp), 2)

	resp, err = http.Get(srv.URL + "/api/entries?year=2025&month=1")
	require.NoError(t, err)
	entries := decodeEntries(t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, "jan", entries[0].ID)
}

func TestDeleteEntryRequiresConfirmation(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddBatch(context.Background(), []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 100, Category: core.CategoryFood},
	}))

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/entries/a", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/entries/a?confirm=true", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/entries/a?confirm=true", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearEntriesRequiresConfirmation(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.AddBatch(ctx, []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 100, Category: core.CategoryFood},
	}))

	resp := postJSON(t, srv.URL+"/api/entries/clear", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/entries/clear?confirm=true", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	remaining, _ := store.List(ctx)
	assert.Empty(t, remaining)
}

func TestSummaryEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.UpdateSettings(ctx, core.Settings{MonthlyBudget: 1000000}))
	require.NoError(t, store.AddBatch(ctx, []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 35000, Category: core.CategoryFood},
		{ID: "b", Date: core.NewDate(2025, 1, 5), Amount: 115000, Category: core.CategoryHangOut},
	}))

	resp, err := http.Get(srv.URL + "/api/summary?date=2025-01-05")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary core.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, int64(150000), summary.DailyTotal)
	assert.Equal(t, int64(150000), summary.MonthlyTotal)
	assert.Equal(t, int64(850000), summary.RemainingBalance)
	assert.Equal(t, int64(115000), summary.ByCategory[core.CategoryHangOut])
}

func TestCalendarEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddBatch(context.Background(), []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 9, 1), Amount: 50000, Category: core.CategoryFood},
	}))

	resp, err := http.Get(srv.URL + "/api/calendar?year=2025&month=9")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cal services.CalendarMonth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cal))
	assert.Equal(t, 30, cal.Days)
	assert.Equal(t, 0, cal.Padding)
	assert.Equal(t, int64(50000), cal.DailyTotals[1])
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/calendar?year=2025&month=13")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddBatch(context.Background(), []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 35000, Category: core.CategoryFood, Description: "ăn sáng"},
	}))

	resp, err := http.Get(srv.URL + "/api/export?mode=month&year=2025&month=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Bao_cao_month.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.HasPrefix(text, "\ufeff"), "CSV must start with a BOM")
	assert.Contains(t, text, "Ngày,Mô tả,Danh mục,Số tiền")
	assert.Contains(t, text, "Tổng cộng,,,35000")
}

func TestExportNoDataReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/export?mode=month&year=2030&month=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportRejectsInvalidMode(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/export?mode=week&year=2025&month=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/settings",
		strings.NewReader(`{"monthlyBudget":2000000,"darkMode":true,"webhookUrl":"https://example.com/hook"}`))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/settings")
	require.NoError(t, err)
	defer resp.Body.Close()

	var settings core.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	assert.Equal(t, int64(2000000), settings.MonthlyBudget)
	assert.True(t, settings.DarkMode)
	assert.Equal(t, "https://example.com/hook", settings.WebhookURL)
}

func TestSettingsRejectNegativeBudget(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/settings",
		strings.NewReader(`{"monthlyBudget":-1}`))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoryChartEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.AddBatch(context.Background(), []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 35000, Category: core.CategoryFood},
	}))

	resp, err := http.Get(srv.URL + "/api/charts/categories.png?year=2025&month=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, _ := io.ReadAll(resp.Body)
	assert.True(t, len(body) > 4 && body[1] == 'P' && body[2] == 'N' && body[3] == 'G')
}

func TestCategoryChartNoData(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/charts/categories.png?year=2030&month=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/entries", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Allow"), http.MethodPost)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
