package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/collector"
	"SessionScreener/internal/metrics"
	"SessionScreener/internal/model"
	"SessionScreener/internal/recorder"
	"SessionScreener/internal/screener"
	"SessionScreener/internal/strategy"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	fri := model.NewDate(2025, 3, 7)
	mon := model.NewDate(2025, 3, 10)
	bar := func(d model.Date, h int, o, c float64) model.Bar {
		return model.Bar{Time: time.Date(d.Year, d.Month, d.Day, h, 0, 0, 0, loc), Open: o, High: o + 2, Low: c - 2, Close: c}
	}
	mock := &collector.MockFetcher{Bars: map[string][]model.Bar{
		"AAA": {bar(fri, 16, 100, 101), bar(mon, 4, 101, 102)},
		"BBB": {bar(fri, 16, 50, 49), bar(mon, 4, 51, 49)},
	}}

	act, err := activation.NewManager(catalog.Default(), "")
	require.NoError(t, err)
	rec, err := recorder.NewSQLiteRecorder(t.TempDir() + "/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	reg := metrics.New()
	sc := screener.New(collector.NewCollector(mock, loc), act, strategy.NewEngine(catalog.Default()), loc)
	sc.Metrics = reg

	s := NewServer(":0", Deps{
		Pipeline:   &screener.Pipeline{Screener: sc, Recorder: rec},
		Activation: act,
		Catalog:    catalog.Default(),
		Metrics:    reg,
		Universe:   Universe{Tickers: []string{"AAA", "BBB"}},
		Location:   loc,
	})
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, loc) }
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestConditions_ListAndSet(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/conditions/3", `{"mode":"inverted"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var view conditionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 3, view.ID)
	assert.Equal(t, activation.Inverted, view.Mode)
	assert.Equal(t, catalog.Less, view.Inverse)

	rec = do(t, s, http.MethodGet, "/conditions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var views []conditionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, catalog.Default().Len())
	assert.Equal(t, activation.Inverted, views[2].Mode)
	assert.Equal(t, activation.Inactive, views[0].Mode)

	rec = do(t, s, http.MethodDelete, "/conditions", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.activation.Snapshot().Len())
}

func TestConditions_SetErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/conditions/999", `{"mode":"normal"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/conditions/3", `{"mode":"sideways"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/conditions/3", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/conditions/abc", `{"mode":"normal"}`).Code)
}

func TestConditions_NotInvertible(t *testing.T) {
	cat, err := catalog.New([]catalog.Definition{{ID: 1, Description: "custom", Comparator: catalog.Unknown}})
	require.NoError(t, err)
	act, err := activation.NewManager(cat, "")
	require.NoError(t, err)
	s := NewServer(":0", Deps{Activation: act, Catalog: cat, Location: time.UTC})

	rec := do(t, s, http.MethodPut, "/conditions/1", `{"mode":"inverted"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/conditions/1", `{"mode":"normal"}`).Code)
}

func TestScreenings_DefaultsAndLatest(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/runs/latest", "").Code)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/conditions/3", `{"mode":"normal"}`).Code)

	rec := do(t, s, http.MethodPost, "/screenings", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		ScreeningDate string         `json:"screening_date"`
		Results       []model.Result `json:"results"`
		Lines         []string       `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-03-10", resp.ScreeningDate)
	assert.Equal(t, []string{"1. TickerNo:1 - AAA - Open16h: 100"}, resp.Lines)

	rec = do(t, s, http.MethodGet, "/runs/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TickerNo:1 - AAA")
}

func TestScreenings_UploadedList(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/screenings", `{"date":"2025-03-10","tickers":"NYSE:BBB, NASDAQ:AAA","selected":["AAA"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "1. TickerNo:2 - AAA - Open16h: 100")
}

func TestScreenings_SelectionIsNormalized(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/screenings", `{"date":"2025-03-10","selected":["aaa","NASDAQ:AAA"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1. TickerNo:1 - AAA - Open16h: 100"}, resp.Lines)
}

func TestScreenings_InvalidInput(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/screenings", `{"date":"10/03/2025"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/screenings", `{"tickers":" , "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/screenings", `{`).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/screenings", "").Code)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "screener_runs_total 1")
}
