package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendboard/internal/analytics"
	"spendboard/internal/cache"
	"spendboard/internal/dataset"
	applog "spendboard/internal/log"
	"spendboard/internal/risk"
)

const maxParamLen = 200

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready once a dataset has been loaded, the templates
// parsed and the history database, when configured, answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	st := s.deps.Store.Status()
	ds := map[string]interface{}{
		"state":        st.State,
		"source":       st.Source,
		"last_success": st.LastSuccess,
	}
	if st.LastError != "" {
		ds["last_error"] = st.LastError
	}
	if !s.deps.Store.Ready() {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}
	checks["dataset"] = ds

	if s.deps.History != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		if err := s.deps.History.Ping(ctx); err != nil {
			checks["history"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["history"] = "ok"
		}
		cancel()
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	checks["suspicious_requests"] = s.detector.SuspiciousRequests()

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("页面不存在").Write(w)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowedError("GET, HEAD").Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Status dataset.Status
	}{
		Status: s.deps.Store.Status(),
	}
	s.render(w, r, http.StatusOK, "index.html", data)
}

// tab serves one tab partial. Rendered bodies are cached per dataset
// fingerprint and selection.
func (s *Server) tab(view string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			MethodNotAllowedError("GET").Write(w)
			return
		}
		if s.templates == nil {
			InternalServerError("模板未加载").Write(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		ds, err := s.deps.Store.Current(ctx)
		if err != nil {
			s.renderLoadError(w, r, err)
			return
		}

		sel := parseSelections(r).resolve(view, ds, s.register())
		key := cache.Key(ds.Fingerprint, view, sel.params()...)
		if body, ok := s.cacheGet(ctx, key); ok {
			writeHTML(w, body)
			return
		}

		data := s.viewData(ctx, view, ds, sel)
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, view, data); err != nil {
			applog.FromContext(ctx).LogError(ctx, "Tab template execution failed", err, applog.OpRender,
				applog.NewFields().WithDataset(ds.Fingerprint, ds.Source, len(ds.Warnings)))
			InternalServerError("页面渲染失败").Write(w)
			return
		}
		s.cacheSet(ctx, key, buf.Bytes())
		writeHTML(w, buf.Bytes())
	})
}

func (s *Server) viewData(ctx context.Context, view string, ds *dataset.Dataset, sel selections) any {
	prefixes := s.deps.RegionPrefixes
	switch view {
	case "overview":
		return newOverviewView(ds, prefixes)
	case "categories":
		return newCategoriesView(ds, sel, prefixes)
	case "suppliers":
		return newSuppliersView(ds, sel, prefixes)
	case "risks":
		return newRisksView(ds, s.register(), s.tracking(ctx, ds), sel, prefixes)
	}
	return newDataView(ds, sel, prefixes)
}

func (s *Server) register() *risk.Register {
	if s.deps.Register == nil {
		return &risk.Register{}
	}
	return s.deps.Register
}

// tracking returns nil when no history is available.
func (s *Server) tracking(ctx context.Context, ds *dataset.Dataset) *risk.Tracking {
	if s.deps.Tracker == nil {
		return nil
	}
	t, err := s.deps.Tracker.Tracking(ctx, ds)
	if err != nil {
		applog.FromContext(ctx).Warn("Risk tracking unavailable", applog.FieldError, err)
		return nil
	}
	return &t
}

// renderLoadError shows the load failure in place of the tab. The 503 is
// swapped in by the client.
func (s *Server) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	st := s.deps.Store.Status()
	applog.FromContext(ctx).LogError(ctx, "Dataset unavailable", err, applog.OpLoad,
		applog.NewFields().WithDataset(st.Fingerprint, st.Source, st.Warnings))

	data := struct {
		Message string
		Status  dataset.Status
	}{
		Message: err.Error(),
		Status:  st,
	}
	s.render(w, r, http.StatusServiceUnavailable, "error_panel", data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("模板未加载").Write(w)
		return
	}
	data := struct {
		Status dataset.Status
		Ready  bool
	}{
		Status: s.deps.Store.Status(),
		Ready:  s.deps.Store.Ready(),
	}
	s.render(w, r, http.StatusOK, "status", data)
}

// handleRefresh forces a reload and tells the page to re-render.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	before := s.deps.Store.Status().Fingerprint
	logger := applog.FromContext(ctx)
	ds, err := s.deps.Store.Refresh(ctx)
	if err != nil {
		logger.LogError(ctx, "Manual refresh failed", err, applog.OpRefresh, nil)
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerDatasetRefreshed(before, false).
			TriggerErrorNotification("数据刷新失败: " + err.Error()).
			BodyHTML(`<span class="error">数据刷新失败</span>`).
			Write(w)
		return
	}

	changed := ds.Fingerprint != before
	logger.Info("Manual refresh completed",
		applog.FieldOperation, applog.OpRefresh,
		applog.FieldFingerprint, ds.Fingerprint,
		"changed", changed)
	NewHTMXResponse().
		TriggerDatasetRefreshed(ds.Fingerprint, changed).
		TriggerSuccessNotification("数据已刷新").
		BodyHTML(`<span class="success">数据已刷新</span>`).
		Write(w)
}

// handleChart serves Chart.js JSON for /api/charts/{name}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/charts/")
	if _, ok := charts[name]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown chart: " + name})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	ds, err := s.deps.Store.Current(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	category := pick(analytics.Categories(ds), sanitizeInput(r.URL.Query().Get("category")))
	key := cache.Key(ds.Fingerprint, "chart", name, category)
	if body, ok := s.cacheGet(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	chart, err := buildChart(name, ds, chartParams{
		Category: category,
		Prefixes: s.deps.RegionPrefixes,
		Register: s.deps.Register,
	})
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	body, err := json.Marshal(chart)
	if err != nil {
		applog.FromContext(ctx).LogError(ctx, "Chart encoding failed", err, applog.OpRender,
			applog.NewFields().WithDataset(ds.Fingerprint, ds.Source, len(ds.Warnings)))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "chart encoding failed"})
		return
	}
	s.cacheSet(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

type summaryResponse struct {
	Fingerprint        string          `json:"fingerprint"`
	Source             string          `json:"source"`
	LoadedAt           time.Time       `json:"loaded_at"`
	Factories          int             `json:"factories"`
	Suppliers          int             `json:"suppliers"`
	Subcategories      int             `json:"subcategories"`
	Warnings           int             `json:"warnings"`
	Total2024          decimal.Decimal `json:"total_2024"`
	Total2025          decimal.Decimal `json:"total_2025"`
	Growth             string          `json:"growth"`
	Top5Share          float64         `json:"top5_share"`
	Top10Share         float64         `json:"top10_share"`
	HighDependency     int             `json:"high_dependency"`
	SignificantDecline int             `json:"significant_decline"`
	ExposedSuppliers   int             `json:"exposed_suppliers"`
	RecordTotal2024    decimal.Decimal `json:"record_total_2024"`
	RecordTotal2025    decimal.Decimal `json:"record_total_2025"`
	Plants             []groupTotal    `json:"plants"`
	TopSuppliers       []groupTotal    `json:"top_suppliers"`
	TopSubcategories   []groupTotal    `json:"top_subcategories"`
}

// groupTotal is one group-by row over the unpivoted supplier records.
type groupTotal struct {
	Name   string          `json:"name"`
	Y2024  decimal.Decimal `json:"y2024"`
	Y2025  decimal.Decimal `json:"y2025"`
	Growth string          `json:"growth"`
}

const summaryTopN = 5

func groupTotals(groups []analytics.Group, n int) []groupTotal {
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	out := make([]groupTotal, len(groups))
	for i, g := range groups {
		out[i] = groupTotal{Name: g.Key, Y2024: g.Y2024, Y2025: g.Y2025, Growth: g.Growth().Label()}
	}
	return out
}

func newSummary(ds *dataset.Dataset, reg *risk.Register) summaryResponse {
	counts := ds.Counts()
	conc := analytics.SupplierConcentration(ds)
	ind := risk.ComputeIndicators(ds)
	records := ds.Records()
	recordTotal := analytics.SumRecords(records)

	plants := groupTotals(analytics.ByFactory(records), 0)
	for i := range plants {
		plants[i].Name = plantLabel(plants[i].Name)
	}

	var totals analytics.Totals
	if t, ok := ds.Total(); ok {
		totals = analytics.Totals{Y2024: t.Actual2024, Y2025: t.Forecast2025}
	} else {
		totals = analytics.NewOverview(ds, nil).Total
	}
	return summaryResponse{
		Fingerprint:        ds.Fingerprint,
		Source:             ds.Source,
		LoadedAt:           ds.LoadedAt,
		Factories:          counts.Factories,
		Suppliers:          counts.Suppliers,
		Subcategories:      counts.Subcategories,
		Warnings:           len(ds.Warnings),
		Total2024:          totals.Y2024,
		Total2025:          totals.Y2025,
		Growth:             totals.Growth().Label(),
		Top5Share:          conc.Top5Share,
		Top10Share:         conc.Top10Share,
		HighDependency:     ind.HighDependency,
		SignificantDecline: len(ind.SignificantDecline),
		ExposedSuppliers:   risk.ExposedSuppliers(reg, ds),
		RecordTotal2024:    recordTotal.Y2024,
		RecordTotal2025:    recordTotal.Y2025,
		Plants:             plants,
		TopSuppliers:       groupTotals(analytics.BySupplier(records), summaryTopN),
		TopSubcategories:   groupTotals(analytics.BySubcategory(records), summaryTopN),
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	ds, err := s.deps.Store.Current(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newSummary(ds, s.register()))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", applog.FieldError, err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	body, ok := s.deps.Cache.Get(ctx, key)
	if s.deps.Metrics != nil {
		if ok {
			s.deps.Metrics.CacheHit()
		} else {
			s.deps.Metrics.CacheMiss()
		}
	}
	return body, ok
}

func (s *Server) cacheSet(ctx context.Context, key string, body []byte) {
	if s.deps.Cache == nil {
		return
	}
	s.deps.Cache.Set(ctx, key, body)
}

func parseSelections(r *http.Request) selections {
	q := r.URL.Query()
	return selections{
		Category:    sanitizeInput(q.Get("category")),
		Detail:      sanitizeInput(q.Get("detail")),
		Tier:        sanitizeInput(q.Get("tier")),
		Risk:        sanitizeInput(q.Get("risk")),
		Subcategory: sanitizeInput(q.Get("subcategory")),
	}
}

// sanitizeInput removes control characters, trims whitespace and caps the length.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxParamLen {
		s = string(r[:maxParamLen])
	}
	return s
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSONBytes(w, status, body)
}

func writeJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
