package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定名・ラベルのメトリクスを返す。見つからない場合はnil。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DoubleRegister_Panics は同一レジストリへの二重登録がパニックすることを検証する。
func TestNewCollector_DoubleRegister_Panics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/links", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/links", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/links", 401, time.Millisecond)

	m := findMetric(t, reg, "linkvault_http_requests_total", map[string]string{"method": "GET", "route": "/api/links", "status": "200"})
	if m == nil {
		t.Fatal("linkvault_http_requests_total{status=200} not found")
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}

	h := findMetric(t, reg, "linkvault_http_request_duration_seconds", map[string]string{"method": "GET", "route": "/api/links"})
	if h == nil {
		t.Fatal("linkvault_http_request_duration_seconds not found")
	}
	if got := h.GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("sample count = %d, want 3", got)
	}
}

func TestRecordHTTPRequest_EmptyRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "", 404, time.Millisecond)

	if findMetric(t, reg, "linkvault_http_requests_total", map[string]string{"route": "unmatched"}) == nil {
		t.Error("unmatched route label not recorded")
	}
}

func TestRecordCollectionMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCollectionMutation("add_link")
	c.RecordCollectionMutation("add_link")
	c.RecordCollectionMutation("delete")

	m := findMetric(t, reg, "linkvault_collection_mutations_total", map[string]string{"op": "add_link"})
	if m == nil || m.GetCounter().GetValue() != 2 {
		t.Errorf("add_link mutations = %v, want 2", m)
	}
}

func TestRecordAuthEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthEvent("login_failed")

	m := findMetric(t, reg, "linkvault_auth_events_total", map[string]string{"event": "login_failed"})
	if m == nil || m.GetCounter().GetValue() != 1 {
		t.Errorf("login_failed events = %v, want 1", m)
	}
}

// TestHandler_ServesMetrics はスクレイプ用ハンドラーがメトリクスを返すことを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthEvent("registered")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "linkvault_auth_events_total") {
		t.Error("response should contain linkvault_auth_events_total metric")
	}
}
