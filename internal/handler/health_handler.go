package handler

import (
	"net/http"
	"time"
)

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
// ストレージへの疎通確認は行わない。
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

// Health はプロセスが応答可能であることを返す。
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "LinkVault API is running",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}
