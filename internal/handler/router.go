package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/linkvault/internal/metrics"
	"github.com/hitoshi/linkvault/internal/middleware"
	"github.com/hitoshi/linkvault/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter // nilの場合はレート制限しない
	Logger            *slog.Logger

	// サービス
	AuthService       AuthServiceInterface
	CollectionService CollectionServiceInterface

	// メトリクス。Metricsがnilの場合は記録しない。Gathererがnilの場合は/metricsを公開しない。
	Metrics  middleware.HTTPMetricsRecorder
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認証済みルートには Auth → RateLimit(General)、登録・ログインには RateLimit(Auth) を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	// サブルーターに引き継がれるよう、ルート定義より前に設定する
	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	authHandler := NewAuthHandler(deps.AuthService)
	collectionHandler := NewCollectionHandler(deps.CollectionService)
	healthHandler := NewHealthHandler()

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// --- 認証不要のルート ---
		r.Route("/auth", func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.AuthMiddleware())
			}
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Auth → RateLimit(General)
		r.Route("/links", func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.GeneralMiddleware())
			}

			r.Get("/", collectionHandler.List)
			r.Post("/", collectionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", collectionHandler.Delete)
				r.Post("/link", collectionHandler.AddLink)
				r.Put("/link/{linkID}", collectionHandler.UpdateLink)
				r.Delete("/link/{linkID}", collectionHandler.RemoveLink)
			})
		})
	})

	return r
}

// routeNotFound は未定義ルートへのアクセスに404を返す。
func routeNotFound(w http.ResponseWriter, r *http.Request) {
	writeAPIErrorResponse(w, http.StatusNotFound, model.NewRouteNotFoundError())
}
