// Package api はprojectの読み取り用HTTP APIを提供する。
//
// コンテンツストアへの問い合わせをそのまま中継するエンドポイントと、
// ローカルのミラーから読み出すエンドポイントを持つ。リモートへの問い合わせは再試行しない。
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nao1215/portfolio-content/internal/mirror"
	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/event"
	"github.com/nao1215/portfolio-content/pkg/imageurl"
	"github.com/nao1215/portfolio-content/pkg/middleware"
)

// Store はコンテンツストアへの問い合わせ。*sanity.Clientが満たす。
type Store interface {
	GetProjects(ctx context.Context) ([]content.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*content.Project, error)
	URLFor(source any) imageurl.Builder
}

// ReadModel はローカルのミラー。*mirror.Mirrorが満たす。
type ReadModel interface {
	List(ctx context.Context) ([]content.Project, error)
	GetBySlug(ctx context.Context, slug string) (*content.Project, error)
	Count(ctx context.Context) (int, error)
	Events(ctx context.Context, limit int) ([]event.Event, error)
	LastSync(ctx context.Context) (*mirror.SyncResult, error)
	Sync(ctx context.Context) (*mirror.SyncResult, error)
}

// Settings はServerの設定。
type Settings struct {
	// JWTSecret は内部APIのトークン検証に使う署名鍵。空の場合、内部APIは503を返す。
	JWTSecret string
	// CORSOrigins はCORSで許可するオリジン。
	CORSOrigins []string
	// Logger はログ出力先。nilの場合は出力しない。
	Logger *zap.Logger
}

// Server はprojectの読み取りAPIサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store はコンテンツストアのクライアント。
	store Store
	// mirror はローカルのミラー。nilの場合、ミラー系のエンドポイントは503を返す。
	mirror ReadModel
	// logger はログ出力先。
	logger *zap.Logger
}

// NewServer はServerを生成し、ルーティングを設定する。
func NewServer(store Store, readModel ReadModel, settings Settings) *Server {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(settings.CORSOrigins))

	s := &Server{
		router: router,
		store:  store,
		mirror: readModel,
		logger: logger,
	}
	s.setupRoutes(settings.JWTSecret)
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(jwtSecret string) {
	// ヘルスチェック
	s.router.GET("/health", s.handleHealth())

	api := s.router.Group("/api/v1")
	{
		schema := api.Group("/schema")
		{
			// スキーマ定義の取得
			schema.GET("", s.handleSchema())
			// projectの検証
			schema.POST("/validate", s.handleValidate())
		}

		projects := api.Group("/projects")
		{
			// project一覧（コンテンツストアに問い合わせる）
			projects.GET("", s.handleListProjects())
			// スラッグによるproject取得
			projects.GET("/:slug", s.handleGetProject())
			// project画像のURL生成
			projects.GET("/:slug/image", s.handleImageURL())
		}

		mirrored := api.Group("/mirror")
		mirrored.Use(s.requireMirror())
		{
			mirrored.GET("/projects", s.handleMirrorProjects())
			mirrored.GET("/projects/:slug", s.handleMirrorProject())
			mirrored.GET("/events", s.handleMirrorEvents())
			mirrored.GET("/status", s.handleMirrorStatus())
		}

		// 内部API（スコープ付きJWTが必要）
		internal := api.Group("/internal")
		internal.Use(middleware.JWTAuth(jwtSecret, middleware.ScopeSync))
		internal.Use(s.requireMirror())
		{
			internal.POST("/sync", s.handleSync())
		}
	}
}

// handleHealth はヘルスチェックのハンドラ。ミラーがある場合はデータベース接続も確認する。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := s.mirror.(interface{ Ping(context.Context) error }); ok {
			if err := p.Ping(c.Request.Context()); err != nil {
				s.logger.Error("mirror ping failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "portfolio-api"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "portfolio-api"})
	}
}

// requireMirror はミラーが無い場合に503を返すミドルウェア。
func (s *Server) requireMirror() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.mirror == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "ミラーが有効になっていません"})
			return
		}
		c.Next()
	}
}

// respondUpstreamError はコンテンツストアへの問い合わせ失敗を502で返す。
func (s *Server) respondUpstreamError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	_ = c.Error(err)
	c.JSON(http.StatusBadGateway, gin.H{
		"error":      "コンテンツストアへの問い合わせに失敗しました",
		"request_id": middleware.GetRequestID(c),
	})
}

// respondInternalError はローカルの処理失敗を500で返す。
func (s *Server) respondInternalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      "内部サーバーエラーが発生しました",
		"request_id": middleware.GetRequestID(c),
	})
}
