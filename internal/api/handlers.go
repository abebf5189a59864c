package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/portfolio-content/internal/schema"
	"github.com/nao1215/portfolio-content/pkg/content"
)

// handleSchema はスキーマ定義を返すハンドラ。
func (s *Server) handleSchema() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"types": schema.Types()})
	}
}

// handleValidate はリクエストボディのprojectをスキーマで検証するハンドラ。
// 初期値を適用してから検証し、違反があれば422でフィールドごとのエラーを返す。
func (s *Server) handleValidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p content.Project
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です: " + err.Error()})
			return
		}

		err := schema.Validate(schema.Initialize(p))
		var verrs schema.ValidationErrors
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"valid": true, "errors": []schema.FieldError{}})
		case errors.As(err, &verrs):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "errors": verrs})
		default:
			s.respondInternalError(c, "validation failed", err)
		}
	}
}

// handleListProjects はコンテンツストアから全projectを表示順で返すハンドラ。
func (s *Server) handleListProjects() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := s.store.GetProjects(c.Request.Context())
		if err != nil {
			s.respondUpstreamError(c, "get projects failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"projects": projects,
			"count":    len(projects),
		})
	}
}

// handleGetProject はスラッグが一致するprojectを返すハンドラ。
func (s *Server) handleGetProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		project, err := s.store.GetProjectBySlug(c.Request.Context(), slug)
		if err != nil {
			s.respondUpstreamError(c, "get project failed", err)
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "projectが見つかりません"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// imageQuery は画像URL生成のクエリパラメータ。
type imageQuery struct {
	// Width は幅（w）。
	Width int `form:"w" binding:"omitempty,min=1"`
	// Height は高さ（h）。
	Height int `form:"h" binding:"omitempty,min=1"`
	// Format は出力形式（fm）。
	Format string `form:"fm"`
	// Quality は品質（q）。
	Quality *int `form:"q" binding:"omitempty,min=0,max=100"`
	// Fit は収め方（fit）。
	Fit string `form:"fit"`
}

// handleImageURL はprojectの画像URLを生成するハンドラ。
// クエリパラメータ w, h, fm, q, fit を画像URLの変換オプションとして渡す。
func (s *Server) handleImageURL() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q imageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "クエリパラメータが不正です: " + err.Error()})
			return
		}

		slug := c.Param("slug")
		project, err := s.store.GetProjectBySlug(c.Request.Context(), slug)
		if err != nil {
			s.respondUpstreamError(c, "get project failed", err)
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "projectが見つかりません"})
			return
		}
		if project.Image.Asset.Ref == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "projectに画像が設定されていません"})
			return
		}

		b := s.store.URLFor(project.Image)
		if q.Width > 0 {
			b = b.Width(q.Width)
		}
		if q.Height > 0 {
			b = b.Height(q.Height)
		}
		if q.Format != "" {
			b = b.Format(q.Format)
		}
		if q.Quality != nil {
			b = b.Quality(*q.Quality)
		}
		if q.Fit != "" {
			b = b.Fit(q.Fit)
		}

		u, err := b.URL()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "画像URLの生成に失敗しました: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"slug": slug, "url": u})
	}
}

// handleMirrorProjects はミラーの全projectを返すハンドラ。
func (s *Server) handleMirrorProjects() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := s.mirror.List(c.Request.Context())
		if err != nil {
			s.respondInternalError(c, "list mirrored projects failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"projects": projects,
			"count":    len(projects),
		})
	}
}

// handleMirrorProject はミラーからスラッグが一致するprojectを返すハンドラ。
func (s *Server) handleMirrorProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := s.mirror.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			s.respondInternalError(c, "get mirrored project failed", err)
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "projectが見つかりません"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// handleMirrorEvents はミラーの変更イベントを新しい順に返すハンドラ。
// クエリパラメータ limit で件数を指定する。
func (s *Server) handleMirrorEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは0以上の整数で指定してください"})
				return
			}
			limit = n
		}

		events, err := s.mirror.Events(c.Request.Context(), limit)
		if err != nil {
			s.respondInternalError(c, "list mirror events failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"events": events,
			"count":  len(events),
		})
	}
}

// handleMirrorStatus は最後に完了した同期の結果と複製済みのproject数を返すハンドラ。
func (s *Server) handleMirrorStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		last, err := s.mirror.LastSync(c.Request.Context())
		if err != nil {
			s.respondInternalError(c, "get last sync failed", err)
			return
		}
		count, err := s.mirror.Count(c.Request.Context())
		if err != nil {
			s.respondInternalError(c, "count mirrored projects failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"synced":    last != nil,
			"last_sync": last,
			"projects":  count,
		})
	}
}

// handleSync はミラーの同期を即座に実行するハンドラ。
func (s *Server) handleSync() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.mirror.Sync(c.Request.Context())
		if err != nil {
			s.respondUpstreamError(c, "mirror sync failed", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
