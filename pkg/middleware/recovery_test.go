package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestRecovery はRecoveryミドルウェアを検証する。
func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("パニックが発生した場合500とリクエストIDが返ること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID(), Recovery(nil))
		router.GET("/panic", func(_ *gin.Context) {
			panic("テスト用パニック")
		})

		w := serve(router, http.MethodGet, "/panic", map[string]string{HeaderRequestID: "req-1"})

		if w.Code != http.StatusInternalServerError {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["error"] != "内部サーバーエラーが発生しました" {
			t.Errorf("error = %q, want %q", body["error"], "内部サーバーエラーが発生しました")
		}
		if body["request_id"] != "req-1" {
			t.Errorf("request_id = %q, want %q", body["request_id"], "req-1")
		}
	})

	t.Run("パニックがerrorレベルでログに記録されること", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zapcore.DebugLevel)
		router := gin.New()
		router.Use(Recovery(zap.New(core)))
		router.POST("/panic-post", func(_ *gin.Context) {
			panic(42)
		})

		w := serve(router, http.MethodPost, "/panic-post", nil)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		entries := logs.FilterMessage("panic recovered").All()
		if len(entries) != 1 {
			t.Fatalf("ログ件数 = %d, want 1", len(entries))
		}
		if entries[0].Level != zapcore.ErrorLevel {
			t.Errorf("ログレベル = %v, want %v", entries[0].Level, zapcore.ErrorLevel)
		}
		if got := entries[0].ContextMap()["path"]; got != "/panic-post" {
			t.Errorf("path = %v, want %q", got, "/panic-post")
		}
	})

	t.Run("パニック後もサーバーが次のリクエストを処理できること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(nil))
		router.GET("/panic", func(_ *gin.Context) {
			panic(http.ErrAbortHandler)
		})
		router.GET("/ok", okHandler)

		if w := serve(router, http.MethodGet, "/panic", nil); w.Code != http.StatusInternalServerError {
			t.Errorf("1回目のステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if w := serve(router, http.MethodGet, "/ok", nil); w.Code != http.StatusOK {
			t.Errorf("2回目のステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})
}
