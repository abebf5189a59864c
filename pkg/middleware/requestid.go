package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/portfolio-content/pkg/httpclient"
)

// HeaderRequestID はリクエストIDを運ぶHTTPヘッダー。
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "request_id"

// maxRequestIDLength は受け入れるリクエストIDの最大長。これを超える値は新しいIDに置き換える。
const maxRequestIDLength = 128

// RequestID はリクエストごとにIDを割り当てるGinミドルウェアを返す。
// クライアントがX-Request-IDを送った場合はそれを使い、無ければUUIDを生成する。
// IDはレスポンスヘッダーと、コンテンツストアへの送信リクエストにも引き継がれる。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。RequestIDが未適用なら空文字列を返す。
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(contextKeyRequestID)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}
