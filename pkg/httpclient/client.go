package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout は1リクエストあたりのタイムアウト。
const defaultTimeout = 30 * time.Second

// Client はJSON APIを呼び出すHTTPクライアント。
// リトライは行わず、1回の呼び出しにつき1リクエストを送信する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。テストではモックのトランスポートを差し込む。
	httpClient *http.Client
	// baseURL は接続先APIのベースURL。
	baseURL string
	// token はAuthorizationヘッダーに付与するBearerトークン。空の場合は付与しない。
	token string
	// userAgent はUser-Agentヘッダーの値。
	userAgent string
}

// Option はClientの生成時に適用する設定。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken はBearerトークンを設定する。
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent はUser-Agentヘッダーを設定する。
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先APIのベースURL（例: "https://tirssn7e.apicdn.sanity.io"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:   baseURL,
		userAgent: "portfolio-content",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError は2xx以外のレスポンスを表す。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ。
	Body []byte
}

// Error はエラーメッセージを返す。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, string(e.Body))
}

// GetJSON は指定パスにGETリクエストを送信する。
// queryはURLクエリパラメータ（nil可）。レスポンスボディをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, result)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, result)
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// コンテキストからリクエストIDを伝播する
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 受信したAPIリクエストとコンテンツストアへの問い合わせを対応付けるために使用する。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}
