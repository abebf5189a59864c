package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"go.uber.org/zap"

	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/httpclient"
	"github.com/nao1215/portfolio-content/pkg/imageurl"
)

// Client はコンテンツストアのクエリAPIクライアント。
// 生成後は状態を変更しないため、複数のゴルーチンから同時に使用できる。
type Client struct {
	// cfg は生成時に検証済みの接続設定。
	cfg Config
	// http はクエリAPIとの通信用HTTPクライアント。
	http *httpclient.Client
	// images は画像URLビルダーの雛形。
	images imageurl.Builder
	// logger はクエリのデバッグログ出力先。
	logger *zap.Logger
}

// settings はNewに渡すオプションの集約先。
type settings struct {
	httpClient *http.Client
	host       string
	logger     *zap.Logger
}

// Option はClientの生成時に適用する設定。
type Option func(*settings)

// WithHTTPClient は通信に使うhttp.Clientを差し替える。テストでモックのトランスポートを使う場合に指定する。
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.httpClient = hc
	}
}

// WithHost はクエリAPIのホストURLを差し替える（例: httptest.Server.URL）。
func WithHost(host string) Option {
	return func(s *settings) {
		s.host = host
	}
}

// WithLogger はログ出力先を設定する。
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New は設定を検証してクライアントを生成する。
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("クライアント設定が不正です: %w", err)
	}

	s := settings{
		host:   cfg.Host(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	httpOpts := []httpclient.Option{
		httpclient.WithHTTPClient(s.httpClient),
		httpclient.WithUserAgent(userAgent),
	}
	if cfg.Token != "" {
		httpOpts = append(httpOpts, httpclient.WithToken(cfg.Token))
	}

	return &Client{
		cfg:    cfg,
		http:   httpclient.New(s.host, httpOpts...),
		images: imageurl.New(cfg.ProjectID, cfg.Dataset),
		logger: s.logger,
	}, nil
}

// Config はクライアントの設定のコピーを返す。
func (c *Client) Config() Config {
	return c.cfg
}

// queryResponse はクエリAPIのレスポンス構造。
type queryResponse struct {
	// Ms はサーバー側の処理時間（ミリ秒）。
	Ms int `json:"ms"`
	// Query は実行されたクエリ。
	Query string `json:"query"`
	// Result はクエリ結果。一致しない場合はnull。
	Result json.RawMessage `json:"result"`
}

// maxGETURLLength はGETで送るURLの上限（バイト）。これを超えるクエリはPOSTで送信する。
const maxGETURLLength = 11264

// userAgent はクエリAPIへ送るUser-Agent。
const userAgent = "portfolio-content-sanity-client"

// queryRequest はPOSTで送信するクエリ。
type queryRequest struct {
	// Query はGROQクエリ。
	Query string `json:"query"`
	// Params はクエリパラメータ（$無しの名前）。
	Params map[string]any `json:"params,omitempty"`
}

// Fetch は任意のGROQクエリを実行し、結果をresultにデシリアライズする。
// paramsの各値はJSONにエンコードされ、$名前 のクエリパラメータとして送信される。
// URLがmaxGETURLLengthを超える場合は、クエリとパラメータをJSONボディにしてPOSTで送信する。
// 結果がnullの場合、resultは変更しない。
func (c *Client) Fetch(ctx context.Context, query string, params map[string]any, result any) error {
	values := url.Values{}
	values.Set("query", query)

	// パラメータ名を整列して、同じ呼び出しからは同じURLになるようにする
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		encoded, err := json.Marshal(params[name])
		if err != nil {
			return fmt.Errorf("クエリパラメータ %s のシリアライズに失敗: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	var (
		resp   queryResponse
		method = http.MethodGet
		err    error
	)
	path := c.cfg.QueryPath()
	if len(c.http.BaseURL())+len(path)+1+len(values.Encode()) > maxGETURLLength {
		method = http.MethodPost
		err = c.http.PostJSON(ctx, path, queryRequest{Query: query, Params: params}, &resp)
	} else {
		err = c.http.GetJSON(ctx, path, values, &resp)
	}
	if err != nil {
		return fmt.Errorf("クエリの実行に失敗: %w", err)
	}
	c.logger.Debug("query executed",
		zap.String("method", method),
		zap.String("dataset", c.cfg.Dataset),
		zap.Int("ms", resp.Ms),
		zap.Int("params", len(params)),
	)

	if result == nil || len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("クエリ結果のデシリアライズに失敗: %w", err)
	}
	return nil
}

// GetProjects は全projectを表示順で取得する。該当が無い場合は空のスライスを返す。
func (c *Client) GetProjects(ctx context.Context) ([]content.Project, error) {
	var projects []content.Project
	if err := c.Fetch(ctx, ProjectsQuery, nil, &projects); err != nil {
		return nil, fmt.Errorf("projectの一覧取得に失敗: %w", err)
	}
	if projects == nil {
		projects = []content.Project{}
	}
	return projects, nil
}

// GetProjectBySlug はスラッグが一致するprojectを取得する。
// 一致するものが無い場合はnilとnilエラーを返す。スラッグの形式は検証しない。
func (c *Client) GetProjectBySlug(ctx context.Context, slug string) (*content.Project, error) {
	var project *content.Project
	if err := c.Fetch(ctx, ProjectBySlugQuery, map[string]any{"slug": slug}, &project); err != nil {
		return nil, fmt.Errorf("projectの取得に失敗 (slug=%q): %w", slug, err)
	}
	return project, nil
}

// URLFor は画像ソースから画像URLビルダーを返す。ネットワーク通信は行わない。
func (c *Client) URLFor(source any) imageurl.Builder {
	return c.images.Image(source)
}
