// Package sanitytest はクエリAPIを模したテスト用のインメモリサーバーを提供する。
//
// sanityパッケージが送信する2つの固定クエリだけを解釈し、登録されたprojectを
// コンテンツストアと同じ規則で並べ替え・射影して返す。それ以外のクエリには400を返す。
// クエリはGETのクエリパラメータとPOSTのJSONボディのどちらでも受け付ける。
package sanitytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"

	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/sanity"
)

// Request はサーバーが受け取ったリクエストの記録。
type Request struct {
	// Method はHTTPメソッド。
	Method string
	// Path はリクエストパス。
	Path string
	// Query はクエリパラメータ。
	Query url.Values
	// Header はリクエストヘッダー。
	Header http.Header
	// Body はリクエストボディ。GETの場合は空。
	Body []byte
}

// postedQuery はPOSTで送られたクエリ。
type postedQuery struct {
	Query  string                     `json:"query"`
	Params map[string]json.RawMessage `json:"params"`
}

// Server はクエリAPIのフェイク実装。
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	cfg      sanity.Config
	projects []content.Project
	failure  *failure
	requests []Request
}

// failure は強制的に返すエラー応答。
type failure struct {
	status int
	body   string
}

// NewServer は指定のprojectを保持するフェイクサーバーを起動する。
// cfgのAPIバージョンとデータセットに一致するパスのみ受け付ける。
func NewServer(cfg sanity.Config, projects ...content.Project) *Server {
	s := &Server{cfg: cfg, projects: slices.Clone(projects)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Client はこのサーバーに接続するクライアントを生成する。
func (s *Server) Client(opts ...sanity.Option) (*sanity.Client, error) {
	opts = append([]sanity.Option{sanity.WithHost(s.URL)}, opts...)
	return sanity.New(s.cfg, opts...)
}

// SetProjects は保持するprojectを置き換える。
func (s *Server) SetProjects(projects ...content.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.Clone(projects)
}

// Fail は以降のリクエストに指定のステータスとボディを返すようにする。statusが0の場合は解除する。
func (s *Server) Fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		s.failure = nil
		return
	}
	s.failure = &failure{status: status, body: body}
}

// Requests は受け取ったリクエストの記録を返す。
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// handle はクエリAPIのリクエストを処理する。
// GETではクエリパラメータ、POSTではJSONボディからクエリとパラメータを読み取る。
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	projects := slices.Clone(s.projects)
	fail := s.failure
	s.mu.Unlock()

	if fail != nil {
		writeRaw(w, fail.status, fail.body)
		return
	}
	if r.URL.Path != s.cfg.QueryPath() {
		writeError(w, http.StatusNotFound, "notFound", fmt.Sprintf("不明なパス: %s", r.URL.Path))
		return
	}

	var (
		query string
		slug  json.RawMessage
	)
	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("query")
		slug = json.RawMessage(r.URL.Query().Get("$slug"))
	case http.MethodPost:
		var posted postedQuery
		if err := json.Unmarshal(body, &posted); err != nil {
			writeError(w, http.StatusBadRequest, "invalidBody", "リクエストボディが不正です")
			return
		}
		query = posted.Query
		slug = posted.Params["slug"]
	default:
		writeError(w, http.StatusMethodNotAllowed, "methodNotAllowed", "GETとPOSTのみ受け付けます")
		return
	}

	switch query {
	case sanity.ProjectsQuery:
		writeResult(w, query, projectAll(projects))
	case sanity.ProjectBySlugQuery:
		var current string
		if err := json.Unmarshal(slug, &current); err != nil {
			writeError(w, http.StatusBadRequest, "queryParseError", "パラメータ $slug が不正です")
			return
		}
		writeResult(w, query, projectBySlug(projects, current))
	default:
		writeError(w, http.StatusBadRequest, "queryParseError", "未対応のクエリです")
	}
}

// isProject は_typeがprojectのドキュメントかどうかを判定する。_typeが空のものもprojectとみなす。
func isProject(p content.Project) bool {
	return p.Type == "" || p.Type == content.DocumentTypeProject
}

// project は固定クエリの射影に含まれないフィールドを取り除く。
func project(p content.Project) content.Project {
	p.Type = ""
	p.Order = nil
	p.CreatedAt = nil
	return p
}

// projectAll は一覧クエリの結果を作る。
func projectAll(projects []content.Project) []content.Project {
	matched := make([]content.Project, 0, len(projects))
	for _, p := range projects {
		if isProject(p) {
			matched = append(matched, p)
		}
	}
	content.SortProjects(matched)
	for i := range matched {
		matched[i] = project(matched[i])
	}
	return matched
}

// projectBySlug は単一取得クエリの結果を作る。一致しない場合はnil。
func projectBySlug(projects []content.Project, slug string) *content.Project {
	for _, p := range projects {
		if isProject(p) && p.Slug.Current == slug {
			found := project(p)
			return &found
		}
	}
	return nil
}

func writeResult(w http.ResponseWriter, query string, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ms":     1,
		"query":  query,
		"result": result,
	})
}

func writeError(w http.ResponseWriter, status int, typ, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"type": typ, "description": description},
	})
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
