// Package mirror はコンテンツストアのprojectをローカルのSQLiteに複製する読み取りモデルを提供する。
//
// 同期のたびに一覧クエリの結果を丸ごと取り込み、内容のダイジェストを比較して
// 追加・更新・削除を変更イベントとして記録する。表示順は取得した順番のまま保存する。
// 読み取りモデルはいつでも破棄して次の同期で作り直せる。
package mirror

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	mirrordb "github.com/nao1215/portfolio-content/internal/mirror/db"
	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// DefaultInterval は既定のポーリング間隔。
const DefaultInterval = 5 * time.Minute

// Source は同期元。*sanity.Clientが満たす。
type Source interface {
	GetProjects(ctx context.Context) ([]content.Project, error)
}

// Mirror はprojectの読み取りモデル。複数のゴルーチンから同時に使用できる。
type Mirror struct {
	// db はSQLiteのデータベース接続。
	db *sql.DB
	// queries はミラーテーブルへのクエリ。
	queries *mirrordb.Queries
	// source は同期元。
	source Source
	// interval はStartでのポーリング間隔。
	interval time.Duration
	// logger はログ出力先。
	logger *zap.Logger
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time

	// syncMu は同期を1つずつ実行するためのミューテックス。
	syncMu sync.Mutex
	// mu はcancelとdoneを保護するミューテックス。
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option はMirrorの生成時に適用する設定。
type Option func(*Mirror)

// WithInterval はポーリング間隔を設定する。0以下の値は無視する。
func WithInterval(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger はログ出力先を設定する。
func WithLogger(logger *zap.Logger) Option {
	return func(m *Mirror) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock は現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) Option {
	return func(m *Mirror) {
		if now != nil {
			m.now = now
		}
	}
}

// Open はpathのSQLiteデータベースを開き、マイグレーションを適用してMirrorを生成する。
// pathに ":memory:" を指定するとインメモリのデータベースを使う。
func Open(ctx context.Context, path string, source Source, opts ...Option) (*Mirror, error) {
	if source == nil {
		return nil, errors.New("同期元が指定されていません")
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("ミラーデータベース接続に失敗: %w", err)
	}
	// SQLiteは書き込みが1つずつのため、接続も1本に絞る
	db.SetMaxOpenConns(1)

	m := &Mirror{
		db:       db,
		queries:  mirrordb.New(db),
		source:   source,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if _, err := migration.Run(ctx, db, migrationsFS, "migrations", m.logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ミラースキーマ初期化に失敗: %w", err)
	}
	return m, nil
}

// dsn はSQLiteの接続文字列を組み立てる。ファイルの場合はWALとビジータイムアウトを有効にする。
func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close はポーリングを停止し、データベース接続を閉じる。
func (m *Mirror) Close() error {
	m.Stop()
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("ミラーデータベースのクローズに失敗: %w", err)
	}
	return nil
}

// Ping はデータベース接続を確認する。
func (m *Mirror) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Start はバックグラウンドで同期を開始する。開始直後に1回同期し、その後はポーリング間隔ごとに同期する。
// 既に開始している場合は何もしない。
func (m *Mirror) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		m.logger.Info("mirror polling started", zap.Duration("interval", m.interval))

		m.syncAndLog(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("mirror polling stopped")
				return
			case <-ticker.C:
				m.syncAndLog(ctx)
			}
		}
	}()
}

// Stop はバックグラウンドの同期を停止し、実行中の同期が終わるまで待つ。
func (m *Mirror) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run はctxがキャンセルされるまでバックグラウンド同期を実行する。errgroupから起動するために使う。
func (m *Mirror) Run(ctx context.Context) error {
	m.Start(ctx)
	<-ctx.Done()
	m.Stop()
	return nil
}

// syncAndLog は同期を実行し、結果をログに出力する。失敗しても次のポーリングで再試行する。
func (m *Mirror) syncAndLog(ctx context.Context) {
	res, err := m.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("mirror sync failed", zap.Error(err))
		return
	}
	m.logger.Info("mirror synced",
		zap.Int64("version", res.Version),
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
	)
}
