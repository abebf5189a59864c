package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	mirrordb "github.com/nao1215/portfolio-content/internal/mirror/db"
	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/event"
)

const (
	// DefaultEventLimit はEventsでlimitを省略した場合の件数。
	DefaultEventLimit = 50
	// MaxEventLimit はEventsで取得できる最大件数。
	MaxEventLimit = 500
)

// List は複製済みの全projectを取得時の表示順で返す。無い場合は空のスライスを返す。
func (m *Mirror) List(ctx context.Context) ([]content.Project, error) {
	rows, err := m.queries.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("ミラーからのproject一覧取得に失敗: %w", err)
	}

	projects := make([]content.Project, 0, len(rows))
	for _, row := range rows {
		p, err := decode(row)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetBySlug はスラッグが一致するprojectを返す。無い場合はnilとnilエラーを返す。
func (m *Mirror) GetBySlug(ctx context.Context, slug string) (*content.Project, error) {
	row, err := m.queries.GetProjectBySlug(ctx, slug)
	if mirrordb.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ミラーからのproject取得に失敗 (slug=%q): %w", slug, err)
	}
	p, err := decode(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count は複製済みのproject数を返す。
func (m *Mirror) Count(ctx context.Context) (int, error) {
	n, err := m.queries.CountProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("ミラーのproject数の取得に失敗: %w", err)
	}
	return int(n), nil
}

// Events は新しい順に最大limit件の変更イベントを返す。
// limitが0以下の場合はDefaultEventLimit、MaxEventLimitを超える場合はMaxEventLimitとして扱う。
func (m *Mirror) Events(ctx context.Context, limit int) ([]event.Event, error) {
	switch {
	case limit <= 0:
		limit = DefaultEventLimit
	case limit > MaxEventLimit:
		limit = MaxEventLimit
	}

	rows, err := m.queries.ListSyncEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("変更イベントの取得に失敗: %w", err)
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, event.Event{
			ID:            row.ID,
			AggregateID:   row.AggregateID,
			AggregateType: event.AggregateType(row.AggregateType),
			EventType:     event.Type(row.EventType),
			Data:          json.RawMessage(row.Data),
			Version:       row.Version,
			CreatedAt:     row.CreatedAt,
		})
	}
	return events, nil
}

// LastSync は最後に完了した同期の結果を返す。まだ同期していない場合はnilを返す。
func (m *Mirror) LastSync(ctx context.Context) (*SyncResult, error) {
	run, err := m.queries.LatestSyncRun(ctx)
	if mirrordb.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("同期履歴の取得に失敗: %w", err)
	}

	res := &SyncResult{
		Version:   run.Version,
		Fetched:   int(run.Fetched),
		Created:   int(run.Created),
		Updated:   int(run.Updated),
		Removed:   int(run.Removed),
		Unchanged: int(run.Fetched - run.Created - run.Updated),
		StartedAt: run.StartedAt,
	}
	if run.FinishedAt != nil {
		res.FinishedAt = *run.FinishedAt
	}
	return res, nil
}

// decode は保存されたJSONからprojectを復元する。
func decode(row mirrordb.Project) (content.Project, error) {
	var p content.Project
	if err := json.Unmarshal([]byte(row.Document), &p); err != nil {
		return content.Project{}, fmt.Errorf("保存されたprojectのデシリアライズに失敗 (id=%s): %w", row.ID, err)
	}
	return p, nil
}
