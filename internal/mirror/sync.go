package mirror

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	mirrordb "github.com/nao1215/portfolio-content/internal/mirror/db"
	"github.com/nao1215/portfolio-content/pkg/content"
	"github.com/nao1215/portfolio-content/pkg/event"
)

// SyncResult は1回の同期の結果。
type SyncResult struct {
	// Version は同期の通し番号。イベントのVersionと一致する。
	Version int64 `json:"version"`
	// Fetched は取得したproject数。
	Fetched int `json:"fetched"`
	// Created は新たに追加されたproject数。
	Created int `json:"created"`
	// Updated は内容が変わったproject数。
	Updated int `json:"updated"`
	// Removed はリモートから消えたproject数。
	Removed int `json:"removed"`
	// Unchanged は変化の無かったproject数。
	Unchanged int `json:"unchanged"`
	// StartedAt は同期を開始した日時。
	StartedAt time.Time `json:"started_at"`
	// FinishedAt は同期が完了した日時。
	FinishedAt time.Time `json:"finished_at"`
}

// Sync は同期元から全projectを取得して読み取りモデルを置き換え、変更をイベントとして記録する。
// 取得に失敗した場合は読み取りモデルを変更しない。同時に呼ばれた場合は1つずつ実行する。
func (m *Mirror) Sync(ctx context.Context) (*SyncResult, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	projects, err := m.source.GetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("同期元からのproject取得に失敗: %w", err)
	}

	started := m.now().UTC()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	q := m.queries.WithTx(tx)

	version, err := q.InsertSyncRun(ctx, started)
	if err != nil {
		return nil, fmt.Errorf("同期の記録に失敗: %w", err)
	}

	existing, err := q.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("既存projectの取得に失敗: %w", err)
	}
	previous := make(map[string]mirrordb.Project, len(existing))
	for _, p := range existing {
		previous[p.ID] = p
	}

	res := &SyncResult{Version: version, StartedAt: started}
	seen := make(map[string]struct{}, len(projects))
	for i, p := range projects {
		if p.ID == "" {
			m.logger.Warn("skipping project without _id", zap.String("slug", p.Slug.Current))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			m.logger.Warn("skipping duplicated project", zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		res.Fetched++

		doc, digest, err := encode(p)
		if err != nil {
			return nil, err
		}

		prev, ok := previous[p.ID]
		switch {
		case !ok:
			res.Created++
			err = m.record(ctx, q, p.ID, event.TypeProjectCreated, version, started, event.ProjectCreatedData{
				Slug:   p.Slug.Current,
				Title:  p.Title,
				Digest: digest,
			})
		case prev.Digest != digest:
			res.Updated++
			err = m.record(ctx, q, p.ID, event.TypeProjectUpdated, version, started, event.ProjectUpdatedData{
				Slug:           p.Slug.Current,
				Title:          p.Title,
				PreviousDigest: prev.Digest,
				Digest:         digest,
				ChangedFields:  changedFields(prev.Document, doc),
			})
		default:
			res.Unchanged++
		}
		if err != nil {
			return nil, err
		}

		if err := q.UpsertProject(ctx, mirrordb.UpsertProjectParams{
			ID:        p.ID,
			Slug:      p.Slug.Current,
			Title:     p.Title,
			Featured:  p.Featured,
			SortIndex: int64(i),
			Document:  doc,
			Digest:    digest,
			SyncedAt:  started,
		}); err != nil {
			return nil, fmt.Errorf("projectの保存に失敗 (id=%s): %w", p.ID, err)
		}
	}

	for _, prev := range existing {
		if _, ok := seen[prev.ID]; ok {
			continue
		}
		if err := q.DeleteProject(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("projectの削除に失敗 (id=%s): %w", prev.ID, err)
		}
		res.Removed++
		if err := m.record(ctx, q, prev.ID, event.TypeProjectRemoved, version, started, event.ProjectRemovedData{
			Slug:  prev.Slug,
			Title: prev.Title,
		}); err != nil {
			return nil, err
		}
	}

	res.FinishedAt = m.now().UTC()
	if err := q.FinishSyncRun(ctx, mirrordb.FinishSyncRunParams{
		Version:    version,
		FinishedAt: res.FinishedAt,
		Fetched:    int64(res.Fetched),
		Created:    int64(res.Created),
		Updated:    int64(res.Updated),
		Removed:    int64(res.Removed),
	}); err != nil {
		return nil, fmt.Errorf("同期結果の記録に失敗: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return res, nil
}

// record は変更イベントを生成して保存する。
func (m *Mirror) record(ctx context.Context, q *mirrordb.Queries, id string, typ event.Type, version int64, at time.Time, data any) error {
	ev, err := event.NewAt(id, event.AggregateTypeProject, typ, version, data, at)
	if err != nil {
		return err
	}
	if err := q.InsertSyncEvent(ctx, mirrordb.InsertSyncEventParams{
		ID:            ev.ID,
		AggregateID:   ev.AggregateID,
		AggregateType: string(ev.AggregateType),
		EventType:     string(ev.EventType),
		Data:          string(ev.Data),
		Version:       ev.Version,
		CreatedAt:     ev.CreatedAt,
	}); err != nil {
		return fmt.Errorf("イベントの保存に失敗 (type=%s, id=%s): %w", typ, id, err)
	}
	return nil
}

// encode はprojectのJSON表現とそのSHA-256ダイジェストを返す。
func encode(p content.Project) (string, string, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("projectのシリアライズに失敗 (id=%s): %w", p.ID, err)
	}
	sum := sha256.Sum256(doc)
	return string(doc), hex.EncodeToString(sum[:]), nil
}

// changedFields は2つのJSONドキュメントで値が異なるトップレベルのフィールド名を名前順に返す。
func changedFields(before, after string) []string {
	var a, b map[string]json.RawMessage
	if err := json.Unmarshal([]byte(before), &a); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(after), &b); err != nil {
		return nil
	}

	var changed []string
	for k, v := range b {
		if old, ok := a[k]; !ok || !bytes.Equal(old, v) {
			changed = append(changed, k)
		}
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
