package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const insertSyncRun = `INSERT INTO sync_runs (started_at) VALUES (?)`

// InsertSyncRun は同期の開始を記録し、割り当てられたバージョンを返す。
func (q *Queries) InsertSyncRun(ctx context.Context, startedAt time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertSyncRun, formatTime(startedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishSyncRunParams はFinishSyncRunの引数。
type FinishSyncRunParams struct {
	Version    int64
	FinishedAt time.Time
	Fetched    int64
	Created    int64
	Updated    int64
	Removed    int64
}

const finishSyncRun = `
UPDATE sync_runs
SET finished_at = ?, fetched = ?, created = ?, updated = ?, removed = ?
WHERE version = ?
`

// FinishSyncRun は同期の完了と件数を記録する。
func (q *Queries) FinishSyncRun(ctx context.Context, arg FinishSyncRunParams) error {
	_, err := q.db.ExecContext(ctx, finishSyncRun,
		formatTime(arg.FinishedAt), arg.Fetched, arg.Created, arg.Updated, arg.Removed, arg.Version,
	)
	return err
}

const latestSyncRun = `
SELECT version, started_at, finished_at, fetched, created, updated, removed
FROM sync_runs
WHERE finished_at IS NOT NULL
ORDER BY version DESC
LIMIT 1
`

// LatestSyncRun は最後に完了した同期を返す。まだ無い場合はsql.ErrNoRows。
func (q *Queries) LatestSyncRun(ctx context.Context) (SyncRun, error) {
	var (
		r        SyncRun
		started  string
		finished sql.NullString
	)
	err := q.db.QueryRowContext(ctx, latestSyncRun).Scan(
		&r.Version, &started, &finished, &r.Fetched, &r.Created, &r.Updated, &r.Removed,
	)
	if err != nil {
		return SyncRun{}, err
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return SyncRun{}, fmt.Errorf("started_atの解析に失敗: %w", err)
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return SyncRun{}, fmt.Errorf("finished_atの解析に失敗: %w", err)
		}
		r.FinishedAt = &t
	}
	return r, nil
}

// InsertSyncEventParams はInsertSyncEventの引数。
type InsertSyncEventParams struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Data          string
	Version       int64
	CreatedAt     time.Time
}

const insertSyncEvent = `
INSERT INTO sync_events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// InsertSyncEvent は変更イベントを記録する。
func (q *Queries) InsertSyncEvent(ctx context.Context, arg InsertSyncEventParams) error {
	_, err := q.db.ExecContext(ctx, insertSyncEvent,
		arg.ID, arg.AggregateID, arg.AggregateType, arg.EventType, arg.Data, arg.Version, formatTime(arg.CreatedAt),
	)
	return err
}

const listSyncEvents = `
SELECT seq, id, aggregate_id, aggregate_type, event_type, data, version, created_at
FROM sync_events
ORDER BY seq DESC
LIMIT ?
`

// ListSyncEvents は新しい順に最大limit件の変更イベントを返す。
func (q *Queries) ListSyncEvents(ctx context.Context, limit int64) ([]SyncEvent, error) {
	rows, err := q.db.QueryContext(ctx, listSyncEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []SyncEvent
	for rows.Next() {
		var (
			e       SyncEvent
			created string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Data, &e.Version, &created); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("created_atの解析に失敗: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
