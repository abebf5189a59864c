package db

import (
	"time"
)

// Project はprojectsテーブルの1行。
type Project struct {
	ID        string
	Slug      string
	Title     string
	Featured  bool
	SortIndex int64
	// Document は取得したprojectのJSON表現。
	Document string
	// Digest はDocumentのSHA-256ダイジェスト（16進数）。
	Digest   string
	SyncedAt time.Time
}

// SyncRun はsync_runsテーブルの1行。同期1回分の結果を表す。
type SyncRun struct {
	Version    int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Fetched    int64
	Created    int64
	Updated    int64
	Removed    int64
}

// SyncEvent はsync_eventsテーブルの1行。
type SyncEvent struct {
	Seq           int64
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Data          string
	Version       int64
	CreatedAt     time.Time
}
