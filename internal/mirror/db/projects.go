package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const projectColumns = `id, slug, title, featured, sort_index, document, digest, synced_at`

func scanProject(row interface{ Scan(dest ...any) error }) (Project, error) {
	var (
		p        Project
		featured int64
		syncedAt string
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &featured, &p.SortIndex, &p.Document, &p.Digest, &syncedAt); err != nil {
		return Project{}, err
	}
	p.Featured = featured != 0
	t, err := parseTime(syncedAt)
	if err != nil {
		return Project{}, fmt.Errorf("synced_atの解析に失敗: %w", err)
	}
	p.SyncedAt = t
	return p, nil
}

// UpsertProjectParams はUpsertProjectの引数。
type UpsertProjectParams struct {
	ID        string
	Slug      string
	Title     string
	Featured  bool
	SortIndex int64
	Document  string
	Digest    string
	SyncedAt  time.Time
}

const upsertProject = `
INSERT INTO projects (` + projectColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    slug       = excluded.slug,
    title      = excluded.title,
    featured   = excluded.featured,
    sort_index = excluded.sort_index,
    document   = excluded.document,
    digest     = excluded.digest,
    synced_at  = excluded.synced_at
`

// UpsertProject はprojectを挿入し、既に存在する場合は上書きする。
func (q *Queries) UpsertProject(ctx context.Context, arg UpsertProjectParams) error {
	featured := 0
	if arg.Featured {
		featured = 1
	}
	_, err := q.db.ExecContext(ctx, upsertProject,
		arg.ID, arg.Slug, arg.Title, featured, arg.SortIndex, arg.Document, arg.Digest, formatTime(arg.SyncedAt),
	)
	return err
}

const listProjects = `SELECT ` + projectColumns + ` FROM projects ORDER BY sort_index, id`

// ListProjects は全projectを取得時の表示順で返す。
func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjects)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getProjectBySlug = `SELECT ` + projectColumns + ` FROM projects WHERE slug = ? ORDER BY sort_index LIMIT 1`

// GetProjectBySlug はスラッグが一致するprojectを返す。無い場合はsql.ErrNoRows。
func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProjectBySlug, slug))
}

const deleteProject = `DELETE FROM projects WHERE id = ?`

// DeleteProject はprojectを削除する。
func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteProject, id)
	return err
}

const countProjects = `SELECT COUNT(*) FROM projects`

// CountProjects は保持しているprojectの件数を返す。
func (q *Queries) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countProjects).Scan(&n)
	return n, err
}

// IsNotFound はクエリ結果が0件だったことを示すエラーかどうかを返す。
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
