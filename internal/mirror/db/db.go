// Package db はミラーのSQLiteテーブルに対するクエリをまとめる。
//
// 各メソッドは1つのSQL文に対応する。トランザクション内で使う場合はWithTxで包む。
package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX は*sql.DBと*sql.Txの共通インターフェース。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries はミラーテーブルへのクエリを実行する。
type Queries struct {
	db DBTX
}

// New はQueriesを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx はトランザクション上でクエリを実行するQueriesを返す。
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// timeLayout は日時列の保存形式。文字列のまま比較しても時系列順になる。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
