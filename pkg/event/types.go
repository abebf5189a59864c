// Package event はミラー同期で検出したprojectの変更イベントと、そのシリアライズを提供する。
package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeProject はprojectドキュメントを表す。
	AggregateTypeProject AggregateType = "Project"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeProjectCreated はリモートに新しいprojectが現れたことを表す。
	TypeProjectCreated Type = "ProjectCreated"
	// TypeProjectUpdated はprojectの内容が変わったことを表す。
	TypeProjectUpdated Type = "ProjectUpdated"
	// TypeProjectRemoved はリモートからprojectが消えたことを表す。
	TypeProjectRemoved Type = "ProjectRemoved"
)

// Event はミラーが同期時に検出した変更を記録する不変のレコード。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象projectの_id。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version は変更を検出した同期の通し番号。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// ProjectCreatedData はProjectCreatedイベントのデータ。
type ProjectCreatedData struct {
	// Slug はprojectのスラッグ。
	Slug string `json:"slug"`
	// Title はprojectのタイトル。
	Title string `json:"title"`
	// Digest は取り込んだ内容のダイジェスト。
	Digest string `json:"digest"`
}

// ProjectUpdatedData はProjectUpdatedイベントのデータ。
type ProjectUpdatedData struct {
	// Slug は更新後のスラッグ。
	Slug string `json:"slug"`
	// Title は更新後のタイトル。
	Title string `json:"title"`
	// PreviousDigest は更新前の内容のダイジェスト。
	PreviousDigest string `json:"previous_digest"`
	// Digest は更新後の内容のダイジェスト。
	Digest string `json:"digest"`
	// ChangedFields は値が変わったフィールド名。
	ChangedFields []string `json:"changed_fields"`
}

// ProjectRemovedData はProjectRemovedイベントのデータ。
type ProjectRemovedData struct {
	// Slug は削除前のスラッグ。
	Slug string `json:"slug"`
	// Title は削除前のタイトル。
	Title string `json:"title"`
}
