package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New は新しいイベントを生成する。
// dataにはイベント固有のデータ構造体を渡す。JSON形式にシリアライズされる。
func New(aggregateID string, aggregateType AggregateType, eventType Type, version int64, data any) (*Event, error) {
	return NewAt(aggregateID, aggregateType, eventType, version, data, time.Now())
}

// NewAt は作成日時を指定してイベントを生成する。同じ同期で検出したイベントに同じ時刻を付けるために使う。
func NewAt(aggregateID string, aggregateType AggregateType, eventType Type, version int64, data any, at time.Time) (*Event, error) {
	if aggregateID == "" {
		return nil, errors.New("イベントの対象IDが空です")
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("イベントデータのシリアライズに失敗: %w", err)
	}

	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Version:       version,
		CreatedAt:     at.UTC(),
	}, nil
}

// DecodeData はイベントのDataフィールドを指定された型にデシリアライズする。
func DecodeData[T any](e *Event) (*T, error) {
	if e == nil || len(e.Data) == 0 {
		return nil, errors.New("イベントデータが空です")
	}
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("イベントデータのデシリアライズに失敗: %w", err)
	}
	return &data, nil
}
