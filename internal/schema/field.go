// Package schema はコンテンツストアに登録するドキュメント型の宣言を提供する。
//
// 型はフィールド記述子の並びとして宣言され、スタジオ向けのJSON表現への変換と、
// 同じ記述子から導出したクライアント側の入力検証に使用する。
package schema

import (
	"encoding/json"
)

// FieldType はフィールドの型名を表す。
type FieldType string

const (
	// TypeDocument はドキュメント型を表す。
	TypeDocument FieldType = "document"
	// TypeString は1行の文字列を表す。
	TypeString FieldType = "string"
	// TypeText は複数行のテキストを表す。
	TypeText FieldType = "text"
	// TypeSlug はスラッグ（{current}）を表す。
	TypeSlug FieldType = "slug"
	// TypeImage は画像アセットへの参照を表す。
	TypeImage FieldType = "image"
	// TypeArray は配列を表す。
	TypeArray FieldType = "array"
	// TypeURL はURL文字列を表す。
	TypeURL FieldType = "url"
	// TypeBoolean は真偽値を表す。
	TypeBoolean FieldType = "boolean"
	// TypeNumber は数値を表す。
	TypeNumber FieldType = "number"
)

// RuleFlag は検証ルールの種類を表す。
type RuleFlag string

const (
	// FlagPresence は必須であることを表す。
	FlagPresence RuleFlag = "presence"
	// FlagMin は最小値（文字列は文字数、配列は要素数）を表す。
	FlagMin RuleFlag = "min"
	// FlagMax は最大値（文字列は文字数、配列は要素数）を表す。
	FlagMax RuleFlag = "max"
	// FlagURI は整形式のURLであることを表す。
	FlagURI RuleFlag = "uri"
)

// Rule は1つの検証ルール。スタジオ向けJSONでは {flag, constraint} として表現される。
type Rule struct {
	// Flag はルールの種類。
	Flag RuleFlag `json:"flag"`
	// Constraint はルールの制約値。
	Constraint any `json:"constraint,omitempty"`
}

// Required は必須ルールを返す。
func Required() Rule {
	return Rule{Flag: FlagPresence, Constraint: "required"}
}

// Min は最小値ルールを返す。
func Min(n int) Rule {
	return Rule{Flag: FlagMin, Constraint: n}
}

// Max は最大値ルールを返す。
func Max(n int) Rule {
	return Rule{Flag: FlagMax, Constraint: n}
}

// URI はhttp/httpsスキームのURLであることを求めるルールを返す。
func URI() Rule {
	return Rule{
		Flag: FlagURI,
		Constraint: map[string]any{
			"options": map[string]any{"scheme": []string{"http", "https"}},
		},
	}
}

// Options はフィールド型ごとの追加設定。
type Options struct {
	// Source はスラッグ生成元のフィールド名。
	Source string `json:"source,omitempty"`
	// MaxLength はスラッグの最大文字数。
	MaxLength int `json:"maxLength,omitempty"`
	// Hotspot は画像のホットスポット編集を有効にするかどうか。
	Hotspot bool `json:"hotspot,omitempty"`
}

// Field はドキュメント型の1フィールドの記述子。
type Field struct {
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Type         FieldType `json:"type"`
	Description  string    `json:"description,omitempty"`
	Rows         int       `json:"rows,omitempty"`
	Of           []Field   `json:"of,omitempty"`
	Options      *Options  `json:"options,omitempty"`
	Validation   []Rule    `json:"validation,omitempty"`
	InitialValue any       `json:"initialValue,omitempty"`
}

// IsRequired は必須ルールを持つかどうかを返す。
func (f Field) IsRequired() bool {
	for _, r := range f.Validation {
		if r.Flag == FlagPresence {
			return true
		}
	}
	return false
}

// Preview は一覧表示で使う射影。キーは表示スロット（title/subtitle/media）、値はフィールド名。
type Preview struct {
	Select map[string]string `json:"select"`
}

// DocumentType はドキュメント型の宣言。
type DocumentType struct {
	Name    string    `json:"name"`
	Title   string    `json:"title"`
	Type    FieldType `json:"type"`
	Fields  []Field   `json:"fields"`
	Preview Preview   `json:"preview"`
}

// Field は名前が一致するフィールド記述子を返す。
func (d DocumentType) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MarshalJSON はスタジオ向けのJSON表現を返す。フィールドが無い場合も配列として出力する。
func (d DocumentType) MarshalJSON() ([]byte, error) {
	type plain DocumentType
	out := plain(d)
	if out.Fields == nil {
		out.Fields = []Field{}
	}
	if out.Preview.Select == nil {
		out.Preview.Select = map[string]string{}
	}
	return json.Marshal(out)
}
