package content

import (
	"sort"
	"time"
)

// DocumentTypeProject はprojectドキュメントの_type値。
const DocumentTypeProject = "project"

// Project はコンテンツストアに保存されたポートフォリオのプロジェクトを表す。
type Project struct {
	// ID はドキュメントの一意識別子（_id）。
	ID string `json:"_id"`
	// Type はドキュメント種別（_type）。射影結果には含まれない。
	Type string `json:"_type,omitempty"`
	// Title はプロジェクトのタイトル。
	Title string `json:"title"`
	// Slug はタイトルから生成されたURLセーフな識別子。
	Slug Slug `json:"slug"`
	// Description はプロジェクトカードに表示する短い説明（200文字以内）。
	Description string `json:"description"`
	// Details はモーダルに表示する詳細説明。
	Details string `json:"details"`
	// Image はプロジェクト画像への参照。
	Image Image `json:"image"`
	// Technologies は使用技術の一覧（1件以上）。
	Technologies []string `json:"technologies"`
	// GitHubURL はGitHubリポジトリへのリンク。未設定の場合は空文字列。
	GitHubURL string `json:"githubUrl,omitempty"`
	// LiveURL はデモサイトへのリンク。未設定の場合は空文字列。
	LiveURL string `json:"liveUrl,omitempty"`
	// Featured は注目プロジェクトかどうか。
	Featured bool `json:"featured"`
	// Order は表示順（小さいほど先頭）。射影結果には含まれない。
	Order *float64 `json:"order,omitempty"`
	// CreatedAt はドキュメントの作成日時（_createdAt）。射影結果には含まれない。
	CreatedAt *time.Time `json:"_createdAt,omitempty"`
}

// Slug はslug型フィールドの値。
type Slug struct {
	// Type は常に "slug"。
	Type string `json:"_type,omitempty"`
	// Current は現在のスラッグ文字列。
	Current string `json:"current"`
}

// Image はimage型フィールドの値。
type Image struct {
	// Type は常に "image"。
	Type string `json:"_type,omitempty"`
	// Asset は画像アセットドキュメントへの参照。
	Asset Reference `json:"asset"`
	// Crop は管理UIで指定されたクロップ範囲。未指定の場合はnil。
	Crop *Crop `json:"crop,omitempty"`
	// Hotspot は管理UIで指定された焦点。未指定の場合はnil。
	Hotspot *Hotspot `json:"hotspot,omitempty"`
}

// Reference は別ドキュメントへの参照。
type Reference struct {
	// Ref は参照先ドキュメントのID（例: "image-abc123-1200x800-png"）。
	Ref string `json:"_ref"`
	// Type は常に "reference"。
	Type string `json:"_type,omitempty"`
}

// Asset は画像アセットドキュメントそのもの。参照ではなく展開済みのアセットを渡す場合に使う。
type Asset struct {
	// ID はアセットドキュメントのID。
	ID string `json:"_id"`
	// URL はアセットのCDN URL。
	URL string `json:"url,omitempty"`
}

// Crop は画像の各辺から切り落とす割合（0〜1）。
type Crop struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Hotspot は画像の焦点領域。X, Yは中心座標、Width, Heightは領域の大きさ（すべて0〜1の割合）。
type Hotspot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// OrderValue は表示順を返す。未設定の場合は初期値の0。
func (p Project) OrderValue() float64 {
	if p.Order == nil {
		return 0
	}
	return *p.Order
}

// SortProjects はコンテンツストアと同じ規則（order昇順、同順位は_createdAt降順）で並べ替える。
// 並べ替えは安定で、作成日時が無いものは同順位の末尾に置く。
func SortProjects(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		oi, oj := projects[i].OrderValue(), projects[j].OrderValue()
		if oi != oj {
			return oi < oj
		}
		ci, cj := projects[i].CreatedAt, projects[j].CreatedAt
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return ci.After(*cj)
		}
	})
}
