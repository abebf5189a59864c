package imageurl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// ErrNoSource は画像ソースが指定されていないことを表す。
var ErrNoSource = errors.New("画像ソースが指定されていません")

// assetIDExample はアセットIDの書式例。エラーメッセージで使う。
const assetIDExample = "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"

// extensionPattern はCDN URLのファイル名末尾の拡張子に一致する。
var extensionPattern = regexp.MustCompile(`\.([a-z]+)$`)

// asset はアセットIDを分解した結果。
type asset struct {
	// id はアセット固有のハッシュ部分。
	id string
	// width は元画像の幅（ピクセル）。
	width int
	// height は元画像の高さ（ピクセル）。
	height int
	// format は元画像の形式（拡張子）。
	format string
}

// image はBuilderが扱う正規化済みの画像ソース。
type image struct {
	// ref はアセットID。
	ref string
	// crop はクロップ割合。未指定時はすべて0。
	crop content.Crop
	// hotspot は焦点。未指定時は画像全体。
	hotspot content.Hotspot
}

// defaultHotspot は焦点が未指定の場合の値（画像全体）。
var defaultHotspot = content.Hotspot{X: 0.5, Y: 0.5, Height: 1, Width: 1}

// parseSource は受け付ける各種ソースを正規化する。
// 対応する型: アセットID文字列、CDN URL文字列、content.Reference、content.Asset、content.Image（ポインタ含む）。
func parseSource(src any) (image, error) {
	var img image
	switch s := src.(type) {
	case nil:
		return img, ErrNoSource
	case string:
		img.ref = refFromString(s)
	case content.Reference:
		img.ref = s.Ref
	case *content.Reference:
		if s == nil {
			return img, ErrNoSource
		}
		img.ref = s.Ref
	case content.Asset:
		img.ref = refFromAsset(s)
	case *content.Asset:
		if s == nil {
			return img, ErrNoSource
		}
		img.ref = refFromAsset(*s)
	case content.Image:
		return fromImage(s)
	case *content.Image:
		if s == nil {
			return img, ErrNoSource
		}
		return fromImage(*s)
	default:
		return img, fmt.Errorf("画像ソースの型 %T には対応していません", src)
	}

	if img.ref == "" {
		return img, ErrNoSource
	}
	img.hotspot = defaultHotspot
	return img, nil
}

// fromImage はimage型フィールドの値を正規化する。クロップと焦点を引き継ぐ。
func fromImage(v content.Image) (image, error) {
	img := image{ref: v.Asset.Ref, hotspot: defaultHotspot}
	if img.ref == "" {
		return img, ErrNoSource
	}
	if v.Crop != nil {
		c := *v.Crop
		if c.Top < 0 || c.Bottom < 0 || c.Left < 0 || c.Right < 0 {
			return img, fmt.Errorf("クロップの割合が負です: %+v", c)
		}
		if c.Top+c.Bottom >= 1 || c.Left+c.Right >= 1 {
			return img, fmt.Errorf("クロップで画像が残りません: %+v", c)
		}
		img.crop = c
	}
	if v.Hotspot != nil {
		img.hotspot = *v.Hotspot
	}
	return img, nil
}

// refFromAsset は展開済みアセットからアセットIDを得る。IDが無ければURLから復元する。
func refFromAsset(a content.Asset) string {
	if a.ID != "" {
		return a.ID
	}
	if a.URL != "" {
		return refFromString(a.URL)
	}
	return ""
}

// refFromString は文字列ソースをアセットIDに変換する。
// CDN URL（https://cdn.sanity.io/images/<project>/<dataset>/<id>-<w>x<h>.<fmt>）の場合はファイル名から復元する。
func refFromString(s string) string {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	name := s[strings.LastIndex(s, "/")+1:]
	if name == "" {
		return ""
	}
	return extensionPattern.ReplaceAllString("image-"+name, "-$1")
}

// parseAssetID はアセットID（image-<id>-<w>x<h>-<fmt>）を分解する。
func parseAssetID(ref string) (asset, error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return asset{}, fmt.Errorf("不正なアセット参照 %q: %q のような形式が必要です", ref, assetIDExample)
	}

	dims := strings.Split(parts[2], "x")
	if len(dims) != 2 {
		return asset{}, fmt.Errorf("不正なアセット参照 %q: 画像サイズを解釈できません", ref)
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil || width <= 0 {
		return asset{}, fmt.Errorf("不正なアセット参照 %q: 幅を解釈できません", ref)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil || height <= 0 {
		return asset{}, fmt.Errorf("不正なアセット参照 %q: 高さを解釈できません", ref)
	}

	return asset{id: parts[1], width: width, height: height, format: parts[3]}, nil
}
