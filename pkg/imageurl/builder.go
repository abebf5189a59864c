package imageurl

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultBaseURL は画像CDNのベースURL。
const DefaultBaseURL = "https://cdn.sanity.io"

var (
	validFits         = []string{"clip", "crop", "fill", "fillmax", "max", "scale", "min"}
	validCrops        = []string{"top", "bottom", "left", "right", "center", "focalpoint", "entropy"}
	validAutos        = []string{"format"}
	validFormats      = []string{"jpg", "pjpg", "png", "webp"}
	validOrientations = []int{0, 90, 180, 270}
)

// Rect は元画像上の切り抜き範囲（ピクセル）。
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// point は焦点の座標（0〜1の割合）。
type point struct {
	x float64
	y float64
}

// options は変換パラメータ。ゼロ値は未指定を表す。
type options struct {
	width             int
	height            int
	minWidth          int
	maxWidth          int
	minHeight         int
	maxHeight         int
	format            string
	quality           *int
	fit               string
	crop              string
	auto              string
	dpr               float64
	blur              int
	sharpen           int
	saturation        *int
	invert            bool
	orientation       *int
	pad               int
	frame             int
	bg                string
	focalPoint        *point
	rect              *Rect
	flipHorizontal    bool
	flipVertical      bool
	ignoreImageParams bool
	download          *string
	vanityName        string
}

// Builder は画像URLを組み立てる不変のビルダー。
// 各メソッドはレシーバを変更せず、設定を追加したコピーを返す。
type Builder struct {
	// projectID はコンテンツストアのプロジェクトID。
	projectID string
	// dataset はデータセット名。
	dataset string
	// baseURL は画像CDNのベースURL。
	baseURL string
	// source はImageで指定された画像ソース。
	source any
	// opts は変換パラメータ。
	opts options
	// err はメソッドチェーン中に発生した最初のエラー。URLで返す。
	err error
}

// New はプロジェクトとデータセットを指定してBuilderを生成する。
func New(projectID, dataset string) Builder {
	return Builder{
		projectID: projectID,
		dataset:   dataset,
		baseURL:   DefaultBaseURL,
	}
}

// fail は最初のエラーだけを保持したコピーを返す。
func (b Builder) fail(err error) Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// BaseURL は画像CDNのベースURLを差し替える。
func (b Builder) BaseURL(baseURL string) Builder {
	b.baseURL = baseURL
	return b
}

// Image は画像ソースを設定する。対応する型はparseSourceを参照。
func (b Builder) Image(src any) Builder {
	b.source = src
	return b
}

// Width は出力画像の幅を指定する。
func (b Builder) Width(w int) Builder {
	if w <= 0 {
		return b.fail(fmt.Errorf("幅は正の整数で指定してください: %d", w))
	}
	b.opts.width = w
	return b
}

// Height は出力画像の高さを指定する。
func (b Builder) Height(h int) Builder {
	if h <= 0 {
		return b.fail(fmt.Errorf("高さは正の整数で指定してください: %d", h))
	}
	b.opts.height = h
	return b
}

// Size は幅と高さを同時に指定する。
func (b Builder) Size(w, h int) Builder {
	return b.Width(w).Height(h)
}

// MinWidth は最小幅を指定する。
func (b Builder) MinWidth(w int) Builder {
	b.opts.minWidth = w
	return b
}

// MaxWidth は最大幅を指定する。
func (b Builder) MaxWidth(w int) Builder {
	b.opts.maxWidth = w
	return b
}

// MinHeight は最小高さを指定する。
func (b Builder) MinHeight(h int) Builder {
	b.opts.minHeight = h
	return b
}

// MaxHeight は最大高さを指定する。
func (b Builder) MaxHeight(h int) Builder {
	b.opts.maxHeight = h
	return b
}

// Format は出力形式（jpg, pjpg, png, webp）を指定する。
func (b Builder) Format(f string) Builder {
	if !slices.Contains(validFormats, f) {
		return b.fail(fmt.Errorf("不正な出力形式: %q", f))
	}
	b.opts.format = f
	return b
}

// Quality は画質（0〜100）を指定する。
func (b Builder) Quality(q int) Builder {
	if q < 0 || q > 100 {
		return b.fail(fmt.Errorf("画質は0〜100で指定してください: %d", q))
	}
	b.opts.quality = &q
	return b
}

// Fit はリサイズ方法を指定する。
func (b Builder) Fit(fit string) Builder {
	if !slices.Contains(validFits, fit) {
		return b.fail(fmt.Errorf("不正なfit指定: %q", fit))
	}
	b.opts.fit = fit
	return b
}

// Crop はfit=crop時の切り抜き基準を指定する。
// 指定した場合、クロップと焦点からのrect計算は行わない。
func (b Builder) Crop(mode string) Builder {
	if !slices.Contains(validCrops, mode) {
		return b.fail(fmt.Errorf("不正なcrop指定: %q", mode))
	}
	b.opts.crop = mode
	return b
}

// Auto は自動変換（format）を指定する。
func (b Builder) Auto(mode string) Builder {
	if !slices.Contains(validAutos, mode) {
		return b.fail(fmt.Errorf("不正なauto指定: %q", mode))
	}
	b.opts.auto = mode
	return b
}

// DPR はデバイスピクセル比を指定する。
func (b Builder) DPR(dpr float64) Builder {
	if dpr <= 0 {
		return b.fail(fmt.Errorf("DPRは正の値で指定してください: %v", dpr))
	}
	b.opts.dpr = dpr
	return b
}

// Blur はぼかしの強さを指定する。
func (b Builder) Blur(amount int) Builder {
	b.opts.blur = amount
	return b
}

// Sharpen はシャープネスの強さを指定する。
func (b Builder) Sharpen(amount int) Builder {
	b.opts.sharpen = amount
	return b
}

// Saturation は彩度（-100〜100）を指定する。
func (b Builder) Saturation(amount int) Builder {
	b.opts.saturation = &amount
	return b
}

// Invert は色を反転するかどうかを指定する。
func (b Builder) Invert(invert bool) Builder {
	b.opts.invert = invert
	return b
}

// Orientation は回転角（0, 90, 180, 270）を指定する。
func (b Builder) Orientation(deg int) Builder {
	if !slices.Contains(validOrientations, deg) {
		return b.fail(fmt.Errorf("不正な回転角: %d", deg))
	}
	b.opts.orientation = &deg
	return b
}

// Pad は余白（ピクセル）を指定する。
func (b Builder) Pad(px int) Builder {
	b.opts.pad = px
	return b
}

// Frame はアニメーション画像から取り出すフレーム番号を指定する。
func (b Builder) Frame(n int) Builder {
	b.opts.frame = n
	return b
}

// Bg は背景色を指定する。
func (b Builder) Bg(color string) Builder {
	b.opts.bg = color
	return b
}

// FocalPoint は焦点（0〜1の割合）を明示的に指定する。
func (b Builder) FocalPoint(x, y float64) Builder {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return b.fail(fmt.Errorf("焦点は0〜1の範囲で指定してください: (%v, %v)", x, y))
	}
	b.opts.focalPoint = &point{x: x, y: y}
	return b
}

// Rect は切り抜き範囲を明示的に指定する。
func (b Builder) Rect(left, top, width, height int) Builder {
	b.opts.rect = &Rect{Left: left, Top: top, Width: width, Height: height}
	return b
}

// FlipHorizontal は左右反転する。
func (b Builder) FlipHorizontal() Builder {
	b.opts.flipHorizontal = true
	return b
}

// FlipVertical は上下反転する。
func (b Builder) FlipVertical() Builder {
	b.opts.flipVertical = true
	return b
}

// IgnoreImageParams は画像に設定されたクロップと焦点を無視する。
func (b Builder) IgnoreImageParams() Builder {
	b.opts.ignoreImageParams = true
	return b
}

// ForceDownload はダウンロード用のURLにする。filenameが空の場合は元のファイル名が使われる。
func (b Builder) ForceDownload(filename string) Builder {
	b.opts.download = &filename
	return b
}

// VanityName はURL末尾に付与するファイル名を指定する。
func (b Builder) VanityName(name string) Builder {
	b.opts.vanityName = name
	return b
}

// URL は設定から画像URLを組み立てる。
func (b Builder) URL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.projectID == "" || b.dataset == "" {
		return "", errors.New("プロジェクトIDとデータセットの指定が必要です")
	}

	img, err := parseSource(b.source)
	if err != nil {
		return "", err
	}
	a, err := parseAssetID(img.ref)
	if err != nil {
		return "", err
	}

	opts := b.opts
	if opts.rect == nil && opts.focalPoint == nil && !opts.ignoreImageParams && opts.crop == "" {
		r := fit(a, img, opts.width, opts.height)
		opts.rect = &r
	}

	return b.render(a, opts), nil
}

// render はアセットと変換パラメータからURL文字列を組み立てる。
// パラメータの並び順は固定で、同じ入力からは常に同じ文字列になる。
func (b Builder) render(a asset, opts options) string {
	base := strings.TrimRight(b.baseURL, "/")
	filename := fmt.Sprintf("%s-%dx%d.%s", a.id, a.width, a.height, a.format)
	if opts.vanityName != "" {
		filename += "/" + opts.vanityName
	}
	u := fmt.Sprintf("%s/images/%s/%s/%s", base, b.projectID, b.dataset, filename)

	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+encodeComponent(value))
	}
	itoa := strconv.Itoa

	if r := opts.rect; r != nil {
		effective := r.Left != 0 || r.Top != 0 || r.Width != a.width || r.Height != a.height
		if effective {
			params = append(params, fmt.Sprintf("rect=%d,%d,%d,%d", r.Left, r.Top, r.Width, r.Height))
		}
	}
	if opts.bg != "" {
		add("bg", opts.bg)
	}
	if fp := opts.focalPoint; fp != nil {
		add("fp-x", formatFloat(fp.x))
		add("fp-y", formatFloat(fp.y))
	}
	flip := ""
	if opts.flipHorizontal {
		flip += "h"
	}
	if opts.flipVertical {
		flip += "v"
	}
	if flip != "" {
		add("flip", flip)
	}

	if opts.width > 0 {
		add("w", itoa(opts.width))
	}
	if opts.height > 0 {
		add("h", itoa(opts.height))
	}
	if opts.format != "" {
		add("fm", opts.format)
	}
	if opts.download != nil {
		add("dl", *opts.download)
	}
	if opts.blur > 0 {
		add("blur", itoa(opts.blur))
	}
	if opts.sharpen > 0 {
		add("sharp", itoa(opts.sharpen))
	}
	if opts.invert {
		add("invert", "true")
	}
	if opts.orientation != nil {
		add("or", itoa(*opts.orientation))
	}
	if opts.minHeight > 0 {
		add("min-h", itoa(opts.minHeight))
	}
	if opts.maxHeight > 0 {
		add("max-h", itoa(opts.maxHeight))
	}
	if opts.minWidth > 0 {
		add("min-w", itoa(opts.minWidth))
	}
	if opts.maxWidth > 0 {
		add("max-w", itoa(opts.maxWidth))
	}
	if opts.quality != nil {
		add("q", itoa(*opts.quality))
	}
	if opts.fit != "" {
		add("fit", opts.fit)
	}
	if opts.crop != "" {
		add("crop", opts.crop)
	}
	if opts.saturation != nil {
		add("sat", itoa(*opts.saturation))
	}
	if opts.auto != "" {
		add("auto", opts.auto)
	}
	if opts.dpr > 0 {
		add("dpr", formatFloat(opts.dpr))
	}
	if opts.pad > 0 {
		add("pad", itoa(opts.pad))
	}
	if opts.frame > 0 {
		add("frame", itoa(opts.frame))
	}

	if len(params) == 0 {
		return u
	}
	return u + "?" + strings.Join(params, "&")
}

// formatFloat は末尾の0を付けずに数値を文字列化する。
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// encodeComponent はクエリパラメータ値をパーセントエンコードする。空白は%20にする。
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
