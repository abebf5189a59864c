package imageurl

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/portfolio-content/pkg/content"
)

const (
	testRef  = "image-abc123-1200x800-png"
	testBase = "https://cdn.sanity.io/images/tirssn7e/production/abc123-1200x800.png"
)

func newTestBuilder() Builder {
	return New("tirssn7e", "production")
}

func TestBuilder_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    Builder
		want string
	}{
		{
			name: "パラメータ無しでベースURLのみになること",
			b:    newTestBuilder().Image(testRef),
			want: testBase,
		},
		{
			name: "幅だけの指定ではrectが付かないこと",
			b:    newTestBuilder().Image(testRef).Width(300),
			want: testBase + "?w=300",
		},
		{
			name: "正方形指定で中央が切り抜かれること",
			b:    newTestBuilder().Image(testRef).Size(400, 400),
			want: testBase + "?rect=200,0,800,800&w=400&h=400",
		},
		{
			name: "横長指定で上下が焦点に寄せて切り抜かれること",
			b:    newTestBuilder().Image(testRef).Size(800, 400),
			want: testBase + "?rect=0,100,1200,600&w=800&h=400",
		},
		{
			name: "同じ縦横比ではrectが付かないこと",
			b: newTestBuilder().Image(testRef).Width(300).Height(200).
				Format("webp").Quality(80).Fit("crop").Auto("format").DPR(2),
			want: testBase + "?w=300&h=200&fm=webp&q=80&fit=crop&auto=format&dpr=2",
		},
		{
			name: "crop指定時は焦点からのrect計算を行わないこと",
			b:    newTestBuilder().Image(testRef).Size(400, 400).Crop("center"),
			want: testBase + "?w=400&h=400&crop=center",
		},
		{
			name: "IgnoreImageParams指定時はrectを付けないこと",
			b:    newTestBuilder().Image(testRef).Size(400, 400).IgnoreImageParams(),
			want: testBase + "?w=400&h=400",
		},
		{
			name: "明示的なrectがそのまま使われること",
			b:    newTestBuilder().Image(testRef).Rect(10, 20, 300, 200),
			want: testBase + "?rect=10,20,300,200",
		},
		{
			name: "背景色、焦点、反転の順に並ぶこと",
			b: newTestBuilder().Image(testRef).FlipVertical().FocalPoint(0.3, 0.7).
				Bg("fff").FlipHorizontal(),
			want: testBase + "?bg=fff&fp-x=0.3&fp-y=0.7&flip=hv",
		},
		{
			name: "各種変換パラメータが固定順で並ぶこと",
			b: newTestBuilder().Image(testRef).Pad(4).Frame(1).Saturation(-50).
				Orientation(90).Invert(true).Sharpen(10).Blur(20).
				MinWidth(10).MaxWidth(2000).MinHeight(5).MaxHeight(1000),
			want: testBase + "?blur=20&sharp=10&invert=true&or=90&min-h=5&max-h=1000&min-w=10&max-w=2000&sat=-50&pad=4&frame=1",
		},
		{
			name: "ダウンロード名がエンコードされること",
			b:    newTestBuilder().Image(testRef).ForceDownload("my file.png"),
			want: testBase + "?dl=my%20file.png",
		},
		{
			name: "バニティ名がファイル名の後に付くこと",
			b:    newTestBuilder().Image(testRef).VanityName("hero.png"),
			want: testBase + "/hero.png",
		},
		{
			name: "ベースURL末尾のスラッシュが除去されること",
			b:    newTestBuilder().BaseURL("https://images.example.com//").Image(testRef),
			want: "https://images.example.com/images/tirssn7e/production/abc123-1200x800.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.b.URL()
			if err != nil {
				t.Fatalf("URL()でエラーが発生: %v", err)
			}
			if got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilder_Sources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  any
	}{
		{name: "アセットID文字列", src: testRef},
		{name: "CDN URL文字列", src: testBase + "?w=100"},
		{name: "参照", src: content.Reference{Ref: testRef, Type: "reference"}},
		{name: "参照のポインタ", src: &content.Reference{Ref: testRef}},
		{name: "展開済みアセット", src: content.Asset{ID: testRef}},
		{name: "URLのみのアセット", src: &content.Asset{URL: testBase}},
		{name: "image型の値", src: content.Image{Asset: content.Reference{Ref: testRef}}},
		{name: "image型のポインタ", src: &content.Image{Asset: content.Reference{Ref: testRef}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := newTestBuilder().Image(tt.src).URL()
			if err != nil {
				t.Fatalf("URL()でエラーが発生: %v", err)
			}
			if got != testBase {
				t.Errorf("URL() = %q, want %q", got, testBase)
			}
		})
	}
}

func TestBuilder_CropAndHotspot(t *testing.T) {
	t.Parallel()

	t.Run("クロップだけの画像はクロップ範囲がrectになること", func(t *testing.T) {
		t.Parallel()

		img := content.Image{
			Asset: content.Reference{Ref: testRef},
			Crop:  &content.Crop{Left: 0.1, Right: 0.1},
		}
		got, err := newTestBuilder().Image(img).URL()
		if err != nil {
			t.Fatalf("URL()でエラーが発生: %v", err)
		}
		if want := testBase+"?rect=120,0,960,800"; got != want {
			t.Errorf("URL() = %q, want %q", got, want)
		}
	})

	t.Run("左寄りの焦点では左端から切り抜かれること", func(t *testing.T) {
		t.Parallel()

		img := content.Image{
			Asset:   content.Reference{Ref: testRef},
			Hotspot: &content.Hotspot{X: 0.1, Y: 0.5, Width: 0.2, Height: 0.2},
		}
		got, err := newTestBuilder().Image(img).Size(400, 400).URL()
		if err != nil {
			t.Fatalf("URL()でエラーが発生: %v", err)
		}
		if want := testBase+"?rect=0,0,800,800&w=400&h=400"; got != want {
			t.Errorf("URL() = %q, want %q", got, want)
		}
	})

	t.Run("右寄りの焦点ではクロップ範囲内に収まるよう右端から切り抜かれること", func(t *testing.T) {
		t.Parallel()

		img := content.Image{
			Asset:   content.Reference{Ref: testRef},
			Hotspot: &content.Hotspot{X: 0.9, Y: 0.5, Width: 0.2, Height: 0.2},
		}
		got, err := newTestBuilder().Image(img).Size(400, 400).URL()
		if err != nil {
			t.Fatalf("URL()でエラーが発生: %v", err)
		}
		if want := testBase+"?rect=400,0,800,800&w=400&h=400"; got != want {
			t.Errorf("URL() = %q, want %q", got, want)
		}
	})
}

func TestBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	img := content.Image{
		Asset:   content.Reference{Ref: testRef},
		Hotspot: &content.Hotspot{X: 0.4, Y: 0.3, Width: 0.5, Height: 0.5},
	}
	b := newTestBuilder().Image(img).Size(640, 360).Auto("format")

	first, err := b.URL()
	if err != nil {
		t.Fatalf("URL()でエラーが発生: %v", err)
	}
	second, err := b.URL()
	if err != nil {
		t.Fatalf("URL()でエラーが発生: %v", err)
	}
	if first != second {
		t.Errorf("同じBuilderから異なるURLが生成された: %q, %q", first, second)
	}

	again, err := newTestBuilder().Image(img).Size(640, 360).Auto("format").URL()
	if err != nil {
		t.Fatalf("URL()でエラーが発生: %v", err)
	}
	if first != again {
		t.Errorf("同じ設定から異なるURLが生成された: %q, %q", first, again)
	}
}

func TestBuilder_Immutable(t *testing.T) {
	t.Parallel()

	base := newTestBuilder().Image(testRef)
	_ = base.Width(100).Format("png")

	got, err := base.URL()
	if err != nil {
		t.Fatalf("URL()でエラーが発生: %v", err)
	}
	if got != testBase {
		t.Errorf("派生したBuilderの設定が元に漏れている: URL() = %q, want %q", got, testBase)
	}
}

func TestBuilder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    Builder
	}{
		{name: "ソース未指定", b: newTestBuilder()},
		{name: "空の参照", b: newTestBuilder().Image(content.Image{})},
		{name: "nilポインタ", b: newTestBuilder().Image((*content.Image)(nil))},
		{name: "未対応の型", b: newTestBuilder().Image(42)},
		{name: "不正なアセットID", b: newTestBuilder().Image("image-abc")},
		{name: "画像以外のアセットID", b: newTestBuilder().Image("file-abc-100x100-pdf")},
		{name: "サイズを解釈できないアセットID", b: newTestBuilder().Image("image-abc-axb-png")},
		{name: "幅が0", b: newTestBuilder().Image(testRef).Width(0)},
		{name: "高さが負", b: newTestBuilder().Image(testRef).Height(-1)},
		{name: "不正なfit", b: newTestBuilder().Image(testRef).Fit("stretch")},
		{name: "不正なcrop", b: newTestBuilder().Image(testRef).Crop("middle")},
		{name: "不正なauto", b: newTestBuilder().Image(testRef).Auto("compress")},
		{name: "不正な形式", b: newTestBuilder().Image(testRef).Format("gif")},
		{name: "範囲外の画質", b: newTestBuilder().Image(testRef).Quality(101)},
		{name: "不正な回転角", b: newTestBuilder().Image(testRef).Orientation(45)},
		{name: "範囲外の焦点", b: newTestBuilder().Image(testRef).FocalPoint(1.5, 0)},
		{name: "DPRが0", b: newTestBuilder().Image(testRef).DPR(0)},
		{name: "プロジェクトID未指定", b: New("", "production").Image(testRef)},
		{
			name: "上下のクロップが重なる",
			b:    newTestBuilder().Image(croppedImage(content.Crop{Top: 0.9, Bottom: 0.5})),
		},
		{
			name: "上下のクロップで高さが0になる",
			b:    newTestBuilder().Image(croppedImage(content.Crop{Top: 0.5, Bottom: 0.5})).Size(100, 100),
		},
		{
			name: "左右のクロップで幅が0になる",
			b:    newTestBuilder().Image(croppedImage(content.Crop{Left: 0.3, Right: 0.7})).Width(100),
		},
		{
			name: "負のクロップ",
			b:    newTestBuilder().Image(croppedImage(content.Crop{Top: -0.1})),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got, err := tt.b.URL(); err == nil {
				t.Fatalf("URL()がエラーを返すべきだが、nilが返った: %q", got)
			}
		})
	}

	t.Run("最初のエラーが保持されること", func(t *testing.T) {
		t.Parallel()

		_, err := newTestBuilder().Image(testRef).Fit("stretch").Format("gif").URL()
		if err == nil {
			t.Fatal("URL()がエラーを返すべきだが、nilが返った")
		}
		if !strings.Contains(err.Error(), "fit") {
			t.Errorf("最初のエラーではない: %v", err)
		}
	})

	t.Run("ソース未指定はErrNoSourceであること", func(t *testing.T) {
		t.Parallel()

		_, err := newTestBuilder().URL()
		if !errors.Is(err, ErrNoSource) {
			t.Errorf("URL() error = %v, want %v", err, ErrNoSource)
		}
	})
}

// croppedImage はテスト用アセットにクロップを指定したimage型の値を返す。
func croppedImage(c content.Crop) content.Image {
	return content.Image{Asset: content.Reference{Ref: testRef}, Crop: &c}
}
