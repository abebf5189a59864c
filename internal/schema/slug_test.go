package schema

import (
	"strings"
	"testing"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// TestSlugify はタイトルからのスラッグ生成を検証する。
func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{name: "空白をハイフンに置き換える", title: "Tiny Compiler", max: 96, want: "tiny-compiler"},
		{name: "記号の連続を1つのハイフンにまとめる", title: "Go & Rust -- Interop!!", max: 96, want: "go-rust-interop"},
		{name: "前後の記号を取り除く", title: "  ...Hello World...  ", max: 96, want: "hello-world"},
		{name: "アクセント記号を落とす", title: "Café Déjà Vu", max: 96, want: "cafe-deja-vu"},
		{name: "ASCII以外の文字は区切りとして扱う", title: "ポートフォリオ site 2", max: 96, want: "site-2"},
		{name: "切り詰め後の末尾ハイフンを取り除く", title: "abc def", max: 4, want: "abc"},
		{name: "最大長0では切り詰めない", title: strings.Repeat("a", 200), max: 0, want: strings.Repeat("a", 200)},
		{name: "空文字列", title: "", max: 96, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Slugify(tt.title, tt.max); got != tt.want {
				t.Errorf("Slugify(%q, %d) = %q, want %q", tt.title, tt.max, got, tt.want)
			}
		})
	}
}

// TestSlugify_MaxLength は97文字のタイトルから生成したスラッグの扱いを固定する。
func TestSlugify_MaxLength(t *testing.T) {
	t.Parallel()

	title := strings.Repeat("a", 97)

	t.Run("生成時に96文字へ切り詰められること", func(t *testing.T) {
		t.Parallel()

		if got := Slugify(title, SlugMaxLength); got != title[:96] {
			t.Errorf("Slugify() = %q (len %d), want 96文字", got, len(got))
		}
	})

	t.Run("切り詰めたスラッグは検証を通ること", func(t *testing.T) {
		t.Parallel()

		p := validProject()
		p.Title = title
		p.Slug = content.Slug{Type: "slug", Current: Slugify(title, SlugMaxLength)}
		if err := Validate(p); err != nil {
			t.Errorf("Validate()でエラーが発生: %v", err)
		}
	})

	t.Run("切り詰めずに保存された97文字のスラッグは拒否されること", func(t *testing.T) {
		t.Parallel()

		p := validProject()
		p.Slug = content.Slug{Type: "slug", Current: Slugify(title, 0)}
		if err := Validate(p); err == nil {
			t.Fatal("Validateがエラーを返すべきだが、nilが返った")
		}
	})
}
