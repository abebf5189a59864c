package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// validProject はすべてのルールを満たすprojectを返す。
func validProject() content.Project {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return content.Project{
		ID:           "project-1",
		Title:        "Tiny Compiler",
		Slug:         content.Slug{Type: "slug", Current: "tiny-compiler"},
		Description:  "A compiler for a toy language",
		Details:      "Lexer, parser, and code generator written from scratch.",
		Image:        content.Image{Type: "image", Asset: content.Reference{Ref: "image-abc123-1200x800-png", Type: "reference"}},
		Technologies: []string{"Go", "LLVM"},
		GitHubURL:    "https://github.com/example/tiny-compiler",
		LiveURL:      "",
		CreatedAt:    &created,
	}
}

// TestProjectDeclaration はprojectの宣言内容を検証する。
func TestProjectDeclaration(t *testing.T) {
	t.Parallel()

	t.Run("フィールドが宣言順に並んでいること", func(t *testing.T) {
		t.Parallel()

		names := make([]string, 0, len(Project.Fields))
		for _, f := range Project.Fields {
			names = append(names, f.Name)
		}
		want := []string{
			"title", "slug", "description", "details", "image",
			"technologies", "githubUrl", "liveUrl", "featured", "order",
		}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("フィールド名 (-want +got):\n%s", diff)
		}
	})

	t.Run("必須フィールドが正しいこと", func(t *testing.T) {
		t.Parallel()

		required := map[string]bool{
			"title": true, "slug": true, "description": true, "details": true, "image": true, "technologies": true,
			"githubUrl": false, "liveUrl": false, "featured": false, "order": false,
		}
		for name, want := range required {
			f, ok := Project.Field(name)
			if !ok {
				t.Fatalf("フィールド %q が見つからない", name)
			}
			if got := f.IsRequired(); got != want {
				t.Errorf("%s: IsRequired() = %v, want %v", name, got, want)
			}
		}
	})

	t.Run("スラッグの生成元と最大長が設定されていること", func(t *testing.T) {
		t.Parallel()

		f, ok := Project.Field("slug")
		if !ok || f.Options == nil {
			t.Fatal("slugのオプションが設定されていない")
		}
		if f.Options.Source != "title" {
			t.Errorf("Source = %q, want %q", f.Options.Source, "title")
		}
		if f.Options.MaxLength != 96 {
			t.Errorf("MaxLength = %d, want 96", f.Options.MaxLength)
		}
	})

	t.Run("画像でホットスポットが有効であること", func(t *testing.T) {
		t.Parallel()

		f, ok := Project.Field("image")
		if !ok || f.Options == nil {
			t.Fatal("imageのオプションが設定されていない")
		}
		if !f.Options.Hotspot {
			t.Error("Hotspot = false, want true")
		}
	})

	t.Run("存在しないフィールドは見つからないこと", func(t *testing.T) {
		t.Parallel()

		if _, ok := Project.Field("author"); ok {
			t.Error("存在しないフィールドが見つかった")
		}
	})

	t.Run("Typesにprojectが含まれること", func(t *testing.T) {
		t.Parallel()

		types := Types()
		if len(types) != 1 || types[0].Name != "project" {
			t.Errorf("Types() = %+v, want [project]", types)
		}
	})
}

// TestDocumentType_MarshalJSON はスタジオ向けJSON表現を検証する。
func TestDocumentType_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("検証ルールと初期値とプレビューが出力されること", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(Project)
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}

		var decoded struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Fields []struct {
				Name         string            `json:"name"`
				Rows         int               `json:"rows"`
				InitialValue any               `json:"initialValue"`
				Validation   []map[string]any `json:"validation"`
			} `json:"fields"`
			Preview struct {
				Select map[string]string `json:"select"`
			} `json:"preview"`
		}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
		}

		if decoded.Name != "project" || decoded.Type != "document" {
			t.Errorf("name, type = %q, %q, want project, document", decoded.Name, decoded.Type)
		}
		if len(decoded.Fields) != 10 {
			t.Fatalf("フィールド数 = %d, want 10", len(decoded.Fields))
		}

		desc := decoded.Fields[2]
		if desc.Name != "description" || desc.Rows != 3 {
			t.Errorf("description = %q (rows %d), want description (rows 3)", desc.Name, desc.Rows)
		}
		wantRules := []map[string]any{
			{"flag": "presence", "constraint": "required"},
			{"flag": "max", "constraint": float64(200)},
		}
		if diff := cmp.Diff(wantRules, desc.Validation); diff != "" {
			t.Errorf("descriptionの検証ルール (-want +got):\n%s", diff)
		}

		if got := decoded.Fields[8].InitialValue; got != false {
			t.Errorf("featuredの初期値 = %v, want false", got)
		}
		if got := decoded.Fields[9].InitialValue; got != float64(0) {
			t.Errorf("orderの初期値 = %v, want 0", got)
		}

		want := map[string]string{"title": "title", "media": "image", "subtitle": "description"}
		if diff := cmp.Diff(want, decoded.Preview.Select); diff != "" {
			t.Errorf("preview.select (-want +got):\n%s", diff)
		}
	})

	t.Run("フィールドが無い型でも配列として出力されること", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(DocumentType{Name: "empty", Type: TypeDocument})
		if err != nil {
			t.Fatalf("json.Marshal()でエラーが発生: %v", err)
		}
		for _, want := range []string{`"fields":[]`, `"select":{}`} {
			if !strings.Contains(string(raw), want) {
				t.Errorf("%s に %s が含まれない", raw, want)
			}
		}
	})
}

// TestTag はフィールド記述子から導出されるタグを検証する。
func TestTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		want  string
	}{
		{field: "title", want: "required"},
		{field: "slug", want: "required,max=96"},
		{field: "description", want: "required,max=200"},
		{field: "image", want: "required"},
		{field: "technologies", want: "required,min=1"},
		{field: "githubUrl", want: "omitempty,http_url"},
		{field: "featured", want: ""},
		{field: "order", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			t.Parallel()

			f, ok := Project.Field(tt.field)
			if !ok {
				t.Fatalf("フィールド %q が見つからない", tt.field)
			}
			if got := Tag(f); got != tt.want {
				t.Errorf("Tag(%s) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

// TestValidate はprojectの検証を検証する。
func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("すべてのルールを満たすprojectは検証を通ること", func(t *testing.T) {
		t.Parallel()

		if err := Validate(validProject()); err != nil {
			t.Errorf("Validate()でエラーが発生: %v", err)
		}
	})

	t.Run("任意のURLが空でも検証を通ること", func(t *testing.T) {
		t.Parallel()

		p := validProject()
		p.GitHubURL = ""
		p.LiveURL = ""
		if err := Validate(p); err != nil {
			t.Errorf("Validate()でエラーが発生: %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(p *content.Project)
		field  string
		rule   string
	}{
		{name: "タイトルが空", modify: func(p *content.Project) { p.Title = "" }, field: "title", rule: "required"},
		{name: "スラッグが空", modify: func(p *content.Project) { p.Slug.Current = "" }, field: "slug", rule: "required"},
		{name: "スラッグが97文字", modify: func(p *content.Project) { p.Slug.Current = strings.Repeat("a", 97) }, field: "slug", rule: "max"},
		{name: "説明が201文字", modify: func(p *content.Project) { p.Description = strings.Repeat("x", 201) }, field: "description", rule: "max"},
		{name: "詳細が空", modify: func(p *content.Project) { p.Details = "" }, field: "details", rule: "required"},
		{name: "画像の参照が空", modify: func(p *content.Project) { p.Image = content.Image{} }, field: "image", rule: "required"},
		{name: "技術がnil", modify: func(p *content.Project) { p.Technologies = nil }, field: "technologies", rule: "required"},
		{name: "技術が空配列", modify: func(p *content.Project) { p.Technologies = []string{} }, field: "technologies", rule: "min"},
		{name: "GitHub URLが不正", modify: func(p *content.Project) { p.GitHubURL = "not a url" }, field: "githubUrl", rule: "http_url"},
		{name: "デモURLのスキームがftp", modify: func(p *content.Project) { p.LiveURL = "ftp://example.com" }, field: "liveUrl", rule: "http_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"の場合エラーになること", func(t *testing.T) {
			t.Parallel()

			p := validProject()
			tt.modify(&p)

			err := Validate(p)
			if err == nil {
				t.Fatal("Validateがエラーを返すべきだが、nilが返った")
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidationErrorsではない: %v", err)
			}
			if len(verrs) != 1 {
				t.Fatalf("違反数 = %d, want 1: %v", len(verrs), verrs)
			}
			if verrs[0].Field != tt.field || verrs[0].Rule != tt.rule {
				t.Errorf("違反 = %s/%s, want %s/%s", verrs[0].Field, verrs[0].Rule, tt.field, tt.rule)
			}
			if verrs[0].Message == "" {
				t.Error("違反のメッセージが空")
			}
		})
	}

	t.Run("説明はちょうど200文字まで許容されること", func(t *testing.T) {
		t.Parallel()

		p := validProject()
		p.Description = strings.Repeat("あ", 200)
		if err := Validate(p); err != nil {
			t.Errorf("Validate()でエラーが発生: %v", err)
		}
	})

	t.Run("複数の違反が宣言順にすべて報告されること", func(t *testing.T) {
		t.Parallel()

		err := Validate(content.Project{})

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("ValidationErrorsではない: %v", err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field)
		}
		want := []string{"title", "slug", "description", "details", "image", "technologies"}
		if diff := cmp.Diff(want, fields); diff != "" {
			t.Errorf("違反フィールド (-want +got):\n%s", diff)
		}
		if !strings.Contains(err.Error(), "title: 必須です") {
			t.Errorf("エラーメッセージに title の違反が含まれない: %v", err)
		}
	})
}

// TestInitialize は初期値の適用を検証する。
func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("未設定のorderに0が入ること", func(t *testing.T) {
		t.Parallel()

		p := Initialize(content.Project{Title: "x"})
		if p.Order == nil || *p.Order != 0 {
			t.Errorf("Order = %v, want 0", p.Order)
		}
		if p.Featured {
			t.Error("Featured = true, want false")
		}
		if p.Type != content.DocumentTypeProject {
			t.Errorf("Type = %q, want %q", p.Type, content.DocumentTypeProject)
		}
	})

	t.Run("設定済みのorderは維持されること", func(t *testing.T) {
		t.Parallel()

		order := 3.0
		p := Initialize(content.Project{Order: &order, Featured: true})
		if *p.Order != 3 || !p.Featured {
			t.Errorf("Order, Featured = %v, %v, want 3, true", *p.Order, p.Featured)
		}
	})
}
