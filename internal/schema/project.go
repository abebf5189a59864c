package schema

import (
	"github.com/nao1215/portfolio-content/pkg/content"
)

// SlugMaxLength はprojectのスラッグの最大文字数。
const SlugMaxLength = 96

// DescriptionMaxLength はprojectの短い説明の最大文字数。
const DescriptionMaxLength = 200

// Project はprojectドキュメント型の宣言。
var Project = DocumentType{
	Name:  content.DocumentTypeProject,
	Title: "Project",
	Type:  TypeDocument,
	Fields: []Field{
		{
			Name:       "title",
			Title:      "Project Title",
			Type:       TypeString,
			Validation: []Rule{Required()},
		},
		{
			Name:       "slug",
			Title:      "Slug",
			Type:       TypeSlug,
			Options:    &Options{Source: "title", MaxLength: SlugMaxLength},
			Validation: []Rule{Required()},
		},
		{
			Name:        "description",
			Title:       "Short Description",
			Type:        TypeText,
			Description: "Brief description shown on the project card",
			Rows:        3,
			Validation:  []Rule{Required(), Max(DescriptionMaxLength)},
		},
		{
			Name:        "details",
			Title:       "Detailed Description",
			Type:        TypeText,
			Description: "Full description shown in the modal",
			Rows:        5,
			Validation:  []Rule{Required()},
		},
		{
			Name:       "image",
			Title:      "Project Image",
			Type:       TypeImage,
			Options:    &Options{Hotspot: true},
			Validation: []Rule{Required()},
		},
		{
			Name:        "technologies",
			Title:       "Technologies",
			Type:        TypeArray,
			Of:          []Field{{Type: TypeString}},
			Description: "List of technologies used in this project",
			Validation:  []Rule{Required(), Min(1)},
		},
		{
			Name:        "githubUrl",
			Title:       "GitHub URL",
			Type:        TypeURL,
			Description: "Link to the GitHub repository",
			Validation:  []Rule{URI()},
		},
		{
			Name:        "liveUrl",
			Title:       "Live Demo URL",
			Type:        TypeURL,
			Description: "Link to the live demo",
			Validation:  []Rule{URI()},
		},
		{
			Name:         "featured",
			Title:        "Featured Project",
			Type:         TypeBoolean,
			Description:  "Mark this project as featured",
			InitialValue: false,
		},
		{
			Name:         "order",
			Title:        "Display Order",
			Type:         TypeNumber,
			Description:  "Order in which projects are displayed (lower numbers first)",
			InitialValue: 0,
		},
	},
	Preview: Preview{
		Select: map[string]string{
			"title":    "title",
			"media":    "image",
			"subtitle": "description",
		},
	},
}

// Types はスタジオに登録する全ドキュメント型。
func Types() []DocumentType {
	return []DocumentType{Project}
}

// Initialize は未設定のフィールドに初期値を適用したprojectを返す。
// featuredはfalseがゼロ値のため、orderのみが補われる。
func Initialize(p content.Project) content.Project {
	if p.Type == "" {
		p.Type = content.DocumentTypeProject
	}
	if p.Order == nil {
		order := 0.0
		p.Order = &order
	}
	return p
}
