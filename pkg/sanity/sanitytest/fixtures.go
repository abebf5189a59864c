package sanitytest

import (
	"strings"
	"time"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// NewProject はすべての必須フィールドを満たすprojectを生成する。
// スラッグはidをそのまま使い、画像は1200x800のPNGアセットを参照する。
func NewProject(id string, order float64, createdAt time.Time) content.Project {
	return content.Project{
		ID:          id,
		Type:        content.DocumentTypeProject,
		Title:       strings.ToUpper(id[:1]) + id[1:],
		Slug:        content.Slug{Type: "slug", Current: id},
		Description: "Short description of " + id,
		Details:     "Detailed description of " + id,
		Image: content.Image{
			Type:  "image",
			Asset: content.Reference{Ref: "image-" + id + "hash-1200x800-png", Type: "reference"},
		},
		Technologies: []string{"Go"},
		GitHubURL:    "https://github.com/example/" + id,
		Order:        &order,
		CreatedAt:    &createdAt,
	}
}
