package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/portfolio-content/internal/schema"
	"github.com/nao1215/portfolio-content/pkg/content"
)

// newValidateCmd はファイルのprojectドキュメントをスキーマで検証するコマンドを生成する。
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "JSON/YAMLファイルのprojectドキュメントをスキーマで検証する",
		Long: `ファイルに書かれたprojectドキュメント（1件、または配列）を検証します。
拡張子が .yaml / .yml の場合はYAML、それ以外はJSONとして読み込みます。
初期値（featured=false, order=0）を適用してから検証し、違反が1件でもあれば失敗します。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := readProjects(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for i, p := range projects {
				name := p.Slug.Current
				if name == "" {
					name = fmt.Sprintf("#%d", i+1)
				}

				err := schema.Validate(schema.Initialize(p))
				var verrs schema.ValidationErrors
				switch {
				case err == nil:
					fmt.Fprintf(out, "ok      %s\n", name)
				case errors.As(err, &verrs):
					invalid++
					fmt.Fprintf(out, "invalid %s\n", name)
					for _, fe := range verrs {
						fmt.Fprintf(out, "  - %s: %s\n", fe.Field, fe.Message)
					}
				default:
					return err
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d件中%d件のprojectが検証に失敗しました", len(projects), invalid)
			}
			return nil
		},
	}
}

// readProjects はファイルからprojectを読み込む。1件のオブジェクトと配列の両方を受け付ける。
func readProjects(path string) ([]content.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// YAMLはJSONに変換してから、JSONタグに従ってデコードする
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("YAMLの解析に失敗: %w", err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("YAMLの変換に失敗: %w", err)
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var projects []content.Project
		if err := json.Unmarshal(trimmed, &projects); err != nil {
			return nil, fmt.Errorf("JSONの解析に失敗: %w", err)
		}
		return projects, nil
	}

	var p content.Project
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("JSONの解析に失敗: %w", err)
	}
	return []content.Project{p}, nil
}
