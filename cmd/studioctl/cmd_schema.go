package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/portfolio-content/internal/schema"
)

// newInitCmd はスタジオ設定ファイルを書き出すコマンドを生成する。
func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "スタジオ設定ファイル (studio.yaml) を書き出す",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(a.configPath); err == nil {
					return fmt.Errorf("%s は既に存在します (上書きするには --force)", a.configPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("設定ファイルの確認に失敗: %w", err)
				}
			}
			if err := a.cfg.StudioConfig.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s を書き出しました\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "既存のファイルを上書きする")
	return cmd
}

// newSchemaCmd はスキーマ定義をJSONで出力するコマンドを生成する。
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "ドキュメント型のスキーマ定義をJSONで出力する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd, schema.Types())
		},
	}
}

// newSlugifyCmd はタイトルからスラッグを生成するコマンドを生成する。
func newSlugifyCmd() *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "slugify <title>",
		Short: "タイトルからスラッグを生成する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := schema.Slugify(args[0], maxLength)
			if slug == "" {
				return fmt.Errorf("タイトル %q からスラッグを生成できません", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLength, "max-length", schema.SlugMaxLength, "スラッグの最大長")
	return cmd
}

// writeJSON はvをインデント付きのJSONで出力する。
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("JSONの出力に失敗: %w", err)
	}
	return nil
}
