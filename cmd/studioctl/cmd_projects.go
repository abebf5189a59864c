package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/portfolio-content/pkg/content"
)

// newProjectsCmd はprojectを参照するコマンド群を生成する。
func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "コンテンツストアのprojectを参照する",
	}
	cmd.AddCommand(newProjectsListCmd(a), newProjectsGetCmd(a))
	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "全projectを表示順で一覧する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			projects, err := client.GetProjects(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, projects)
			}
			return writeProjectTable(cmd, projects)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSONで出力する")
	return cmd
}

func newProjectsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "スラッグが一致するprojectをJSONで出力する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			project, err := client.GetProjectBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("projectが見つかりません: %s", args[0])
			}
			return writeJSON(cmd, project)
		},
	}
}

// writeProjectTable はprojectを表形式で出力する。
func writeProjectTable(cmd *cobra.Command, projects []content.Project) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tFEATURED\tTECHNOLOGIES")
	for _, p := range projects {
		featured := ""
		if p.Featured {
			featured = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Slug.Current, p.Title, featured, strings.Join(p.Technologies, ", "))
	}
	return w.Flush()
}

// newImageCmd はprojectの画像URLを出力するコマンドを生成する。
func newImageCmd(a *app) *cobra.Command {
	var (
		width   int
		height  int
		format  string
		quality int
		fit     string
	)

	cmd := &cobra.Command{
		Use:   "image <slug>",
		Short: "projectの画像URLを出力する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			project, err := client.GetProjectBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if project == nil {
				return fmt.Errorf("projectが見つかりません: %s", args[0])
			}

			b := client.URLFor(project.Image)
			flags := cmd.Flags()
			if flags.Changed("width") {
				b = b.Width(width)
			}
			if flags.Changed("height") {
				b = b.Height(height)
			}
			if flags.Changed("format") {
				b = b.Format(format)
			}
			if flags.Changed("quality") {
				b = b.Quality(quality)
			}
			if flags.Changed("fit") {
				b = b.Fit(fit)
			}

			u, err := b.URL()
			if err != nil {
				return fmt.Errorf("画像URLの生成に失敗: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "幅")
	cmd.Flags().IntVar(&height, "height", 0, "高さ")
	cmd.Flags().StringVar(&format, "format", "", "出力形式 (jpg, pjpg, png, webp)")
	cmd.Flags().IntVarP(&quality, "quality", "q", 0, "画質 (0-100)")
	cmd.Flags().StringVar(&fit, "fit", "", "リサイズ方法 (clip, crop, fill, fillmax, max, scale, min)")
	return cmd
}
