package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/portfolio-content/internal/mirror"
)

// newMirrorCmd はローカルミラーを操作するコマンド群を生成する。
func newMirrorCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "ローカルミラーを操作する",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "ミラーのSQLiteファイル (省略時は設定の mirror.dbPath)")

	open := func(cmd *cobra.Command) (*mirror.Mirror, error) {
		path := dbPath
		if path == "" {
			path = a.cfg.Mirror.DBPath
		}
		if path == "" {
			return nil, errors.New("ミラーのデータベースが指定されていません")
		}
		client, err := a.client()
		if err != nil {
			return nil, err
		}
		return mirror.Open(cmd.Context(), path, client, mirror.WithLogger(a.logger))
	}

	sync := &cobra.Command{
		Use:   "sync",
		Short: "コンテンツストアからミラーへ1回同期する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			res, err := m.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d: fetched=%d created=%d updated=%d removed=%d unchanged=%d\n",
				res.Version, res.Fetched, res.Created, res.Updated, res.Removed, res.Unchanged)
			return nil
		},
	}

	var limit int
	events := &cobra.Command{
		Use:   "events",
		Short: "ミラーの変更イベントを新しい順に出力する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			evs, err := m.Events(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ev := range evs {
				fmt.Fprintf(out, "%s\tv%d\t%s\t%s\n", ev.CreatedAt.Format(time.RFC3339), ev.Version, ev.EventType, ev.AggregateID)
			}
			return nil
		},
	}
	events.Flags().IntVar(&limit, "limit", mirror.DefaultEventLimit, "出力する件数")

	cmd.AddCommand(sync, events)
	return cmd
}
