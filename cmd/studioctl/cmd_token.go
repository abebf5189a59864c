package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/portfolio-content/pkg/middleware"
)

// newTokenCmd は内部API用のJWTを発行するコマンドを生成する。
func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		scopes  []string
		ttl     time.Duration
		secret  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "内部API用のJWTを発行する",
		Long: `portfolio-api の内部エンドポイント（POST /api/v1/internal/sync）を呼ぶためのJWTを発行します。
署名鍵は --secret、無ければ環境変数 JWT_SECRET を使います。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := secret
			if key == "" {
				key = a.cfg.Server.JWTSecret
			}
			if key == "" {
				return errors.New("署名鍵が指定されていません (--secret または JWT_SECRET)")
			}

			token, err := middleware.GenerateJWT(key, subject, scopes, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "studioctl", "トークンの主体 (sub)")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{middleware.ScopeSync}, "付与するスコープ")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "有効期間")
	cmd.Flags().StringVar(&secret, "secret", "", "署名鍵")
	return cmd
}
