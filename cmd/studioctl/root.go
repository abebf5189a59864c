package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nao1215/portfolio-content/internal/config"
	"github.com/nao1215/portfolio-content/pkg/logging"
	"github.com/nao1215/portfolio-content/pkg/sanity"
)

// app はサブコマンド間で共有する状態。
type app struct {
	// configPath は --config で指定された設定ファイル。
	configPath string
	// logLevel は --log-level で指定されたログレベル。空の場合は設定ファイルの値を使う。
	logLevel string
	// apiHost はクエリAPIのホストの上書き。
	apiHost string

	cfg    *config.Config
	logger *zap.Logger
}

// newRootCmd はstudioctlのルートコマンドを生成する。
func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "studioctl",
		Short: "ポートフォリオのコンテンツを操作するCLI",
		Long: `studioctl はポートフォリオのprojectドキュメントを扱う運用者向けCLIです。

コンテンツストアは読み取りのみで、書き込みは行いません。
設定は --config のYAML、.env、環境変数の順に読み込みます。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if a.logLevel != "" {
				level = a.logLevel
			}
			logger, err := logging.New(level)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "設定ファイルのパス")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.apiHost, "api-host", "", "クエリAPIのホストを上書きする (例: http://localhost:3333)")
	_ = root.PersistentFlags().MarkHidden("api-host")

	root.AddCommand(
		newInitCmd(a),
		newSchemaCmd(),
		newProjectsCmd(a),
		newImageCmd(a),
		newSlugifyCmd(),
		newValidateCmd(),
		newMirrorCmd(a),
		newTokenCmd(a),
	)
	return root
}

// client は設定からクエリクライアントを生成する。
func (a *app) client() (*sanity.Client, error) {
	if a.cfg == nil {
		return nil, errors.New("設定が読み込まれていません")
	}
	opts := []sanity.Option{sanity.WithLogger(a.logger)}
	if a.apiHost != "" {
		opts = append(opts, sanity.WithHost(a.apiHost))
	}
	client, err := sanity.New(a.cfg.Sanity(), opts...)
	if err != nil {
		return nil, fmt.Errorf("クエリクライアントの初期化に失敗: %w", err)
	}
	return client, nil
}
