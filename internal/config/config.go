// Package config はスタジオ設定とサービス/CLIの実行時設定を読み込む。
//
// 読み込み順は 既定値 → YAMLファイル → 環境変数（.envを含む）で、後のものが優先される。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/portfolio-content/pkg/sanity"
)

// DefaultPath はスタジオ設定ファイルの既定パス。
const DefaultPath = "studio.yaml"

// DefaultAppID はデプロイ済みスタジオのアプリケーションID。
const DefaultAppID = "x9t2iascavp2k8pxr163et4l"

// APIConfig はコンテンツストアのプロジェクトとデータセット。
type APIConfig struct {
	ProjectID string `yaml:"projectId"`
	Dataset   string `yaml:"dataset"`
}

// DeploymentConfig はスタジオのデプロイ設定。
type DeploymentConfig struct {
	AppID       string `yaml:"appId"`
	AutoUpdates bool   `yaml:"autoUpdates"`
}

// StudioConfig はスタジオCLIの設定。
type StudioConfig struct {
	API        APIConfig        `yaml:"api"`
	Deployment DeploymentConfig `yaml:"deployment"`
}

// ClientConfig はクエリクライアントの接続設定。
type ClientConfig struct {
	APIVersion string `yaml:"apiVersion"`
	UseCDN     bool   `yaml:"useCdn"`
	// Token は非公開データセット用の読み取りトークン。ファイルには書かず環境変数で渡す。
	Token string `yaml:"-"`
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
	// JWTSecret は内部エンドポイントの認証に使う署名鍵。環境変数でのみ設定する。
	JWTSecret string `yaml:"-"`
}

// MirrorConfig はローカルの読み取りモデルの設定。
type MirrorConfig struct {
	DBPath       string        `yaml:"dbPath"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// Config はサービスとCLIの実行時設定。
type Config struct {
	StudioConfig `yaml:",inline"`

	Client   ClientConfig `yaml:"client"`
	Server   ServerConfig `yaml:"server"`
	Mirror   MirrorConfig `yaml:"mirror"`
	LogLevel string       `yaml:"logLevel"`
}

// Default は既定値の設定を返す。
func Default() *Config {
	return &Config{
		StudioConfig: StudioConfig{
			API: APIConfig{
				ProjectID: sanity.DefaultProjectID,
				Dataset:   sanity.DefaultDataset,
			},
			Deployment: DeploymentConfig{
				AppID:       DefaultAppID,
				AutoUpdates: true,
			},
		},
		Client: ClientConfig{
			APIVersion: sanity.DefaultAPIVersion,
			UseCDN:     true,
		},
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Mirror: MirrorConfig{
			DBPath:       "portfolio-mirror.db",
			PollInterval: 5 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load はpathのYAMLを読み込み、環境変数で上書きした設定を返す。
// pathのファイルが存在しない場合は既定値から始める。カレントディレクトリの.envも読み込む。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は環境変数の値で設定を上書きする。
func (c *Config) applyEnv() error {
	setString(&c.API.ProjectID, "SANITY_PROJECT_ID")
	setString(&c.API.Dataset, "SANITY_DATASET")
	setString(&c.Client.APIVersion, "SANITY_API_VERSION")
	setString(&c.Client.Token, "SANITY_TOKEN")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	// MIRROR_DB は空文字列の指定でミラーを無効にできる。
	if v, ok := os.LookupEnv("MIRROR_DB"); ok {
		c.Mirror.DBPath = v
	}
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("SANITY_USE_CDN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SANITY_USE_CDNの値が不正です: %w", err)
		}
		c.Client.UseCDN = b
	}
	if v := os.Getenv("MIRROR_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MIRROR_POLL_INTERVALの値が不正です: %w", err)
		}
		c.Mirror.PollInterval = d
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Sanity はクエリクライアントの接続設定を返す。
func (c *Config) Sanity() sanity.Config {
	return sanity.Config{
		ProjectID:  c.API.ProjectID,
		Dataset:    c.API.Dataset,
		APIVersion: c.Client.APIVersion,
		UseCDN:     c.Client.UseCDN,
		Token:      c.Client.Token,
	}
}

// Validate は設定の整合性を検証する。
func (c *Config) Validate() error {
	if err := c.Sanity().Validate(); err != nil {
		return err
	}
	if c.Deployment.AppID == "" {
		return errors.New("deployment.appIdが未設定です")
	}
	if c.Mirror.PollInterval <= 0 {
		return fmt.Errorf("mirror.pollIntervalは正の値である必要があります: %s", c.Mirror.PollInterval)
	}
	return nil
}

// Save はスタジオ設定部分をYAMLとしてpathに書き出す。
func (s StudioConfig) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("設定のシリアライズに失敗: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗: %w", err)
	}
	return nil
}
