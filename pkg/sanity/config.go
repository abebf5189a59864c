package sanity

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	// DefaultProjectID はポートフォリオのコンテンツストアのプロジェクトID。
	DefaultProjectID = "tirssn7e"
	// DefaultDataset は本番データセット名。
	DefaultDataset = "production"
	// DefaultAPIVersion は固定のAPIバージョン。
	DefaultAPIVersion = "2024-01-01"
)

var (
	projectIDPattern = regexp.MustCompile(`^[-a-z0-9]+$`)
	datasetPattern   = regexp.MustCompile(`^[-\w]{1,64}$`)
)

// Config はクライアントの接続設定。値として受け渡し、生成後に変更しない。
type Config struct {
	// ProjectID はコンテンツストアのプロジェクトID。
	ProjectID string
	// Dataset はデータセット名。
	Dataset string
	// APIVersion は日付形式（YYYY-MM-DD）のAPIバージョン。"1" も受け付ける。
	APIVersion string
	// UseCDN はCDN経由で読み取るかどうか。
	UseCDN bool
	// Token は非公開データセットを読むためのAPIトークン。空の場合は匿名で読み取る。
	Token string
}

// DefaultConfig はポートフォリオで使用する既定の設定を返す。
func DefaultConfig() Config {
	return Config{
		ProjectID:  DefaultProjectID,
		Dataset:    DefaultDataset,
		APIVersion: DefaultAPIVersion,
		UseCDN:     true,
	}
}

// Validate は設定値を検証する。
func (c Config) Validate() error {
	if c.ProjectID == "" {
		return errors.New("プロジェクトIDの指定が必要です")
	}
	if !projectIDPattern.MatchString(c.ProjectID) {
		return fmt.Errorf("プロジェクトIDには英小文字、数字、ハイフンのみ使用できます: %q", c.ProjectID)
	}
	if c.Dataset == "" {
		return errors.New("データセットの指定が必要です")
	}
	if !datasetPattern.MatchString(c.Dataset) {
		return fmt.Errorf("データセット名が不正です: %q", c.Dataset)
	}
	if err := validateAPIVersion(c.APIVersion); err != nil {
		return err
	}
	return nil
}

// validateAPIVersion はAPIバージョンが "1" または有効な日付であることを確認する。
func validateAPIVersion(v string) error {
	if v == "" {
		return errors.New("APIバージョンの指定が必要です")
	}
	if v == "1" || v == "X" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return fmt.Errorf("APIバージョンは YYYY-MM-DD 形式で指定してください: %q", v)
	}
	return nil
}

// Host はクエリAPIのホストURLを返す。CDNを使う場合はapicdn、使わない場合はapiのホストになる。
func (c Config) Host() string {
	if c.UseCDN {
		return fmt.Sprintf("https://%s.apicdn.sanity.io", c.ProjectID)
	}
	return fmt.Sprintf("https://%s.api.sanity.io", c.ProjectID)
}

// QueryPath はデータセットに対するクエリエンドポイントのパスを返す。
func (c Config) QueryPath() string {
	return fmt.Sprintf("/v%s/data/query/%s", c.APIVersion, c.Dataset)
}
