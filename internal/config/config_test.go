package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// envKeys は設定が参照する環境変数。テストごとに未設定にしておく。
var envKeys = []string{
	"SANITY_PROJECT_ID", "SANITY_DATASET", "SANITY_API_VERSION", "SANITY_USE_CDN", "SANITY_TOKEN",
	"PORT", "JWT_SECRET", "MIRROR_DB", "MIRROR_POLL_INTERVAL", "CORS_ORIGINS", "LOG_LEVEL",
}

// clearEnv は環境変数を未設定にする。元の値はテスト終了時にt.Setenvが戻す。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("os.Unsetenv(%q)でエラーが発生: %v", k, err)
		}
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studio.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("os.WriteFile()でエラーが発生: %v", err)
	}
	return path
}

// TestDefault は既定値を検証する。
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.API.ProjectID != "tirssn7e" {
		t.Errorf("API.ProjectID = %q, want %q", cfg.API.ProjectID, "tirssn7e")
	}
	if cfg.API.Dataset != "production" {
		t.Errorf("API.Dataset = %q, want %q", cfg.API.Dataset, "production")
	}
	if cfg.Deployment.AppID != "x9t2iascavp2k8pxr163et4l" {
		t.Errorf("Deployment.AppID = %q, want %q", cfg.Deployment.AppID, "x9t2iascavp2k8pxr163et4l")
	}
	if !cfg.Deployment.AutoUpdates {
		t.Error("Deployment.AutoUpdates = false, want true")
	}
	if cfg.Client.APIVersion != "2024-01-01" {
		t.Errorf("Client.APIVersion = %q, want %q", cfg.Client.APIVersion, "2024-01-01")
	}
	if !cfg.Client.UseCDN {
		t.Error("Client.UseCDN = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate()でエラーが発生: %v", err)
	}
}

// TestLoad は設定ファイルと環境変数の読み込みを検証する。環境変数を書き換えるため並列実行しない。
func TestLoad(t *testing.T) {
	t.Run("ファイルが無い場合は既定値になること", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("Load() (-want +got):\n%s", diff)
		}
	})

	t.Run("YAMLの値が既定値を上書きすること", func(t *testing.T) {
		clearEnv(t)

		path := writeFile(t, `
api:
  projectId: abc123
  dataset: staging
deployment:
  appId: app-1
  autoUpdates: false
client:
  apiVersion: "2025-02-19"
  useCdn: false
server:
  port: "9000"
  corsOrigins:
    - https://example.com
mirror:
  dbPath: /tmp/mirror.db
  pollInterval: 30s
logLevel: debug
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}

		want := Default()
		want.API.ProjectID = "abc123"
		want.API.Dataset = "staging"
		want.Deployment.AppID = "app-1"
		want.Deployment.AutoUpdates = false
		want.Client.APIVersion = "2025-02-19"
		want.Client.UseCDN = false
		want.Server.Port = "9000"
		want.Server.CORSOrigins = []string{"https://example.com"}
		want.Mirror.DBPath = "/tmp/mirror.db"
		want.Mirror.PollInterval = 30 * time.Second
		want.LogLevel = "debug"
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("Load() (-want +got):\n%s", diff)
		}
	})

	t.Run("環境変数がYAMLより優先されること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SANITY_PROJECT_ID", "envproject")
		t.Setenv("SANITY_USE_CDN", "false")
		t.Setenv("SANITY_TOKEN", "sk-test")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
		t.Setenv("MIRROR_POLL_INTERVAL", "1m")
		t.Setenv("MIRROR_DB", "/var/lib/mirror.db")

		path := writeFile(t, "api:\n  projectId: fileproject\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}

		if cfg.API.ProjectID != "envproject" {
			t.Errorf("API.ProjectID = %q, want %q", cfg.API.ProjectID, "envproject")
		}
		if cfg.Client.UseCDN {
			t.Error("Client.UseCDN = true, want false")
		}
		if cfg.Client.Token != "sk-test" {
			t.Errorf("Client.Token = %q, want %q", cfg.Client.Token, "sk-test")
		}
		if cfg.Server.JWTSecret != "secret" {
			t.Errorf("Server.JWTSecret = %q, want %q", cfg.Server.JWTSecret, "secret")
		}
		if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins); diff != "" {
			t.Errorf("Server.CORSOrigins (-want +got):\n%s", diff)
		}
		if cfg.Mirror.PollInterval != time.Minute {
			t.Errorf("Mirror.PollInterval = %v, want %v", cfg.Mirror.PollInterval, time.Minute)
		}
		if cfg.Mirror.DBPath != "/var/lib/mirror.db" {
			t.Errorf("Mirror.DBPath = %q, want %q", cfg.Mirror.DBPath, "/var/lib/mirror.db")
		}

		sc := cfg.Sanity()
		if sc.ProjectID != "envproject" || sc.Token != "sk-test" || sc.UseCDN {
			t.Errorf("Sanity() = %+v, want ProjectID=envproject Token=sk-test UseCDN=false", sc)
		}
	})

	t.Run("空のMIRROR_DBでミラーが無効になること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MIRROR_DB", "")

		path := writeFile(t, "mirror:\n  dbPath: /tmp/mirror.db\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Mirror.DBPath != "" {
			t.Errorf("Mirror.DBPath = %q, want empty", cfg.Mirror.DBPath)
		}
	})

	t.Run("MIRROR_DBが未設定ならYAMLの値が残ること", func(t *testing.T) {
		clearEnv(t)

		path := writeFile(t, "mirror:\n  dbPath: /tmp/mirror.db\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Mirror.DBPath != "/tmp/mirror.db" {
			t.Errorf("Mirror.DBPath = %q, want %q", cfg.Mirror.DBPath, "/tmp/mirror.db")
		}
	})

	t.Run("不正な真偽値はエラーになること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SANITY_USE_CDN", "sometimes")

		if _, err := Load(""); err == nil {
			t.Fatal("Loadがエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("不正なYAMLはエラーになること", func(t *testing.T) {
		clearEnv(t)

		if _, err := Load(writeFile(t, "api: [unterminated")); err == nil {
			t.Fatal("Loadがエラーを返すべきだが、nilが返った")
		}
	})
}

// TestConfig_Validate は設定の検証を検証する。
func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "プロジェクトIDが空", modify: func(c *Config) { c.API.ProjectID = "" }},
		{name: "APIバージョンが不正", modify: func(c *Config) { c.Client.APIVersion = "v1" }},
		{name: "アプリIDが空", modify: func(c *Config) { c.Deployment.AppID = "" }},
		{name: "ポーリング間隔が0", modify: func(c *Config) { c.Mirror.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name+"の場合エラーになること", func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validateがエラーを返すべきだが、nilが返った")
			}
		})
	}
}

// TestStudioConfig_Save はスタジオ設定の書き出しを検証する。
func TestStudioConfig_Save(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "studio.yaml")
	if err := Default().StudioConfig.Save(path); err != nil {
		t.Fatalf("Save()でエラーが発生: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile()でエラーが発生: %v", err)
	}
	for _, want := range []string{"projectId: tirssn7e", "appId: x9t2iascavp2k8pxr163et4l", "autoUpdates: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("書き出した設定に %q が含まれない:\n%s", want, data)
		}
	}
}
