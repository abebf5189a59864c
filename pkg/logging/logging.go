// Package logging はサービスとCLIで共通に使う構造化ロガーを生成する。
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は指定のログレベルでJSON形式のzapロガーを生成する。
// levelが空の場合はinfoとして扱う。
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl == zapcore.DebugLevel {
		cfg.Development = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ロガーの生成に失敗: %w", err)
	}
	return logger, nil
}

// ParseLevel はログレベル文字列をzapのレベルに変換する。大文字小文字は区別しない。
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("不正なログレベル %q: %w", level, err)
	}
	return lvl, nil
}
