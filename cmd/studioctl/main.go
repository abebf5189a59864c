// studioctl はポートフォリオのコンテンツを操作する運用者向けCLI。
// スキーマの出力、projectの参照、画像URLの生成、ドキュメントの検証、
// ミラーの手動同期、内部API用トークンの発行を行う。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
