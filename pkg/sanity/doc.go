// Package sanity はコンテンツストアのクエリAPIに問い合わせるクライアントを提供する。
//
// projectドキュメントの一覧取得とスラッグによる単一取得の2つの固定GROQクエリ、
// および画像アセット参照から画像URLを組み立てるURLForを公開する。
// クライアントは生成時に検証した不変のConfigを保持し、呼び出しごとに1リクエストを送信する。長いクエリはGETの代わりにPOSTで送る。
// キャッシュ、リトライ、書き込みは行わない。転送エラーはそのまま呼び出し元に返す。
package sanity
