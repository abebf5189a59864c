// Package httpclient はJSON APIを呼び出すHTTPクライアントを提供する。
//
// コンテンツストアのクエリAPIへの問い合わせに使用する。
// タイムアウト、Bearerトークン、リクエストIDの伝播を共通化し、
// 2xx以外の応答はStatusErrorとして呼び出し元にそのまま返す。
package httpclient
