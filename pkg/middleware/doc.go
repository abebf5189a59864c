// Package middleware はポートフォリオAPIで使用するGinミドルウェアを提供する。
//
// リクエストIDの付与、zapによるアクセスログ、パニックリカバリ、CORS設定、
// 内部エンドポイント向けのJWT認証を含む。
package middleware
