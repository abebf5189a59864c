// Package content はコンテンツストアから取得するprojectドキュメントのレコード型を提供する。
//
// GROQクエリの射影結果（_id, title, slug, description, details, image,
// technologies, githubUrl, liveUrl, featured）をそのままデコードできる形で定義する。
// 書き込みは外部の管理UIで行われるため、このパッケージは読み取り専用の値として扱う。
package content
