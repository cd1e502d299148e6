// Package httpclient は外部コラボレータとのHTTP通信を行うクライアントを提供する。
//
// ユーザーディレクトリサービスからの表示名取得など、
// 外部サービスのAPIを呼び出す際の通信パターンを統一する。
package httpclient
