// Package notify は通知の種別と本文テンプレートを提供する。
//
// 通知の種別は閉じたバリアント型として定義し、種別ごとに必要な
// ペイロードフィールドのみを保持する。タイトル・メッセージ・リンク・
// メタデータの組み立てを各バリアントが自身で行うため、種別の追加は
// コンパイル時に検査される変更となる。
package notify
