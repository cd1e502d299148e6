// Package store はSQLiteデータベースの接続とスキーマ管理を提供する。
//
// 注文と通知の両テーブルを1つのデータベースに保持する。
// スキーマはembedされたマイグレーションファイルから適用する。
package store

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
	"github.com/nao1215/mandi/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open はSQLiteデータベースを開き、マイグレーションを適用する。
// pathにはファイルパスまたは ":memory:"（テスト用）を指定する。
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	// SQLiteは単一ライターのため、コネクションを1本に制限して
	// プール経由の同時書き込みとインメモリDBの分裂を防ぐ。
	db.SetMaxOpenConns(1)

	if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("マイグレーション失敗後のクローズにも失敗: %w", cerr)
		}
		return nil, fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	return db, nil
}
