// Package adapters は yieldcurve のリポジトリを GORM で実装します（本番は PostgreSQL、テストは SQLite）。
package adapters

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation は PostgreSQL の一意制約違反のエラーコードです。
const pgUniqueViolation = "23505"

// isDuplicateKey は一意制約違反かどうかを判定します。
// TranslateError が無効な接続でも判定できるよう、ドライバ固有のエラーも確認します。
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
