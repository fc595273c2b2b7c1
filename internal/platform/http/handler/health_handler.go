// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout は依存先の疎通確認1回あたりの上限です。
const pingTimeout = 2 * time.Second

// Pinger は依存先（DB など）の疎通確認です。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health は /healthz エンドポイントのハンドラーを返します。
// db が nil の場合はプロセスの生存だけを返し、指定されていれば疎通を確認して失敗時は503を返します。
// キャッシュは常に防止します。
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		status, body := http.StatusOK, gin.H{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", "error", err)
				status, body = http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"}
			} else {
				body["database"] = "up"
			}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}
