package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
)

// Today は設定されたタイムゾーンでの "今日" を返す関数です。
type Today func() time.Time

// dateQuery は ?date=YYYY-MM-DD を読み、省略時は today() を返します。
func dateQuery(c *gin.Context, today Today) (time.Time, error) {
	s := c.Query("date")
	if s == "" {
		return today(), nil
	}
	d, err := dto.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
