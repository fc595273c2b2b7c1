package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	yieldhandler "yieldcurve_backend/internal/feature/yieldcurve/transport/handler"
	"yieldcurve_backend/internal/platform/http/handler"
	jwtmw "yieldcurve_backend/internal/platform/jwt"
	"yieldcurve_backend/internal/shared/ratelimiter"
)

// Handlers はルータに載せるハンドラー一式です。
type Handlers struct {
	Curves        *yieldhandler.CurveHandler
	ImpliedYields *yieldhandler.ImpliedYieldHandler
	MarketData    *yieldhandler.MarketDataHandler
	Metrics       http.Handler
	// DB は /healthz の疎通確認先です。nil なら生存確認のみ。
	DB handler.Pinger
}

// NewRouter はルートを登録します。limiter が nil なら書き込みの頻度は制限しません。
func NewRouter(h Handlers, jwtSecret string, limiter ratelimiter.Limiter) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	health := handler.Health(h.DB)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	// カーブとドラフトは参照のみ
	r.GET("/curves/official", h.Curves.GetOfficialCurve)
	r.GET("/curves/quoted", h.Curves.GetQuotedCurve)
	r.GET("/implied-yields/draft", h.ImpliedYields.GetDraft)

	// オペレーター専用のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに operator ロールの JWT が必要になる
	op := r.Group("/")
	op.Use(jwtmw.AuthRequired(jwtSecret))
	if limiter != nil {
		op.Use(ratelimiter.Middleware(limiter, func(c *gin.Context) string {
			return c.GetString(jwtmw.ContextOperator)
		}))
	}
	{
		op.POST("/curves/official/publish", h.Curves.PublishOfficialCurve)
		op.POST("/implied-yields/confirm", h.ImpliedYields.Confirm)
		op.POST("/bonds", h.MarketData.RegisterBond)
		op.POST("/quotations", h.MarketData.SubmitQuotation)
		op.PUT("/quotations/:id", h.MarketData.UpdateQuotation)
		op.POST("/trade-batches", h.MarketData.StageTradeBatch)
		op.POST("/trade-batches/:id/confirm", h.MarketData.ConfirmTradeBatch)
		op.POST("/treasury-bills", h.MarketData.CreateTreasuryBill)
	}

	return r
}
