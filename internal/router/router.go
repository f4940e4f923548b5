package router

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	"styleapi/internal/config"
	"styleapi/internal/middleware"
	"styleapi/internal/model"
	"styleapi/internal/payment"
	"styleapi/internal/styler"
)

// Setup 注册全部 HTTP 路由。rdb 允许为 nil（memory/sqlite 后端且未配限流）。
func Setup(r *gin.Engine, pay *payment.Service, sty *styler.Service, rdb *rd.Client, cfg config.AppConfig) {
	r.Use(cors.Default())
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Payment
	pg := r.Group("/payment")
	{
		create := make([]gin.HandlerFunc, 0, 2)
		if rdb != nil && cfg.CreateRateLimit > 0 {
			create = append(create, middleware.RedisRateLimit(rdb, cfg.CreateRateLimit, cfg.CreateRateWindow))
		}
		create = append(create, createOrder(pay))
		pg.POST("/create", create...)
		pg.GET("/status/:orderId", orderStatus(pay))
		pg.POST("/notify", paymentNotify(pay))
	}

	// Image
	ig := r.Group("/image")
	{
		ig.POST("/process-image", processImage(sty))
		ig.GET("/styles", listStyles(sty))
	}
}

// errorStatus 把错误分类映射为 HTTP 状态码与对外文案。
// 未分类错误一律 500 且不透出内部报错原文。
func errorStatus(err error) (int, string) {
	var verr *model.ValidationError
	var cerr *model.CollaboratorError
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.As(err, &cerr):
		return http.StatusInternalServerError, cerr.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
