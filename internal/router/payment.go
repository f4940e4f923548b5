package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"styleapi/internal/payment"
)

// createOrder 创建支付单并返回跳转链接。
func createOrder(pay *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ServiceType string          `json:"serviceType"`
			Amount      decimal.Decimal `json:"amount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		orderID, payURL, err := pay.Create(c.Request.Context(), req.ServiceType, req.Amount)
		if err != nil {
			code, msg := errorStatus(err)
			c.JSON(code, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orderId": orderID,
			"payUrl":  payURL,
		})
	}
}

// orderStatus 查询订单当前状态。
func orderStatus(pay *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := pay.QueryStatus(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			code, msg := errorStatus(err)
			c.JSON(code, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

// paymentNotify 接收网关异步回调。
// 响应体是网关 webhook 协议规定的字面确认令牌，不是 JSON：
// "success" 表示已确认，其余任何应答网关都会重推。
func paymentNotify(pay *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.String(http.StatusOK, "fail")
			return
		}
		if pay.HandleCallback(c.Request.Context(), c.Request.PostForm) {
			c.String(http.StatusOK, "success")
			return
		}
		c.String(http.StatusOK, "fail")
	}
}
