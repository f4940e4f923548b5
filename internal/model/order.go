package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 描述订单支付状态机：pending → success | failed，终态不可回退。
type OrderStatus string

const (
	StatusPending OrderStatus = "pending" // 已创建，等待支付结果
	StatusSuccess OrderStatus = "success" // 支付成功（终态）
	StatusFailed  OrderStatus = "failed"  // 交易关闭/失败（终态）
)

// Terminal 判断状态是否为终态。终态订单不再接受任何状态变更。
func (s OrderStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Order 记录一次服务购买的支付单。
// OrderID 创建后不可变；Amount 用 decimal 避免浮点金额误差。
type Order struct {
	OrderID     string          `json:"order_id"`
	ServiceType string          `json:"service_type"`
	Amount      decimal.Decimal `json:"amount"`
	Status      OrderStatus     `json:"status"`
	CreateTime  time.Time       `json:"create_time"`
}
