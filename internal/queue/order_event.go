package queue

import "time"

// OrderEvent 订单事件：创建与终态转移时各发一条，供下游对账/统计消费。
type OrderEvent struct {
	OrderID     string    `json:"order_id"`
	ServiceType string    `json:"service_type"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}
